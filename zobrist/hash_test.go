package zobrist

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/stacker/board"
	"github.com/domino14/stacker/piece"
)

func TestHashTracksOccupancy(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize(board.DefaultRows, board.DefaultCols)

	b := board.New(board.DefaultRows, board.DefaultCols, piece.NewFixedSource(piece.O))
	empty := z.Hash(b)
	b.Fill(0, 0, 3)
	filled := z.Hash(b)
	is.True(empty != filled)
	is.Equal(z.Toggle(empty, 0, 0), filled)

	// The tag value does not matter, only occupancy.
	b.Fill(0, 0, 9)
	is.Equal(z.Hash(b), filled)
	b.Erase(0, 0)
	is.Equal(z.Hash(b), empty)
}

func TestHashIncludesPiece(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.InitializeSeeded(board.DefaultRows, board.DefaultCols, 7)
	b := board.New(board.DefaultRows, board.DefaultCols, piece.NewFixedSource(piece.O))
	h1 := z.Hash(b)
	b.SetCurrentPiece(piece.Z)
	is.True(z.Hash(b) != h1)
}

func TestSeededKeysStable(t *testing.T) {
	is := is.New(t)
	z1, z2 := &Zobrist{}, &Zobrist{}
	z1.InitializeSeeded(8, 5, 99)
	z2.InitializeSeeded(8, 5, 99)
	b := board.New(8, 5, piece.NewFixedSource(piece.T))
	is.NoErr(b.SetRows([]string{"xx.xx", ".x..."}))
	is.Equal(z1.Hash(b), z2.Hash(b))
}
