package board

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/stacker/piece"
)

func TestLandingHeightContour(t *testing.T) {
	is := is.New(t)
	// T pointing down (orientation 1) over a single-cell notch lands flush.
	s := piece.MustLookup(piece.T, 1)
	is.Equal(LandingHeight([]int{2, 1, 2}, s, 0), 1)
	is.Equal(LandingHeight([]int{0, 0, 0}, s, 0), 0)
	is.Equal(LandingHeight([]int{0, 3, 0}, s, 0), 3)
}

func TestMakeMoveFillsAndUpdatesSkyline(t *testing.T) {
	is := is.New(t)
	b := New(DefaultRows, DefaultCols, piece.NewFixedSource(piece.L, piece.O))
	cleared, err := b.MakeMove(Move{Orient: 0, Slot: 3})
	is.NoErr(err)
	is.Equal(cleared, 0)
	is.Equal(b.Heights()[3], 3)
	is.Equal(b.Heights()[4], 1)
	is.True(b.Filled(0, 3))
	is.True(b.Filled(2, 3))
	is.True(b.Filled(0, 4))
	is.True(!b.Filled(1, 4))
	is.Equal(b.Tag(0, 3), int32(1))
	is.Equal(b.CurrentPiece(), piece.O)
}

func TestMakeMoveClearsRows(t *testing.T) {
	is := is.New(t)
	b := New(DefaultRows, DefaultCols, piece.NewFixedSource(piece.I))
	err := b.SetRows([]string{
		"xxxxxxxxx.",
		"xxxxxxxxx.",
		"xxxxx.xxx.",
		"xxxx..xxx.",
	})
	is.NoErr(err)
	cleared, err := b.MakeMove(Move{Orient: 0, Slot: 9})
	is.NoErr(err)
	is.Equal(cleared, 2)
	is.Equal(b.RowsCleared(), 2)
	// The two partial rows slid down, with the I remnant on top of column 9.
	is.True(!b.Filled(0, 5))
	is.True(b.Filled(0, 9))
	is.True(!b.Filled(1, 4))
	is.True(b.Filled(1, 9))
	is.Equal(b.Heights(), []int{2, 2, 2, 2, 1, 0, 2, 2, 2, 2})
	for r := 2; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			is.True(!b.Filled(r, c))
		}
	}
}

func TestMakeMoveLoss(t *testing.T) {
	is := is.New(t)
	b := New(6, 4, piece.NewFixedSource(piece.I))
	is.NoErr(b.SetRows([]string{"x...", "x...", "x..."}))
	before := b.Copy()
	cleared, err := b.MakeMove(Move{Orient: 0, Slot: 0})
	is.NoErr(err)
	is.Equal(cleared, 0)
	is.True(b.Lost())
	is.True(b.Equals(before))
	is.Equal(len(b.LegalMoves()), 0)
	_, err = b.MakeMove(Move{Orient: 0, Slot: 1})
	is.True(err != nil)
}

func TestMakeMoveInvalid(t *testing.T) {
	is := is.New(t)
	b := New(DefaultRows, DefaultCols, piece.NewFixedSource(piece.O))
	_, err := b.MakeMove(Move{Orient: 1, Slot: 0})
	is.True(errors.Is(err, ErrInvalidMove))
	_, err = b.MakeMove(Move{Orient: 0, Slot: 9})
	is.True(errors.Is(err, ErrInvalidMove))
	is.Equal(b.Turn(), int32(0))
}

func TestLegalMovesOrder(t *testing.T) {
	is := is.New(t)
	b := New(DefaultRows, DefaultCols, piece.NewFixedSource(piece.I))
	moves := b.LegalMoves()
	// 10 vertical slots, then 7 horizontal ones.
	is.Equal(len(moves), 17)
	is.Equal(moves[0], Move{Orient: 0, Slot: 0})
	is.Equal(moves[9], Move{Orient: 0, Slot: 9})
	is.Equal(moves[10], Move{Orient: 1, Slot: 0})
	is.Equal(moves[16], Move{Orient: 1, Slot: 6})

	b.SetCurrentPiece(piece.T)
	is.Equal(len(b.LegalMoves()), 9+8+9+8)
}

func TestRowMask(t *testing.T) {
	is := is.New(t)
	var m RowMask
	m = m.With(0).With(20)
	is.True(m.Has(0))
	is.True(m.Has(20))
	is.True(!m.Has(1))
}

func TestSetFromPlaintext(t *testing.T) {
	is := is.New(t)
	b := New(DefaultRows, DefaultCols, piece.NewFixedSource(piece.O))
	is.NoErr(b.SetFromPlaintext(string(Overhangs)))
	is.Equal(b.Heights(), []int{3, 3, 4, 4, 2, 1, 3, 3, 2, 1})
	// Bottom line of the picture is row 0.
	is.True(!b.Filled(0, 4))
	is.True(b.Filled(3, 2))

	o := New(DefaultRows, DefaultCols, piece.NewFixedSource(piece.O))
	is.NoErr(o.SetRows([]string{"xxxx.xxxxx", "x..xx.xxx.", "xx.x..xx..", "..xx......"}))
	is.True(b.Equals(o))

	is.True(b.SetFromPlaintext("xx\nxx") != nil)
}

func TestTowerLosesOnContact(t *testing.T) {
	is := is.New(t)
	b := New(DefaultRows, DefaultCols, piece.NewFixedSource(piece.O, piece.O))
	is.NoErr(b.SetFromPlaintext(string(Tower)))
	is.Equal(b.Heights()[0], DefaultRows-1)

	_, err := b.MakeMove(Move{Orient: 0, Slot: 4})
	is.NoErr(err)
	is.True(!b.Lost())
	_, err = b.MakeMove(Move{Orient: 0, Slot: 0})
	is.NoErr(err)
	is.True(b.Lost())
}
