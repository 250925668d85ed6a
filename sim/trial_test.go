package sim

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/stacker/board"
	"github.com/domino14/stacker/piece"
	"github.com/domino14/stacker/zobrist"
)

// randomBoard builds a board by playing random legal moves.
func randomBoard(rng *rand.Rand, turns int) *board.Board {
	b := board.New(board.DefaultRows, board.DefaultCols, piece.NewSource(rng.Uint64()|1))
	for i := 0; i < turns && !b.Lost(); i++ {
		moves := b.LegalMoves()
		if _, err := b.MakeMove(moves[rng.IntN(len(moves))]); err != nil {
			panic(err)
		}
	}
	return b
}

func TestRollbackRoundTrip(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(1, 2))
	z := &zobrist.Zobrist{}
	z.Initialize(board.DefaultRows, board.DefaultCols)

	for game := 0; game < 40; game++ {
		b := randomBoard(rng, rng.IntN(30))
		if b.Lost() {
			continue
		}
		snapshot := b.Copy()
		key := z.Hash(b)
		s := New(b)
		for id := piece.O; id < piece.NumPieces; id++ {
			b.SetCurrentPiece(id)
			for _, m := range b.LegalMoves() {
				tr, err := s.TryMove(id, m)
				is.NoErr(err)
				if !tr.Lost {
					is.Equal(tr.Placed(), 4)
				}
				s.Rollback()
				is.True(b.Equals(snapshot))
			}
		}
		b.SetCurrentPiece(snapshot.CurrentPiece())
		is.Equal(z.Hash(b), key)
	}
}

func TestLossDoesNotTouchGrid(t *testing.T) {
	is := is.New(t)
	b := board.New(6, 4, piece.NewFixedSource(piece.I))
	is.NoErr(b.SetRows([]string{"x...", "x...", "x..."}))
	snapshot := b.Copy()
	s := New(b)
	tr, err := s.TryMove(piece.I, board.Move{Orient: 0, Slot: 0})
	is.NoErr(err)
	is.True(tr.Lost)
	is.Equal(tr.Placed(), 0)
	is.True(b.Equals(snapshot))
	// A loss leaves nothing to undo, so a new trial may start right away.
	tr, err = s.TryMove(piece.I, board.Move{Orient: 0, Slot: 1})
	is.NoErr(err)
	is.True(!tr.Lost)
	s.Rollback()
	is.True(b.Equals(snapshot))
}

func TestTrialFlagsFullRowsWithoutCompacting(t *testing.T) {
	is := is.New(t)
	b := board.New(board.DefaultRows, board.DefaultCols, piece.NewFixedSource(piece.I))
	is.NoErr(b.SetRows([]string{
		"xxxxxxxxx.",
		"xxxxxxxxx.",
		"xxxxx.xxx.",
		"xxxx..xxx.",
	}))
	s := New(b)
	tr, err := s.TryMove(piece.I, board.Move{Orient: 0, Slot: 9})
	is.NoErr(err)
	is.Equal(tr.RowsCleared, 2)
	is.True(tr.Full.Has(0))
	is.True(tr.Full.Has(1))
	is.True(!tr.Full.Has(2))
	// Grid rows stay where they were.
	is.True(b.Filled(3, 9))
	is.True(!b.Filled(3, 4))
	is.Equal(tr.Heights, []int{2, 2, 2, 2, 1, 0, 2, 2, 2, 2})
	s.Rollback()
	is.True(!b.Filled(0, 9))
}

func TestTrialSkylineMatchesCommit(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(5, 6))
	for game := 0; game < 60; game++ {
		b := randomBoard(rng, rng.IntN(40))
		if b.Lost() {
			continue
		}
		s := New(b)
		id := b.CurrentPiece()
		for _, m := range b.LegalMoves() {
			tr, err := s.TryMove(id, m)
			is.NoErr(err)
			if tr.Lost {
				continue
			}
			trialHeights := append([]int(nil), tr.Heights...)
			cleared := tr.RowsCleared
			s.Rollback()

			committed := b.Copy()
			got, err := committed.MakeMove(m)
			is.NoErr(err)
			is.Equal(got, cleared)
			is.Equal(committed.Heights(), trialHeights)
		}
	}
}

func TestInvalidMove(t *testing.T) {
	is := is.New(t)
	b := board.New(board.DefaultRows, board.DefaultCols, piece.NewFixedSource(piece.S))
	s := New(b)
	_, err := s.TryMove(piece.S, board.Move{Orient: 2, Slot: 0})
	is.True(errors.Is(err, ErrInvalidMove))
	_, err = s.TryMove(piece.S, board.Move{Orient: 0, Slot: 8})
	is.True(errors.Is(err, ErrInvalidMove))
}
