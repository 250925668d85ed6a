package evaluator

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/stacker/board"
	"github.com/domino14/stacker/piece"
	"github.com/domino14/stacker/sim"
	"github.com/domino14/stacker/weights"
	"github.com/domino14/stacker/zobrist"
)

func TestBestMoveEmpty(t *testing.T) {
	is := is.New(t)
	b := board.New(board.DefaultRows, board.DefaultCols, piece.NewFixedSource(piece.O))
	idx, err := New(b).BestMove(nil, weights.Default)
	is.NoErr(err)
	is.Equal(idx, NoMove)
}

func TestBestMoveTieGoesToFirst(t *testing.T) {
	is := is.New(t)
	b := board.New(board.DefaultRows, board.DefaultCols, piece.NewFixedSource(piece.O))
	e := New(b)
	// Only bumpiness counts: an O in either corner scores -2, anywhere
	// else -4.
	w := weights.Vector{0, 0, -1, 0}
	moves := b.LegalMoves()
	idx, err := e.BestMove(moves, w)
	is.NoErr(err)
	is.Equal(moves[idx], board.Move{Orient: 0, Slot: 0})

	first, err := e.Score(moves[0], w)
	is.NoErr(err)
	last, err := e.Score(moves[len(moves)-1], w)
	is.NoErr(err)
	is.Equal(first.Score, last.Score)

	// Reverse the candidates: the right corner now comes first and wins.
	rev := make([]board.Move, len(moves))
	for i, m := range moves {
		rev[len(moves)-1-i] = m
	}
	idx, err = e.BestMove(rev, w)
	is.NoErr(err)
	is.Equal(idx, 0)
	is.Equal(rev[idx], board.Move{Orient: 0, Slot: 8})
}

func TestLossNeverChosenOverLegalMove(t *testing.T) {
	is := is.New(t)
	b := board.New(6, 4, piece.NewFixedSource(piece.I))
	is.NoErr(b.SetRows([]string{"x...", "x...", "x..."}))
	e := New(b)
	losing := board.Move{Orient: 0, Slot: 0}
	safe := board.Move{Orient: 1, Slot: 0}
	// Weights that reward height would love the tall tower if it counted.
	w := weights.Vector{0, 0, 0, 1}

	idx, err := e.BestMove([]board.Move{losing, safe}, w)
	is.NoErr(err)
	is.Equal(idx, 1)

	sm, err := e.Score(losing, w)
	is.NoErr(err)
	is.True(sm.Lost)
	is.Equal(sm.Score, LossScore)

	// When everything loses, the first move is still returned.
	idx, err = e.BestMove([]board.Move{losing, losing}, w)
	is.NoErr(err)
	is.Equal(idx, 0)
}

func TestBestMovePrefersClears(t *testing.T) {
	is := is.New(t)
	b := board.New(board.DefaultRows, board.DefaultCols, piece.NewFixedSource(piece.I))
	is.NoErr(b.SetFromPlaintext(string(board.Well)))
	snapshot := b.Copy()
	e := New(b)
	z := &zobrist.Zobrist{}
	z.Initialize(b.Rows(), b.Cols())
	e.Verify(z)

	moves := b.LegalMoves()
	idx, err := e.BestMove(moves, weights.Default)
	is.NoErr(err)
	is.Equal(moves[idx], board.Move{Orient: 0, Slot: 9})
	is.True(b.Equals(snapshot))

	scored, err := e.ScoreMoves(moves, weights.Default)
	is.NoErr(err)
	is.Equal(len(scored), len(moves))
	is.Equal(scored[idx].Index, idx)
	for _, s := range scored {
		is.True(s.Score <= scored[idx].Score)
	}
	is.True(b.Equals(snapshot))
}

func TestBestMoveInvalid(t *testing.T) {
	is := is.New(t)
	b := board.New(board.DefaultRows, board.DefaultCols, piece.NewFixedSource(piece.O))
	_, err := New(b).BestMove([]board.Move{{Orient: 0, Slot: 0}, {Orient: 3, Slot: 0}}, weights.Default)
	is.True(errors.Is(err, sim.ErrInvalidMove))
}
