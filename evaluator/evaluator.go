// Package evaluator picks the best move for the piece on turn by running
// each candidate as a trial and scoring its features against a weight
// vector.
package evaluator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/domino14/stacker/board"
	"github.com/domino14/stacker/heuristic"
	"github.com/domino14/stacker/sim"
	"github.com/domino14/stacker/weights"
	"github.com/domino14/stacker/zobrist"
)

// NoMove is returned by BestMove when there is nothing to choose from.
const NoMove = -1

// LossScore is the score of a move that tops out the board.
var LossScore = math.Inf(-1)

// ScoredMove is one evaluated candidate.
type ScoredMove struct {
	Index    int
	Move     board.Move
	Score    float64
	Features heuristic.Features
	Lost     bool
}

func (s ScoredMove) String() string {
	if s.Lost {
		return fmt.Sprintf("%3d: %-8v loss", s.Index, s.Move)
	}
	return fmt.Sprintf("%3d: %-8v %9.4f  cleared %.0f holes %.0f bump %.0f height %.0f",
		s.Index, s.Move, s.Score,
		s.Features[heuristic.RowsCleared], s.Features[heuristic.Holes],
		s.Features[heuristic.Bumpiness], s.Features[heuristic.AggregateHeight])
}

// Evaluator scores moves on one board. It is owned by a single player.
type Evaluator struct {
	sim *sim.Simulator
	z   *zobrist.Zobrist
}

func New(b *board.Board) *Evaluator {
	return &Evaluator{sim: sim.New(b)}
}

// Verify makes every trial check that its rollback restored the board
// fingerprint, panicking otherwise. Pass nil to turn it off.
func (e *Evaluator) Verify(z *zobrist.Zobrist) {
	e.z = z
}

// Score runs a single trial and always rolls it back.
func (e *Evaluator) Score(m board.Move, w weights.Vector) (ScoredMove, error) {
	b := e.sim.Board()
	var before uint64
	if e.z != nil {
		before = e.z.Hash(b)
	}
	tr, err := e.sim.TryMove(b.CurrentPiece(), m)
	if err != nil {
		return ScoredMove{}, err
	}
	sm := ScoredMove{Move: m}
	if tr.Lost {
		sm.Lost = true
		sm.Score = LossScore
	} else {
		sm.Features = heuristic.Extract(b, tr.Heights, tr.Full, tr.RowsCleared)
		sm.Score = floats.Dot(w[:], sm.Features[:])
	}
	e.sim.Rollback()
	if e.z != nil && e.z.Hash(b) != before {
		panic(fmt.Sprintf("board fingerprint changed after trial of %v", m))
	}
	return sm, nil
}

// BestMove returns the index of the highest scoring move. Ties go to the
// earliest move. A losing move is only picked when every move loses.
func (e *Evaluator) BestMove(moves []board.Move, w weights.Vector) (int, error) {
	best := NoMove
	bestScore := LossScore
	for i, m := range moves {
		sm, err := e.Score(m, w)
		if err != nil {
			return NoMove, fmt.Errorf("move %d (%v): %w", i, m, err)
		}
		if best == NoMove || sm.Score > bestScore {
			best = i
			bestScore = sm.Score
		}
	}
	return best, nil
}

// ScoreMoves evaluates every move, in order.
func (e *Evaluator) ScoreMoves(moves []board.Move, w weights.Vector) ([]ScoredMove, error) {
	scored := make([]ScoredMove, len(moves))
	for i, m := range moves {
		sm, err := e.Score(m, w)
		if err != nil {
			return nil, fmt.Errorf("move %d (%v): %w", i, m, err)
		}
		sm.Index = i
		scored[i] = sm
	}
	return scored, nil
}
