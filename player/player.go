// Package player contains the agent that plays full games with a fixed
// weight vector.
package player

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog/log"

	"github.com/domino14/stacker/board"
	"github.com/domino14/stacker/cache"
	"github.com/domino14/stacker/evaluator"
	"github.com/domino14/stacker/piece"
	"github.com/domino14/stacker/weights"
	"github.com/domino14/stacker/zobrist"
)

// Fingerprints are comparable across processes, so the keys are fixed.
const fingerprintSeed = 0x5eed

// GameConfig describes the games an individual plays.
type GameConfig struct {
	Rows, Cols int
	// MaxPieces ends a game after this many pieces. 0 plays until loss.
	MaxPieces int
	// Source, if set, supplies the piece source of every new game and
	// overrides the seed.
	Source func() piece.Source
}

func DefaultGameConfig() GameConfig {
	return GameConfig{Rows: board.DefaultRows, Cols: board.DefaultCols}
}

// Individual is a weight vector together with the board it plays on.
type Individual struct {
	weights weights.Vector
	fitness int

	cfg   GameConfig
	seeds *rand.Rand

	board *board.Board
	eval  *evaluator.Evaluator
	z     *zobrist.Zobrist

	observer func(*board.Board, board.Move)
}

// New creates an individual with a fresh board. With a non-zero seed every
// game it plays draws a reproducible piece sequence; with zero they are
// random.
func New(w weights.Vector, cfg GameConfig, seed uint64) *Individual {
	ind := &Individual{weights: w, cfg: cfg}
	if seed != 0 {
		ind.seeds = rand.New(rand.NewPCG(seed, ^seed))
	}
	ind.ResetState()
	return ind
}

func (ind *Individual) Weights() weights.Vector { return ind.weights }
func (ind *Individual) Fitness() int            { return ind.fitness }
func (ind *Individual) Board() *board.Board     { return ind.board }

// SetObserver registers a callback run after every committed move.
func (ind *Individual) SetObserver(fn func(*board.Board, board.Move)) {
	ind.observer = fn
}

// ResetState throws away the current game and starts a new one.
func (ind *Individual) ResetState() {
	var src piece.Source
	switch {
	case ind.cfg.Source != nil:
		src = ind.cfg.Source()
	case ind.seeds != nil:
		src = piece.NewSource(ind.seeds.Uint64() | 1)
	default:
		src = piece.NewSource(0)
	}
	ind.board = board.New(ind.cfg.Rows, ind.cfg.Cols, src)
	ind.eval = evaluator.New(ind.board)
}

// Play plays the current game to the end and returns the rows it cleared.
func (ind *Individual) Play() (int, error) {
	b := ind.board
	for !b.Lost() {
		if ind.cfg.MaxPieces > 0 && int(b.Turn()) >= ind.cfg.MaxPieces {
			break
		}
		moves := b.LegalMoves()
		idx, err := ind.eval.BestMove(moves, ind.weights)
		if err != nil {
			return b.RowsCleared(), err
		}
		if idx == evaluator.NoMove {
			break
		}
		if _, err := b.MakeMove(moves[idx]); err != nil {
			return b.RowsCleared(), fmt.Errorf("commit %v: %w", moves[idx], err)
		}
		if ind.observer != nil {
			ind.observer(b, moves[idx])
		}
	}
	if e := log.Debug(); e.Enabled() {
		e.Int("rows", b.RowsCleared()).
			Int32("turns", b.Turn()).
			Uint64("fingerprint", ind.Fingerprint()).
			Msg("game-over")
	}
	return b.RowsCleared(), nil
}

// Fingerprint hashes the current board position. Key tables are shared by
// every individual playing the same board size.
func (ind *Individual) Fingerprint() uint64 {
	if ind.z == nil {
		rows, cols := ind.cfg.Rows, ind.cfg.Cols
		// The loader cannot fail.
		obj, _ := cache.Load(fmt.Sprintf("zobrist:%dx%d", rows, cols), func(string) (any, error) {
			z := &zobrist.Zobrist{}
			z.InitializeSeeded(rows, cols, fingerprintSeed)
			return z, nil
		})
		ind.z = obj.(*zobrist.Zobrist)
	}
	return ind.z.Hash(ind.board)
}

// Evaluate plays n independent games and stores their summed rows cleared
// as the individual's fitness.
func (ind *Individual) Evaluate(ctx context.Context, n int) (int, error) {
	total := 0
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if ind.board.Turn() > 0 {
			ind.ResetState()
		}
		rows, err := ind.Play()
		if err != nil {
			return total, err
		}
		total += rows
	}
	ind.fitness = total
	return total, nil
}
