package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"

	"github.com/domino14/stacker/board"
	"github.com/domino14/stacker/config"
	"github.com/domino14/stacker/evaluator"
	"github.com/domino14/stacker/evolution"
	"github.com/domino14/stacker/piece"
	"github.com/domino14/stacker/weights"
	"github.com/domino14/stacker/zobrist"
)

const defaultListing = 15

var errNoGame = errors.New("no game in progress; start one with new")

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	seed := sc.cfg.Seed()
	if len(cmd.args) > 0 {
		seed = config.ParseSeed(strings.Join(cmd.args, " "))
	}
	gc := sc.cfg.Game()
	sc.board = board.New(gc.Rows, gc.Cols, piece.NewSource(seed))
	sc.eval = evaluator.New(sc.board)
	sc.z = &zobrist.Zobrist{}
	sc.z.Initialize(gc.Rows, gc.Cols)
	sc.eval.Verify(sc.z)
	sc.listing = nil
	return msg(sc.board.ToDisplayText()), nil
}

func (sc *ShellController) setWeights(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.weights.Describe()), nil
	}
	w, err := weights.Parse(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	sc.weights = w
	sc.listing = nil
	return msg("weights set to " + w.String()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	return msg(sc.board.ToDisplayText()), nil
}

func moveTableHeader() string {
	return "  #  Move       Score  Cleared  Holes  Bumpiness  Height"
}

func moveTableRow(idx int, s evaluator.ScoredMove) string {
	if s.Lost {
		return fmt.Sprintf("%3d  %-8v %7s", idx, s.Move, "loss")
	}
	return fmt.Sprintf("%3d  %-8v %7.3f  %7.0f  %5.0f  %9.0f  %6.0f",
		idx, s.Move, s.Score, s.Features[0], s.Features[1], s.Features[2], s.Features[3])
}

// gen lists every legal move for the piece on turn, best first.
func (sc *ShellController) gen(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	n := defaultListing
	if len(cmd.args) > 0 {
		var err error
		if n, err = strconv.Atoi(cmd.args[0]); err != nil || n < 1 {
			return nil, fmt.Errorf("bad listing size %q", cmd.args[0])
		}
	}
	if sc.board.Lost() {
		return nil, errors.New("game is over")
	}
	scored, err := sc.eval.ScoreMoves(sc.board.LegalMoves(), sc.weights)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	sc.listing = scored[:min(n, len(scored))]

	rows := lo.Map(sc.listing, func(s evaluator.ScoredMove, i int) string {
		return moveTableRow(i+1, s)
	})
	return msg(fmt.Sprintf("piece %v, %d moves\n%s\n%s",
		sc.board.CurrentPiece(), len(scored), moveTableHeader(), strings.Join(rows, "\n"))), nil
}

func (sc *ShellController) best(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	moves := sc.board.LegalMoves()
	idx, err := sc.eval.BestMove(moves, sc.weights)
	if err != nil {
		return nil, err
	}
	if idx == evaluator.NoMove {
		return nil, errors.New("no legal moves")
	}
	s, err := sc.eval.Score(moves[idx], sc.weights)
	if err != nil {
		return nil, err
	}
	return msg(moveTableHeader() + "\n" + moveTableRow(idx, s)), nil
}

func (sc *ShellController) commit(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: commit <n>, where n is a row of the last gen listing")
	}
	n, err := strconv.Atoi(cmd.args[0])
	if err != nil || n < 1 || n > len(sc.listing) {
		return nil, fmt.Errorf("no move %q in the last listing", cmd.args[0])
	}
	m := sc.listing[n-1].Move
	cleared, err := sc.board.MakeMove(m)
	if err != nil {
		return nil, err
	}
	sc.listing = nil
	return msg(fmt.Sprintf("played %v, cleared %d\n%s", m, cleared, sc.board.ToDisplayText())), nil
}

func (sc *ShellController) autoplay(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	limit := -1
	if len(cmd.args) > 0 {
		var err error
		if limit, err = strconv.Atoi(cmd.args[0]); err != nil || limit < 1 {
			return nil, fmt.Errorf("bad piece count %q", cmd.args[0])
		}
	}
	start := sc.board.RowsCleared()
	played := 0
	for !sc.board.Lost() && played != limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		moves := sc.board.LegalMoves()
		idx, err := sc.eval.BestMove(moves, sc.weights)
		if err != nil {
			return nil, err
		}
		if idx == evaluator.NoMove {
			break
		}
		if _, err := sc.board.MakeMove(moves[idx]); err != nil {
			return nil, err
		}
		played++
	}
	sc.listing = nil
	return msg(fmt.Sprintf("%s\nplayed %d pieces, cleared %d rows",
		sc.board.ToDisplayText(), played, sc.board.RowsCleared()-start)), nil
}

func (sc *ShellController) hash(cmd *shellcmd) (*Response, error) {
	if sc.board == nil {
		return nil, errNoGame
	}
	return msg(fmt.Sprintf("%016x", sc.z.Hash(sc.board))), nil
}

// train runs a training session with the current settings and adopts the
// best weights of the final generation.
func (sc *ShellController) train(ctx context.Context, cmd *shellcmd) (*Response, error) {
	ec, err := sc.cfg.Evolution()
	if err != nil {
		return nil, err
	}
	if len(cmd.args) > 0 {
		n, err := strconv.Atoi(cmd.args[0])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("bad generation count %q", cmd.args[0])
		}
		ec.Generations = n
	}
	if ec.Generations == 0 {
		return nil, errors.New("train needs a generation count")
	}
	eng, err := evolution.NewEngine(ec)
	if err != nil {
		return nil, err
	}
	if path, ok := cmd.options["log"]; ok {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		eng.SetLogStream(f)
	}
	var last *evolution.Report
	err = eng.Run(ctx, func(r evolution.Report) {
		last = &r
		sc.showMessage(r.String())
	})
	if last != nil {
		sc.lastReport = last
		sc.weights = last.Best
	}
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("adopted %v (fitness %d, mean %.1f ± %.1f)",
		last.Best, last.BestFitness, last.Mean, last.CI95)), nil
}

func (sc *ShellController) fitness(cmd *shellcmd) (*Response, error) {
	if sc.lastReport == nil {
		return nil, errors.New("nothing trained yet")
	}
	return msg(fitnessHistogram(*sc.lastReport)), nil
}

func fitnessHistogram(r evolution.Report) string {
	fits := r.Fitnesses()
	var sb strings.Builder
	fmt.Fprintf(&sb, "generation %d fitness, %d individuals\n", r.Generation, len(fits))
	if lo.Min(fits) == lo.Max(fits) {
		fmt.Fprintf(&sb, "all %v\n", fits[0])
		return sb.String()
	}
	histogram.Fprint(&sb, histogram.Hist(10, fits), histogram.Linear(40))
	return sb.String()
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	settings := sc.cfg.AllSettings()
	if len(cmd.args) == 0 {
		keys := lo.Keys(settings)
		sort.Strings(keys)
		rows := lo.Map(keys, func(k string, _ int) string {
			return fmt.Sprintf("  %s: %v", k, settings[k])
		})
		return msg("Settings:\n" + strings.Join(rows, "\n")), nil
	}
	key := cmd.args[0]
	if !lo.HasKey(settings, key) {
		return nil, errors.New("no such setting: " + key)
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", key, settings[key])), nil
	}
	val := strings.Join(cmd.args[1:], " ")
	sc.cfg.Set(key, val)
	if key == config.ConfigWeights {
		w, err := sc.cfg.Weights()
		if err != nil {
			return nil, err
		}
		sc.weights = w
	}
	return msg("set " + key + " to " + val), nil
}
