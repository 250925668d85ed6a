// Package shell is an interactive console for playing single games with a
// weight vector and for running small training sessions.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/stacker/board"
	"github.com/domino14/stacker/config"
	"github.com/domino14/stacker/evaluator"
	"github.com/domino14/stacker/evolution"
	"github.com/domino14/stacker/weights"
	"github.com/domino14/stacker/zobrist"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errExit              = errors.New("exit")
)

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

// extractFields splits a line into a command, its positional arguments and
// its -key value options. Negative numbers are arguments, not options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	var args []string
	options := map[string]string{}
	for i := 1; i < len(fields); i++ {
		f := fields[i]
		if isOption(f) {
			if i+1 >= len(fields) {
				return nil, errWrongOptionSyntax
			}
			options[f[1:]] = fields[i+1]
			i++
			continue
		}
		args = append(args, f)
	}
	return &shellcmd{cmd: fields[0], args: args, options: options}, nil
}

func isOption(f string) bool {
	if len(f) < 2 || f[0] != '-' {
		return false
	}
	_, err := strconv.ParseFloat(f, 64)
	return err != nil
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type ShellController struct {
	l   *readline.Instance
	out io.Writer
	cfg *config.Config

	weights    weights.Vector
	board      *board.Board
	eval       *evaluator.Evaluator
	z          *zobrist.Zobrist
	listing    []evaluator.ScoredMove
	lastReport *evolution.Report
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mstacker>\033[0m ",
		HistoryFile:     "/tmp/stacker_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc := newController(cfg, l.Stderr())
	sc.l = l
	return sc
}

func newController(cfg *config.Config, out io.Writer) *ShellController {
	w, err := cfg.Weights()
	if err != nil {
		log.Err(err).Msg("bad weights setting; using defaults")
		w = weights.Default
	}
	return &ShellController{out: out, cfg: cfg, weights: w}
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// Execute runs a single command line.
func (sc *ShellController) Execute(ctx context.Context, line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "new":
		return sc.newGame(cmd)
	case "weights":
		return sc.setWeights(cmd)
	case "show":
		return sc.show(cmd)
	case "gen":
		return sc.gen(cmd)
	case "best":
		return sc.best(cmd)
	case "commit":
		return sc.commit(cmd)
	case "autoplay":
		return sc.autoplay(ctx, cmd)
	case "hash":
		return sc.hash(cmd)
	case "train":
		return sc.train(ctx, cmd)
	case "fitness":
		return sc.fitness(cmd)
	case "set":
		return sc.set(cmd)
	case "help":
		var sb strings.Builder
		usage(&sb)
		return msg(strings.TrimRight(sb.String(), "\n")), nil
	case "exit", "bye":
		return nil, errExit
	default:
		return nil, errors.New("command " + strconv.Quote(cmd.cmd) + " not found; try help")
	}
}

func (sc *ShellController) Loop(ctx context.Context, sig chan os.Signal) {
	defer sc.l.Close()
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				return
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.Execute(ctx, line)
		if errors.Is(err, errExit) {
			sig <- syscall.SIGINT
			return
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil && resp.message != "" {
			sc.showMessage(resp.message)
		}
	}
}
