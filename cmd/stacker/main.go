package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/stacker/board"
	"github.com/domino14/stacker/config"
	"github.com/domino14/stacker/evolution"
	"github.com/domino14/stacker/player"
	"github.com/domino14/stacker/shell"
)

var (
	GitVersion string
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
	log.Debug().Msgf("Loaded config: %v", cfg.SanitizedSettings())

	if cfg.GetString(config.ConfigCPUProfile) != "" {
		f, err := os.Create(cfg.GetString(config.ConfigCPUProfile))
		if err != nil {
			panic("could not create CPU profile: " + err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic("could not start CPU profile: " + err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background()))
	defer cancel()
	sig := make(chan os.Signal, 1)
	done := make(chan struct{})
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		cancel()
		close(done)
	}()

	var err error
	switch mode := cfg.GetString(config.ConfigMode); mode {
	case config.ModePlay:
		err = play(cfg)
	case config.ModeTrain:
		err = train(ctx, cfg)
	case config.ModeShell:
		fmt.Println("stacker", GitVersion)
		sc := shell.NewShellController(cfg)
		go sc.Loop(ctx, sig)
		<-done
	default:
		err = fmt.Errorf("unknown mode %q; want play, train or shell", mode)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("exiting")
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

// play runs a single game with the configured weights.
func play(cfg *config.Config) error {
	w, err := cfg.Weights()
	if err != nil {
		return err
	}
	ind := player.New(w, cfg.Game(), cfg.Seed())
	if cfg.GetBool(config.ConfigVisualize) {
		ind.SetObserver(func(b *board.Board, m board.Move) {
			fmt.Printf("move %v\n%s\n", m, b.ToDisplayText())
		})
	}
	log.Info().Str("weights", w.Describe()).Msg("playing")
	rows, err := ind.Play()
	if err != nil {
		return err
	}
	fmt.Printf("rows cleared: %d (%d pieces)\n", rows, ind.Board().Turn())
	return nil
}

// train evolves weights, printing one line per generation.
func train(ctx context.Context, cfg *config.Config) error {
	ec, err := cfg.Evolution()
	if err != nil {
		return err
	}
	eng, err := evolution.NewEngine(ec)
	if err != nil {
		return err
	}
	if path := cfg.GetString(config.ConfigGenerationLog); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		eng.SetLogStream(f)
	}
	log.Info().
		Int("population", ec.PopulationSize).
		Int("generations", ec.Generations).
		Int("elite", ec.EliteCount()).
		Uint64("seed", ec.Seed).
		Msg("training")

	var last *evolution.Report
	err = eng.Run(ctx, func(r evolution.Report) {
		last = &r
		fmt.Println(r.String())
	})
	if last != nil {
		fits := last.Fitnesses()
		fmt.Printf("final generation: mean %.1f ± %.1f, stdev %.1f\n", last.Mean, last.CI95, last.Stdev)
		if len(fits) > 1 && fits[0] != fits[len(fits)-1] {
			histogram.Fprint(os.Stdout, histogram.Hist(10, fits), histogram.Linear(40))
		}
	}
	return err
}
