package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/stacker/board"
	"github.com/domino14/stacker/evolution"
	"github.com/domino14/stacker/player"
	"github.com/domino14/stacker/weights"
)

const (
	ModePlay  = "play"
	ModeTrain = "train"
	ModeShell = "shell"
)

const (
	ConfigMode            = "mode"
	ConfigDebug           = "debug"
	ConfigRows            = "rows"
	ConfigCols            = "cols"
	ConfigMaxPieces       = "max-pieces"
	ConfigSeed            = "seed"
	ConfigWeights         = "weights"
	ConfigVisualize       = "visualize"
	ConfigPopulationSize  = "population-size"
	ConfigGenerations     = "generations"
	ConfigMutationRate    = "mutation-rate"
	ConfigElitismFraction = "elitism-fraction"
	ConfigSmoothingWindow = "smoothing-window"
	ConfigAdaptive        = "adaptive"
	ConfigMutationStep    = "mutation-step"
	ConfigChangeThreshold = "change-threshold"
	ConfigMaxPerturbation = "max-perturbation"
	ConfigPlayouts        = "playouts"
	ConfigWorkers         = "workers"
	ConfigGenerationLog   = "generation-log"
	ConfigCPUProfile      = "cpu-profile"
)

// Config wraps a viper instance. Values come, in increasing priority, from
// defaults, an optional stacker.yaml, STACKER_* environment variables and
// command-line flags.
type Config struct {
	viper.Viper
}

func (c *Config) setDefaults() {
	ev := evolution.DefaultConfig()
	c.SetDefault(ConfigMode, ModePlay)
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigRows, board.DefaultRows)
	c.SetDefault(ConfigCols, board.DefaultCols)
	c.SetDefault(ConfigMaxPieces, 0)
	c.SetDefault(ConfigSeed, "")
	c.SetDefault(ConfigWeights, weights.Default.String())
	c.SetDefault(ConfigVisualize, false)
	c.SetDefault(ConfigPopulationSize, ev.PopulationSize)
	c.SetDefault(ConfigGenerations, ev.Generations)
	c.SetDefault(ConfigMutationRate, ev.MutationRate)
	c.SetDefault(ConfigElitismFraction, ev.ElitismFraction)
	c.SetDefault(ConfigSmoothingWindow, ev.SmoothingWindow)
	c.SetDefault(ConfigAdaptive, ev.Adaptive)
	c.SetDefault(ConfigMutationStep, ev.MutationStep)
	c.SetDefault(ConfigChangeThreshold, ev.ChangeThreshold)
	c.SetDefault(ConfigMaxPerturbation, ev.MaxPerturbation)
	c.SetDefault(ConfigPlayouts, ev.Playouts)
	c.SetDefault(ConfigWorkers, 0)
	c.SetDefault(ConfigGenerationLog, "")
	c.SetDefault(ConfigCPUProfile, "")
}

// DefaultConfig returns a config holding only the defaults.
func DefaultConfig() Config {
	c := Config{Viper: *viper.New()}
	c.setDefaults()
	return c
}

// Load reads the config file, the environment and the given arguments.
func (c *Config) Load(args []string) error {
	c.Viper = *viper.New()
	c.setDefaults()

	fs := pflag.NewFlagSet("stacker", pflag.ContinueOnError)
	fs.String(ConfigMode, ModePlay, "play a single game, train weights, or open the shell (play|train|shell)")
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigRows, board.DefaultRows, "board rows, including the overflow row")
	fs.Int(ConfigCols, board.DefaultCols, "board columns")
	fs.Int(ConfigMaxPieces, 0, "end every game after this many pieces (0 = play until loss)")
	fs.String(ConfigSeed, "", "seed for reproducible runs; a number or any phrase")
	fs.String(ConfigWeights, weights.Default.String(), "weight vector for play mode: rowsCleared,holes,bumpiness,aggregateHeight")
	fs.Bool(ConfigVisualize, false, "print the board after every move in play mode")
	fs.Int(ConfigPopulationSize, 0, "individuals per generation")
	fs.Int(ConfigGenerations, 0, "generations to train (0 = until interrupted)")
	fs.Float64(ConfigMutationRate, 0, "initial per-individual mutation probability")
	fs.Float64(ConfigElitismFraction, 0, "fraction of each ranked generation kept as parents")
	fs.Int(ConfigSmoothingWindow, 0, "generations of best fitness averaged to detect plateaus")
	fs.Bool(ConfigAdaptive, true, "adapt the mutation rate to progress")
	fs.Float64(ConfigMutationStep, 0, "adaptive mutation rate step")
	fs.Float64(ConfigChangeThreshold, 0, "relative change that counts as progress")
	fs.Float64(ConfigMaxPerturbation, 0, "largest single mutation of a weight")
	fs.Int(ConfigPlayouts, 0, "games per fitness evaluation")
	fs.Int(ConfigWorkers, 0, "concurrent fitness evaluations (0 = one per CPU)")
	fs.String(ConfigGenerationLog, "", "append a YAML record of every generation to this file")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	// Only flags given on the command line override lower layers.
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		if err := c.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return bindErr
	}

	c.SetEnvPrefix("stacker")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	c.SetConfigName("stacker")
	c.SetConfigType("yaml")
	c.AddConfigPath(".")
	if err := c.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

// Seed returns the configured seed. 0 means unseeded.
func (c *Config) Seed() uint64 {
	return ParseSeed(c.GetString(ConfigSeed))
}

// ParseSeed turns a seed phrase into a number. Numbers are used as-is; any
// other phrase is hashed. An empty phrase is 0.
func ParseSeed(s string) uint64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n
	}
	return xxhash.Sum64String(s)
}

func (c *Config) Weights() (weights.Vector, error) {
	return weights.Parse(c.GetString(ConfigWeights))
}

func (c *Config) Game() player.GameConfig {
	return player.GameConfig{
		Rows:      c.GetInt(ConfigRows),
		Cols:      c.GetInt(ConfigCols),
		MaxPieces: c.GetInt(ConfigMaxPieces),
	}
}

// Evolution builds a validated training configuration.
func (c *Config) Evolution() (evolution.Config, error) {
	ec := evolution.Config{
		PopulationSize:  c.GetInt(ConfigPopulationSize),
		Generations:     c.GetInt(ConfigGenerations),
		MutationRate:    c.GetFloat64(ConfigMutationRate),
		ElitismFraction: c.GetFloat64(ConfigElitismFraction),
		SmoothingWindow: c.GetInt(ConfigSmoothingWindow),
		Adaptive:        c.GetBool(ConfigAdaptive),
		MutationStep:    c.GetFloat64(ConfigMutationStep),
		ChangeThreshold: c.GetFloat64(ConfigChangeThreshold),
		MaxPerturbation: c.GetFloat64(ConfigMaxPerturbation),
		Playouts:        c.GetInt(ConfigPlayouts),
		Workers:         c.GetInt(ConfigWorkers),
		Seed:            c.Seed(),
		Game:            c.Game(),
	}
	if err := ec.Validate(); err != nil {
		return ec, fmt.Errorf("training config: %w", err)
	}
	return ec, nil
}

// SanitizedSettings returns every setting for logging.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
