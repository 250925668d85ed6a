// Package evolution searches for good weight vectors by breeding a
// population of players over many generations.
package evolution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/stacker/player"
	"github.com/domino14/stacker/stats"
	"github.com/domino14/stacker/weights"
)

// Config holds the knobs of a training run.
type Config struct {
	PopulationSize int
	// Generations to run; 0 runs until the stopper fires or the context
	// is cancelled.
	Generations     int
	MutationRate    float64
	ElitismFraction float64
	SmoothingWindow int
	Adaptive        bool
	// MutationStep is how much the adaptive controller moves the rate.
	MutationStep float64
	// ChangeThreshold is the relative change in smoothed best fitness
	// below which progress counts as a plateau.
	ChangeThreshold float64
	// MaxPerturbation bounds the size of a single mutation.
	MaxPerturbation float64
	// Playouts per fitness evaluation.
	Playouts int
	// Workers caps concurrent fitness evaluations; 0 means one per CPU.
	Workers int
	// Seed makes a run reproducible; 0 seeds from the OS.
	Seed uint64
	Game player.GameConfig
}

func DefaultConfig() Config {
	return Config{
		PopulationSize:  100,
		Generations:     50,
		MutationRate:    0.05,
		ElitismFraction: 0.5,
		SmoothingWindow: 5,
		Adaptive:        true,
		MutationStep:    0.01,
		ChangeThreshold: 0.01,
		MaxPerturbation: 0.2,
		Playouts:        15,
		Game:            player.DefaultGameConfig(),
	}
}

// EliteCount is floor(PopulationSize * ElitismFraction).
func (c Config) EliteCount() int {
	return int(math.Floor(float64(c.PopulationSize) * c.ElitismFraction))
}

func (c Config) Validate() error {
	switch {
	case c.PopulationSize < 2:
		return fmt.Errorf("population size must be at least 2, got %d", c.PopulationSize)
	case c.Generations < 0:
		return fmt.Errorf("generations must not be negative, got %d", c.Generations)
	case c.MutationRate < 0 || c.MutationRate > 1:
		return fmt.Errorf("mutation rate must be within [0, 1], got %v", c.MutationRate)
	case c.ElitismFraction <= 0 || c.ElitismFraction > 1:
		return fmt.Errorf("elitism fraction must be within (0, 1], got %v", c.ElitismFraction)
	case c.EliteCount() < 2:
		return fmt.Errorf("elite pool of %d cannot breed; raise population size or elitism fraction", c.EliteCount())
	case c.SmoothingWindow < 1:
		return fmt.Errorf("smoothing window must be at least 1, got %d", c.SmoothingWindow)
	case c.MaxPerturbation <= 0 || c.MaxPerturbation > 2:
		return fmt.Errorf("max perturbation must be within (0, 2], got %v", c.MaxPerturbation)
	case c.Playouts < 1:
		return fmt.Errorf("playouts must be at least 1, got %d", c.Playouts)
	case c.Workers < 0:
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// EvaluationTaskFailure aborts a generation: one individual's fitness could
// not be computed, so the generation cannot be ranked.
type EvaluationTaskFailure struct {
	Index int
	Err   error
}

func (e *EvaluationTaskFailure) Error() string {
	return fmt.Sprintf("fitness evaluation of individual %d failed: %v", e.Index, e.Err)
}

func (e *EvaluationTaskFailure) Unwrap() error { return e.Err }

// Scored is one ranked member of a generation.
type Scored struct {
	Weights weights.Vector
	Fitness int
}

// Report summarizes one finished generation.
type Report struct {
	Generation   int
	Best         weights.Vector
	BestFitness  int
	Mean         float64
	Stdev        float64
	CI95         float64
	MutationRate float64
	// Ranked holds the whole generation, best first.
	Ranked []Scored
}

func (r Report) String() string {
	return fmt.Sprintf("generation %d best %v fitness %d", r.Generation, r.Best, r.BestFitness)
}

// Fitnesses returns the ranked fitness values.
func (r Report) Fitnesses() []float64 {
	return lo.Map(r.Ranked, func(s Scored, _ int) float64 { return float64(s.Fitness) })
}

// Engine runs the generation loop. Only Step's evaluation phase is
// concurrent; everything else happens on the caller's goroutine.
type Engine struct {
	cfg          Config
	rng          *rand.Rand
	population   []*player.Individual
	window       *FitnessWindow
	prevMean     float64
	mutationRate float64
	generation   int

	stopper   func(Report) bool
	logStream io.Writer
}

func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var rng *rand.Rand
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewPCG(frand.Uint64n(math.MaxUint64), frand.Uint64n(math.MaxUint64)))
	} else {
		rng = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	}
	e := &Engine{
		cfg:          cfg,
		rng:          rng,
		window:       NewFitnessWindow(cfg.SmoothingWindow),
		mutationRate: cfg.MutationRate,
	}
	vecs := make([]weights.Vector, cfg.PopulationSize)
	for i := range vecs {
		vecs[i] = RandomVector(rng)
	}
	e.population = e.spawn(vecs)
	return e, nil
}

// spawn builds individuals for a generation. Game seeds are drawn here, on
// the coordinating goroutine, so a seeded run does not depend on worker
// scheduling.
func (e *Engine) spawn(vecs []weights.Vector) []*player.Individual {
	pop := make([]*player.Individual, len(vecs))
	for i, v := range vecs {
		var seed uint64
		if e.cfg.Seed != 0 {
			seed = e.rng.Uint64() | 1
		}
		pop[i] = player.New(v, e.cfg.Game, seed)
	}
	return pop
}

// SetStopper installs a predicate checked after every generation.
func (e *Engine) SetStopper(fn func(Report) bool) {
	e.stopper = fn
}

// SetLogStream makes the engine append a YAML entry per generation to w.
func (e *Engine) SetLogStream(w io.Writer) {
	e.logStream = w
}

func (e *Engine) Population() []*player.Individual { return e.population }
func (e *Engine) MutationRate() float64            { return e.mutationRate }
func (e *Engine) Generation() int                  { return e.generation }
func (e *Engine) Window() *FitnessWindow           { return e.window }

func (e *Engine) workers() int {
	if e.cfg.Workers > 0 {
		return e.cfg.Workers
	}
	return min(runtime.NumCPU(), len(e.population))
}

// evaluate computes every individual's fitness on a bounded pool of
// goroutines. Each task writes only its own slot; Wait is the barrier.
func (e *Engine) evaluate(ctx context.Context) ([]int, error) {
	results := make([]int, len(e.population))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i, ind := range e.population {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &EvaluationTaskFailure{Index: i, Err: fmt.Errorf("panic: %v", r)}
				}
			}()
			fit, err := ind.Evaluate(gctx, e.cfg.Playouts)
			if err != nil {
				return &EvaluationTaskFailure{Index: i, Err: err}
			}
			results[i] = fit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Rank orders a generation by descending fitness. Equal fitness keeps the
// original order.
func Rank(pop []*player.Individual, fitness []int) []Scored {
	ranked := make([]Scored, len(pop))
	for i, ind := range pop {
		ranked[i] = Scored{Weights: ind.Weights(), Fitness: fitness[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Fitness > ranked[j].Fitness
	})
	return ranked
}

// Elite returns the weight vectors of the top k ranked individuals.
func Elite(ranked []Scored, k int) []weights.Vector {
	return lo.Map(ranked[:k], func(s Scored, _ int) weights.Vector { return s.Weights })
}

// Step runs one full generation and replaces the population with its
// offspring.
func (e *Engine) Step(ctx context.Context) (Report, error) {
	logger := zerolog.Ctx(ctx)

	fitness, err := e.evaluate(ctx)
	if err != nil {
		return Report{}, err
	}
	ranked := Rank(e.population, fitness)
	e.window.Push(float64(ranked[0].Fitness))

	st := stats.Summarize(lo.Map(fitness, func(f int, _ int) float64 { return float64(f) }))
	report := Report{
		Generation:   e.generation,
		Best:         ranked[0].Weights,
		BestFitness:  ranked[0].Fitness,
		Mean:         st.Mean(),
		Stdev:        st.Stdev(),
		CI95:         st.HalfWidth(95),
		MutationRate: e.mutationRate,
		Ranked:       ranked,
	}

	elite := Elite(ranked, e.cfg.EliteCount())
	next := Breed(e.rng, elite, e.cfg.PopulationSize)
	mutated := 0
	for i := range next {
		if Mutate(e.rng, &next[i], e.mutationRate, e.cfg.MaxPerturbation) {
			mutated++
		}
	}
	e.adapt()

	logger.Debug().
		Int("generation", e.generation).
		Int("best", report.BestFitness).
		Float64("mean", report.Mean).
		Int("mutated", mutated).
		Float64("next-mutation-rate", e.mutationRate).
		Msg("generation-done")

	if e.logStream != nil {
		if err := writeLogEntry(e.logStream, report); err != nil {
			return report, err
		}
	}

	e.population = e.spawn(next)
	e.generation++
	return report, nil
}

// adapt nudges the mutation rate once the smoothing window is full: up on a
// plateau, down on a regression, unchanged on real progress.
func (e *Engine) adapt() {
	if !e.cfg.Adaptive || !e.window.Full() {
		return
	}
	mean := e.window.Mean()
	change := relativeChange(mean, e.prevMean)
	switch {
	case math.Abs(change) < e.cfg.ChangeThreshold:
		e.mutationRate += e.cfg.MutationStep
	case change < -e.cfg.ChangeThreshold:
		e.mutationRate -= e.cfg.MutationStep
	}
	e.mutationRate = clamp(e.mutationRate, 0, 1)
	e.prevMean = mean
}

func relativeChange(mean, prev float64) float64 {
	if prev == 0 {
		if mean == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return (mean - prev) / prev
}

// Run steps through generations until the configured count is reached, the
// stopper fires, or ctx is done. onReport, if non-nil, sees every
// generation's report.
func (e *Engine) Run(ctx context.Context, onReport func(Report)) error {
	logger := zerolog.Ctx(ctx)
	for e.cfg.Generations == 0 || e.generation < e.cfg.Generations {
		if err := ctx.Err(); err != nil {
			return err
		}
		report, err := e.Step(ctx)
		if err != nil {
			var tf *EvaluationTaskFailure
			if errors.As(err, &tf) {
				logger.Error().Err(err).Int("generation", e.generation).Msg("aborting training run")
			}
			return err
		}
		if onReport != nil {
			onReport(report)
		}
		if e.stopper != nil && e.stopper(report) {
			logger.Info().Int("generation", report.Generation).Msg("stopping condition reached")
			return nil
		}
	}
	return nil
}
