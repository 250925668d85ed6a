package evolution

import (
	"io"

	"gopkg.in/yaml.v3"
)

// LogGeneration is the per-generation debug record written to the log
// stream. It is a trace of the run, not a checkpoint: nothing reads it back.
type LogGeneration struct {
	Generation   int         `yaml:"generation"`
	Best         []float64   `yaml:"best,flow"`
	BestFitness  int         `yaml:"best_fitness"`
	Mean         float64     `yaml:"mean"`
	Stdev        float64     `yaml:"stdev"`
	MutationRate float64     `yaml:"mutation_rate"`
	Members      []LogMember `yaml:"members,omitempty"`
}

type LogMember struct {
	Weights []float64 `yaml:"weights,flow"`
	Fitness int       `yaml:"fitness"`
}

// writeLogEntry appends the report as one item of a YAML sequence, so the
// whole stream parses as a list.
func writeLogEntry(w io.Writer, r Report) error {
	entry := LogGeneration{
		Generation:   r.Generation,
		Best:         r.Best[:],
		BestFitness:  r.BestFitness,
		Mean:         r.Mean,
		Stdev:        r.Stdev,
		MutationRate: r.MutationRate,
	}
	for _, s := range r.Ranked {
		entry.Members = append(entry.Members, LogMember{Weights: s.Weights[:], Fitness: s.Fitness})
	}
	out, err := yaml.Marshal([]LogGeneration{entry})
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
