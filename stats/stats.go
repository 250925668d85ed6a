// Package stats keeps running statistics over fitness samples.
package stats

import "math"

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Statistic accumulates samples with Welford's online algorithm.
type Statistic struct {
	n    int
	mean float64
	m2   float64
	min  float64
	max  float64
}

func (s *Statistic) Push(val float64) {
	s.n++
	if s.n == 1 {
		s.mean = val
		s.m2 = 0
		s.min, s.max = val, val
		return
	}
	delta := val - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (val - s.mean)
	s.min = math.Min(s.min, val)
	s.max = math.Max(s.max, val)
}

func (s *Statistic) Count() int   { return s.n }
func (s *Statistic) Min() float64 { return s.min }
func (s *Statistic) Max() float64 { return s.max }

func (s *Statistic) Mean() float64 {
	if s.n == 0 {
		return 0
	}
	return s.mean
}

// Variance is the sample variance.
func (s *Statistic) Variance() float64 {
	if s.n <= 1 {
		return 0
	}
	return s.m2 / float64(s.n-1)
}

func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Statistic) StandardError() float64 {
	if s.n == 0 {
		return 0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}

// HalfWidth returns the half-width of the two-sided confidence interval
// around the mean at the given confidence level, in percent.
func (s *Statistic) HalfWidth(confidence float64) float64 {
	return ZVal(confidence) * s.StandardError()
}

// Summarize pushes every sample into a new Statistic.
func Summarize(samples []float64) *Statistic {
	s := &Statistic{}
	for _, x := range samples {
		s.Push(x)
	}
	return s
}
