// Package weights holds the weight vector a player scores moves with.
package weights

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/domino14/stacker/heuristic"
)

// Len is the number of weights, one per heuristic feature.
const Len = int(heuristic.NumFeatures)

var ErrMalformedWeightVector = errors.New("malformed weight vector")

// Vector is ordered rowsCleared, holes, bumpiness, aggregateHeight.
type Vector [Len]float64

// Default is a hand-tuned vector that plays reasonably well.
var Default = Vector{0.76, -0.36, -0.18, -0.51}

// New builds a vector from exactly Len values.
func New(vals ...float64) (Vector, error) {
	var v Vector
	if len(vals) != Len {
		return v, fmt.Errorf("%w: got %d values, want %d", ErrMalformedWeightVector, len(vals), Len)
	}
	copy(v[:], vals)
	return v, nil
}

// Parse reads a comma- or space-separated list of Len numbers.
func Parse(s string) (Vector, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '[' || r == ']'
	})
	vals := make([]float64, 0, len(fields))
	for _, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Vector{}, fmt.Errorf("%w: %v", ErrMalformedWeightVector, err)
		}
		vals = append(vals, x)
	}
	return New(vals...)
}

func (v Vector) String() string {
	parts := make([]string, Len)
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 4, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Describe names each weight.
func (v Vector) Describe() string {
	parts := make([]string, Len)
	for i, x := range v {
		parts[i] = fmt.Sprintf("%s=%.4f", heuristic.Feature(i), x)
	}
	return strings.Join(parts, " ")
}
