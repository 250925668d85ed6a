// Package heuristic extracts the feature vector a weight vector is scored
// against. Every function here is pure.
package heuristic

import "github.com/domino14/stacker/board"

// Feature indexes into Features.
type Feature int

const (
	RowsCleared Feature = iota
	Holes
	Bumpiness
	AggregateHeight
	NumFeatures
)

var featureNames = [NumFeatures]string{"rowsCleared", "holes", "bumpiness", "aggregateHeight"}

func (f Feature) String() string {
	if f < 0 || f >= NumFeatures {
		return "unknown"
	}
	return featureNames[f]
}

// Features is ordered by Feature.
type Features [NumFeatures]float64

// Grid is the read-only view of a board the extractor needs.
type Grid interface {
	Rows() int
	Cols() int
	Filled(r, c int) bool
}

// CountHoles scans every column from the top of the board down. Rows in
// full are about to vanish and are skipped entirely. The first remaining
// filled cell is the column's surface and every empty cell under it is a
// hole.
func CountHoles(g Grid, full board.RowMask) int {
	holes := 0
	rows := g.Rows()
	for c := 0; c < g.Cols(); c++ {
		surface := false
		for r := rows - 1; r >= 0; r-- {
			if full.Has(r) {
				continue
			}
			if g.Filled(r, c) {
				surface = true
			} else if surface {
				holes++
			}
		}
	}
	return holes
}

// BumpinessAndHeight returns the sum of absolute height differences between
// neighbouring columns and the sum of all heights.
func BumpinessAndHeight(heights []int) (bumpiness, aggregate int) {
	for i, h := range heights {
		aggregate += h
		if i > 0 {
			d := h - heights[i-1]
			if d < 0 {
				d = -d
			}
			bumpiness += d
		}
	}
	return bumpiness, aggregate
}

// Extract assembles the feature vector for a position.
func Extract(g Grid, heights []int, full board.RowMask, rowsCleared int) Features {
	bump, agg := BumpinessAndHeight(heights)
	return Features{
		RowsCleared:     float64(rowsCleared),
		Holes:           float64(CountHoles(g, full)),
		Bumpiness:       float64(bump),
		AggregateHeight: float64(agg),
	}
}
