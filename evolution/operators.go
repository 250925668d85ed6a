package evolution

import (
	"math/rand/v2"

	"github.com/domino14/stacker/weights"
)

const (
	minWeight = -1.0
	maxWeight = 1.0
)

// RandomVector draws every weight uniformly from [-1, 1).
func RandomVector(rng *rand.Rand) weights.Vector {
	var v weights.Vector
	for i := range v {
		v[i] = minWeight + rng.Float64()*(maxWeight-minWeight)
	}
	return v
}

// Crossover flips a fair coin per feature to decide which parent hands it
// to the first child; the second child gets the other parent's value.
func Crossover(rng *rand.Rand, a, b weights.Vector) (weights.Vector, weights.Vector) {
	var c1, c2 weights.Vector
	for i := range c1 {
		if rng.IntN(2) == 0 {
			c1[i], c2[i] = a[i], b[i]
		} else {
			c1[i], c2[i] = b[i], a[i]
		}
	}
	return c1, c2
}

// Breed fills a generation of n vectors from the elite pool, always pairing
// two distinct parents. The pool must hold at least two vectors.
func Breed(rng *rand.Rand, elite []weights.Vector, n int) []weights.Vector {
	if len(elite) < 2 {
		panic("breeding needs at least two parents")
	}
	out := make([]weights.Vector, 0, n)
	for len(out) < n {
		i := rng.IntN(len(elite))
		j := rng.IntN(len(elite) - 1)
		if j >= i {
			j++
		}
		c1, c2 := Crossover(rng, elite[i], elite[j])
		out = append(out, c1)
		if len(out) < n {
			out = append(out, c2)
		}
	}
	return out
}

// Mutate, with probability rate, nudges one randomly chosen weight by a
// nonzero amount of at most maxStep in either direction and clamps it to
// [-1, 1]. It reports whether the vector was touched.
func Mutate(rng *rand.Rand, v *weights.Vector, rate, maxStep float64) bool {
	if rng.Float64() >= rate {
		return false
	}
	f := rng.IntN(weights.Len)
	amt := 0.0
	for amt == 0 {
		amt = rng.Float64() * maxStep
	}
	if rng.IntN(2) == 0 {
		amt = -amt
	}
	v[f] = clamp(v[f]+amt, minWeight, maxWeight)
	return true
}

func clamp(x, low, high float64) float64 {
	if x < low {
		return low
	}
	if x > high {
		return high
	}
	return x
}
