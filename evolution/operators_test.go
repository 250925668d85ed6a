package evolution

import (
	"math/rand/v2"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/stacker/weights"
)

func TestCrossoverValueOrigin(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(3, 4))
	for trial := 0; trial < 500; trial++ {
		a, b := RandomVector(rng), RandomVector(rng)
		c1, c2 := Crossover(rng, a, b)
		for f := 0; f < weights.Len; f++ {
			switch c1[f] {
			case a[f]:
				is.Equal(c2[f], b[f])
			case b[f]:
				is.Equal(c2[f], a[f])
			default:
				t.Fatalf("feature %d of child %v comes from neither parent", f, c1)
			}
		}
	}
}

func TestBreedUsesDistinctParents(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(8, 9))
	a := weights.Vector{1, 1, 1, 1}
	b := weights.Vector{-1, -1, -1, -1}
	kids := Breed(rng, []weights.Vector{a, b}, 101)
	is.Equal(len(kids), 101)
	sawMixed := false
	for _, k := range kids {
		for f := range k {
			is.True(k[f] == 1 || k[f] == -1)
			if k[f] != k[0] {
				sawMixed = true
			}
		}
	}
	// With distinct parents, some child must mix them.
	is.True(sawMixed)
}

func TestMutationBound(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(10, 11))
	for trial := 0; trial < 2000; trial++ {
		v := RandomVector(rng)
		if trial%3 == 0 {
			v = weights.Vector{1, -1, 1, -1}
		}
		orig := v
		touched := Mutate(rng, &v, 1, 2)
		is.True(touched)
		changed := 0
		for f := range v {
			is.True(v[f] >= -1 && v[f] <= 1)
			if v[f] != orig[f] {
				changed++
			}
		}
		// Saturating at the clamp may leave the vector as it was.
		is.True(changed <= 1)
	}
}

func TestMutationRateZero(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(1, 1))
	v := weights.Default
	for i := 0; i < 100; i++ {
		is.True(!Mutate(rng, &v, 0, 0.2))
	}
	is.Equal(v, weights.Default)
}

func TestMutationIsNonzero(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(2, 2))
	for i := 0; i < 1000; i++ {
		v := weights.Vector{}
		Mutate(rng, &v, 1, 0.1)
		nonzero := 0
		for _, x := range v {
			if x != 0 {
				nonzero++
				is.True(x >= -0.1 && x <= 0.1)
			}
		}
		is.Equal(nonzero, 1)
	}
}
