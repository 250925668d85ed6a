package piece

import (
	"math/rand/v2"

	"lukechampine.com/frand"
)

// A Source supplies the next piece on demand.
type Source interface {
	Next() ID
}

type randomSource struct{}

func (randomSource) Next() ID {
	return ID(frand.Intn(int(NumPieces)))
}

type seededSource struct {
	rng *rand.Rand
}

func (s *seededSource) Next() ID {
	return ID(s.rng.IntN(int(NumPieces)))
}

// NewSource returns a uniform piece source. A zero seed draws from a
// cryptographic stream; any other seed yields a reproducible sequence.
func NewSource(seed uint64) Source {
	if seed == 0 {
		return randomSource{}
	}
	return &seededSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// FixedSource replays a fixed sequence of pieces, wrapping around at the end.
type FixedSource struct {
	seq []ID
	idx int
}

func NewFixedSource(seq ...ID) *FixedSource {
	if len(seq) == 0 {
		panic("fixed source needs at least one piece")
	}
	return &FixedSource{seq: seq}
}

func (f *FixedSource) Next() ID {
	id := f.seq[f.idx]
	f.idx = (f.idx + 1) % len(f.seq)
	return id
}
