package zobrist

import (
	"math/rand/v2"

	"lukechampine.com/frand"

	"github.com/domino14/stacker/board"
	"github.com/domino14/stacker/piece"
)

const bignum = 1<<63 - 2

// Zobrist fingerprints a board position: which cells are filled and which
// piece is on turn.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	rows, cols int
	posTable   []uint64
	pieceTable [piece.NumPieces]uint64
}

// Initialize fills the key tables from a cryptographic stream.
func (z *Zobrist) Initialize(rows, cols int) {
	z.init(rows, cols, func() uint64 { return frand.Uint64n(bignum) + 1 })
}

// InitializeSeeded produces the same keys for the same seed.
func (z *Zobrist) InitializeSeeded(rows, cols int, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	z.init(rows, cols, func() uint64 { return rng.Uint64N(bignum) + 1 })
}

func (z *Zobrist) init(rows, cols int, next func() uint64) {
	z.rows, z.cols = rows, cols
	z.posTable = make([]uint64, rows*cols)
	for i := range z.posTable {
		z.posTable[i] = next()
	}
	for i := range z.pieceTable {
		z.pieceTable[i] = next()
	}
}

// Hash computes the key of a board from scratch. Occupant tags are ignored;
// only occupancy matters.
func (z *Zobrist) Hash(b *board.Board) uint64 {
	if b.Rows() != z.rows || b.Cols() != z.cols {
		panic("zobrist tables initialized for a different board size")
	}
	key := uint64(0)
	for r := 0; r < z.rows; r++ {
		for c := 0; c < z.cols; c++ {
			if b.Filled(r, c) {
				key ^= z.posTable[r*z.cols+c]
			}
		}
	}
	return key ^ z.pieceTable[b.CurrentPiece()]
}

// Toggle flips one cell in an existing key.
func (z *Zobrist) Toggle(key uint64, r, c int) uint64 {
	return key ^ z.posTable[r*z.cols+c]
}
