// Package sim evaluates hypothetical moves against a live board. A trial
// writes only the cells the piece covers and records them, so undoing it
// costs one write per cell instead of a copy of the whole grid. Full rows
// are flagged, never compacted: a trial only has to feed the heuristics.
package sim

import (
	"math/bits"

	"github.com/domino14/stacker/board"
	"github.com/domino14/stacker/piece"
)

// ErrInvalidMove is returned when an orientation or slot does not exist for
// the piece on this board.
var ErrInvalidMove = board.ErrInvalidMove

// Trial is the result of one hypothetical move. Its slices belong to the
// Simulator and are overwritten by the next TryMove.
type Trial struct {
	// Lost is set when the piece would stick out of the top of the board.
	// Nothing else in the trial is meaningful then.
	Lost        bool
	RowsCleared int
	// Heights is the skyline as it would be after the full rows vanish.
	Heights []int
	// Full flags the rows completed by the move.
	Full board.RowMask

	placed []int
}

// Placed returns the number of grid cells the trial wrote.
func (t *Trial) Placed() int { return len(t.placed) }

// Simulator runs trials against one board. It is not safe for concurrent
// use; every player owns its own.
type Simulator struct {
	b      *board.Board
	trial  Trial
	active bool
}

func New(b *board.Board) *Simulator {
	return &Simulator{
		b: b,
		trial: Trial{
			Heights: make([]int, b.Cols()),
			placed:  make([]int, 0, 8),
		},
	}
}

func (s *Simulator) Board() *board.Board { return s.b }

// TryMove drops piece id at m on the live grid. Unless the result is a
// loss, the caller must call Rollback before the board is used again.
func (s *Simulator) TryMove(id piece.ID, m board.Move) (*Trial, error) {
	if s.active {
		panic("sim: TryMove called before the previous trial was rolled back")
	}
	shape, err := s.b.Shape(id, m)
	if err != nil {
		return nil, err
	}
	t := &s.trial
	t.Lost = false
	t.RowsCleared = 0
	t.Full = 0
	t.placed = t.placed[:0]

	live := s.b.Heights()
	copy(t.Heights, live)

	rows, cols := s.b.Rows(), s.b.Cols()
	landing := board.LandingHeight(t.Heights, shape, m.Slot)
	if landing+shape.Height >= rows {
		t.Lost = true
		return t, nil
	}
	s.active = true

	tag := s.b.Turn() + 1
	for i := 0; i < shape.Width; i++ {
		c := m.Slot + i
		for r := landing + shape.Bottom[i]; r < landing+shape.Top[i]; r++ {
			s.b.Fill(r, c, tag)
			t.placed = append(t.placed, r*cols+c)
		}
		t.Heights[c] = landing + shape.Top[i]
	}

	for r := landing + shape.Height - 1; r >= landing; r-- {
		if s.rowFull(r) {
			t.Full = t.Full.With(r)
			t.RowsCleared++
		}
	}
	if t.RowsCleared > 0 {
		s.settle(t)
	}
	return t, nil
}

func (s *Simulator) rowFull(r int) bool {
	for c := 0; c < s.b.Cols(); c++ {
		if !s.b.Filled(r, c) {
			return false
		}
	}
	return true
}

// settle lowers each column's working height to where it would be once
// the flagged rows are gone.
func (s *Simulator) settle(t *Trial) {
	for c := range t.Heights {
		top := t.Heights[c]
		for top > 0 && (t.Full.Has(top-1) || !s.b.Filled(top-1, c)) {
			top--
		}
		below := bits.OnesCount64(uint64(t.Full) & (1<<uint(top) - 1))
		t.Heights[c] = top - below
	}
}

// Rollback erases every cell the last trial wrote. The trial only ever
// filled empty cells, so this restores the grid exactly.
func (s *Simulator) Rollback() {
	if !s.active {
		return
	}
	cols := s.b.Cols()
	for _, idx := range s.trial.placed {
		s.b.Erase(idx/cols, idx%cols)
	}
	s.trial.placed = s.trial.placed[:0]
	s.active = false
}
