// Package board implements the persistent playfield: the grid of cells, the
// per-column skyline, the commit path for a chosen move and the legal-move
// enumerator.
package board

import (
	"errors"
	"fmt"

	"github.com/domino14/stacker/piece"
)

const (
	// DefaultRows is a 20-row playfield plus one overflow row.
	DefaultRows = 21
	DefaultCols = 10
	// MaxRows is bounded by the width of a RowMask.
	MaxRows = 64
)

var ErrInvalidMove = errors.New("invalid move")

// RowMask flags rows by index, bit r for row r.
type RowMask uint64

func (m RowMask) Has(r int) bool {
	return m&(1<<uint(r)) != 0
}

func (m RowMask) With(r int) RowMask {
	return m | 1<<uint(r)
}

// A Move is an orientation plus the column of the piece's leftmost column.
type Move struct {
	Orient int
	Slot   int
}

func (m Move) String() string {
	return fmt.Sprintf("o%d@%d", m.Orient, m.Slot)
}

// Board is a single game in progress. Row 0 is the bottom row. A cell holds
// the turn number of the piece that filled it, or 0 if empty.
type Board struct {
	rows, cols  int
	cells       []int32
	heights     []int
	turn        int32
	rowsCleared int
	lost        bool

	src     piece.Source
	current piece.ID
}

// New creates an empty board and draws its first piece from src.
func New(rows, cols int, src piece.Source) *Board {
	if rows < 4 || rows > MaxRows {
		panic(fmt.Sprintf("board rows must be between 4 and %d, got %d", MaxRows, rows))
	}
	if cols < 4 {
		panic(fmt.Sprintf("board needs at least 4 columns, got %d", cols))
	}
	b := &Board{
		rows:    rows,
		cols:    cols,
		cells:   make([]int32, rows*cols),
		heights: make([]int, cols),
		src:     src,
	}
	b.current = src.Next()
	return b
}

func (b *Board) Rows() int { return b.rows }
func (b *Board) Cols() int { return b.cols }

// Filled reports whether the cell at row r, column c is occupied.
func (b *Board) Filled(r, c int) bool {
	return b.cells[r*b.cols+c] != 0
}

// Tag returns the turn number stored in a cell.
func (b *Board) Tag(r, c int) int32 {
	return b.cells[r*b.cols+c]
}

// Fill and Erase write single cells without touching the skyline. They exist
// for the trial simulator, which keeps its own skyline and undo log.
func (b *Board) Fill(r, c int, tag int32) {
	b.cells[r*b.cols+c] = tag
}

func (b *Board) Erase(r, c int) {
	b.cells[r*b.cols+c] = 0
}

// Heights returns the live skyline. Callers must not modify it.
func (b *Board) Heights() []int { return b.heights }

func (b *Board) Turn() int32            { return b.turn }
func (b *Board) RowsCleared() int       { return b.rowsCleared }
func (b *Board) Lost() bool             { return b.lost }
func (b *Board) CurrentPiece() piece.ID { return b.current }

// SetCurrentPiece overrides the piece on turn without drawing from the source.
func (b *Board) SetCurrentPiece(id piece.ID) {
	b.current = id
}

// LandingHeight returns the row the piece's bottom settles on when dropped
// at slot, taking the per-column bottom contour into account.
func LandingHeight(heights []int, s piece.Shape, slot int) int {
	h := heights[slot] - s.Bottom[0]
	for c := 1; c < s.Width; c++ {
		h = max(h, heights[slot+c]-s.Bottom[c])
	}
	return h
}

// Shape looks up the current piece's geometry for a move, checking that it
// fits horizontally.
func (b *Board) Shape(id piece.ID, m Move) (piece.Shape, error) {
	s, ok := piece.Lookup(id, m.Orient)
	if !ok {
		return piece.Shape{}, fmt.Errorf("%w: piece %v has no orientation %d", ErrInvalidMove, id, m.Orient)
	}
	if m.Slot < 0 || m.Slot+s.Width > b.cols {
		return piece.Shape{}, fmt.Errorf("%w: slot %d out of range for width %d", ErrInvalidMove, m.Slot, s.Width)
	}
	return s, nil
}

// MakeMove permanently places the current piece, removes full rows and
// draws the next piece. It returns the rows cleared by this move. If the
// piece does not fit under the top of the board the game is lost and the
// grid is left untouched.
func (b *Board) MakeMove(m Move) (int, error) {
	if b.lost {
		return 0, errors.New("game is already over")
	}
	s, err := b.Shape(b.current, m)
	if err != nil {
		return 0, err
	}
	b.turn++
	height := LandingHeight(b.heights, s, m.Slot)
	if height+s.Height >= b.rows {
		b.lost = true
		return 0, nil
	}
	for i := 0; i < s.Width; i++ {
		for r := height + s.Bottom[i]; r < height+s.Top[i]; r++ {
			b.Fill(r, m.Slot+i, b.turn)
		}
	}
	for i := 0; i < s.Width; i++ {
		b.heights[m.Slot+i] = height + s.Top[i]
	}

	cleared := 0
	for r := height + s.Height - 1; r >= height; r-- {
		if !b.rowFull(r) {
			continue
		}
		cleared++
		b.removeRow(r)
	}
	b.rowsCleared += cleared
	b.current = b.src.Next()
	return cleared, nil
}

func (b *Board) rowFull(r int) bool {
	row := b.cells[r*b.cols : (r+1)*b.cols]
	for _, v := range row {
		if v == 0 {
			return false
		}
	}
	return true
}

// removeRow slides everything above row r down by one and fixes up the
// skyline.
func (b *Board) removeRow(r int) {
	for c := 0; c < b.cols; c++ {
		for i := r; i < b.heights[c]; i++ {
			if i+1 < b.rows {
				b.cells[i*b.cols+c] = b.cells[(i+1)*b.cols+c]
			} else {
				b.cells[i*b.cols+c] = 0
			}
		}
		b.heights[c]--
		for b.heights[c] >= 1 && !b.Filled(b.heights[c]-1, c) {
			b.heights[c]--
		}
	}
}

// LegalMoves enumerates every orientation and slot of the current piece,
// orientation-major. It is empty once the game is lost.
func (b *Board) LegalMoves() []Move {
	if b.lost {
		return nil
	}
	n := piece.NumOrients(b.current)
	moves := make([]Move, 0, n*b.cols)
	for o := 0; o < n; o++ {
		s := piece.MustLookup(b.current, o)
		for slot := 0; slot+s.Width <= b.cols; slot++ {
			moves = append(moves, Move{Orient: o, Slot: slot})
		}
	}
	return moves
}

// Copy returns a deep copy of the board sharing the same piece source.
func (b *Board) Copy() *Board {
	nb := *b
	nb.cells = append([]int32(nil), b.cells...)
	nb.heights = append([]int(nil), b.heights...)
	return &nb
}
