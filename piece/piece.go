// Package piece holds the geometry of the seven falling pieces and the
// sources that hand them out one at a time.
package piece

import "fmt"

// ID identifies one of the seven one-sided tetrominoes.
type ID uint8

const (
	O ID = iota
	I
	L
	J
	T
	S
	Z
	NumPieces
)

var names = [NumPieces]string{"O", "I", "L", "J", "T", "S", "Z"}

func (id ID) String() string {
	if id >= NumPieces {
		return fmt.Sprintf("ID(%d)", uint8(id))
	}
	return names[id]
}

// Shape is the column profile of a piece in one orientation. Bottom[c] is
// the lowest occupied row offset of column c; Top[c] is one above the
// highest occupied row offset.
type Shape struct {
	Width  int
	Height int
	Bottom []int
	Top    []int
}

// Cells returns the number of cells the shape covers.
func (s Shape) Cells() int {
	n := 0
	for c := 0; c < s.Width; c++ {
		n += s.Top[c] - s.Bottom[c]
	}
	return n
}

var shapes = [NumPieces][]Shape{
	O: {
		{Width: 2, Height: 2, Bottom: []int{0, 0}, Top: []int{2, 2}},
	},
	I: {
		{Width: 1, Height: 4, Bottom: []int{0}, Top: []int{4}},
		{Width: 4, Height: 1, Bottom: []int{0, 0, 0, 0}, Top: []int{1, 1, 1, 1}},
	},
	L: {
		{Width: 2, Height: 3, Bottom: []int{0, 0}, Top: []int{3, 1}},
		{Width: 3, Height: 2, Bottom: []int{0, 1, 1}, Top: []int{2, 2, 2}},
		{Width: 2, Height: 3, Bottom: []int{2, 0}, Top: []int{3, 3}},
		{Width: 3, Height: 2, Bottom: []int{0, 0, 0}, Top: []int{1, 1, 2}},
	},
	J: {
		{Width: 2, Height: 3, Bottom: []int{0, 0}, Top: []int{1, 3}},
		{Width: 3, Height: 2, Bottom: []int{0, 0, 0}, Top: []int{2, 1, 1}},
		{Width: 2, Height: 3, Bottom: []int{0, 2}, Top: []int{3, 3}},
		{Width: 3, Height: 2, Bottom: []int{1, 1, 0}, Top: []int{2, 2, 2}},
	},
	T: {
		{Width: 2, Height: 3, Bottom: []int{0, 1}, Top: []int{3, 2}},
		{Width: 3, Height: 2, Bottom: []int{1, 0, 1}, Top: []int{2, 2, 2}},
		{Width: 2, Height: 3, Bottom: []int{1, 0}, Top: []int{2, 3}},
		{Width: 3, Height: 2, Bottom: []int{0, 0, 0}, Top: []int{1, 2, 1}},
	},
	S: {
		{Width: 3, Height: 2, Bottom: []int{0, 0, 1}, Top: []int{1, 2, 2}},
		{Width: 2, Height: 3, Bottom: []int{1, 0}, Top: []int{3, 2}},
	},
	Z: {
		{Width: 3, Height: 2, Bottom: []int{1, 0, 0}, Top: []int{2, 2, 1}},
		{Width: 2, Height: 3, Bottom: []int{0, 1}, Top: []int{2, 3}},
	},
}

// NumOrients returns how many distinct orientations the piece has.
func NumOrients(id ID) int {
	return len(shapes[id])
}

// Lookup returns the shape of a piece in the given orientation. The bool is
// false if the orientation does not exist for this piece.
func Lookup(id ID, orient int) (Shape, bool) {
	if id >= NumPieces || orient < 0 || orient >= len(shapes[id]) {
		return Shape{}, false
	}
	return shapes[id][orient], true
}

// MustLookup is Lookup for callers that already hold a legal orientation.
func MustLookup(id ID, orient int) Shape {
	s, ok := Lookup(id, orient)
	if !ok {
		panic(fmt.Sprintf("no orientation %d for piece %v", orient, id))
	}
	return s
}
