package board

// This file contains some sample filled boards, used solely for testing.

// Sample is a board picture for SetFromPlaintext, top row first.
type Sample string

const (
	// Well has four nearly full rows with an open rightmost column. A
	// vertical I dropped into it clears all four.
	Well Sample = `
xxxxxxxxx.
xxxxxxxxx.
xxxxxxxxx.
xxxxxxxxx.
`
	// Overhangs has four covered holes and a bumpy surface.
	Overhangs Sample = `
..xx......
xx.x..xx..
x..xx.xxx.
xxxx.xxxxx
`
	// Tower reaches the overflow row of a default board in column 0. Any
	// piece landing on it loses.
	Tower Sample = `
x.........
x.........
x.........
x.........
x.........
x.........
x.........
x.........
x.........
x.........
x.........
x.........
x.........
x.........
x.........
x.........
x.........
x.........
x.........
x.........
`
)
