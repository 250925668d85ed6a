package board

import (
	"fmt"
	"strings"
)

// ToDisplayText renders the board top row first.
func (b *Board) ToDisplayText() string {
	var sb strings.Builder
	border := "+" + strings.Repeat("-", b.cols*2) + "+\n"
	sb.WriteString(border)
	for r := b.rows - 1; r >= 0; r-- {
		sb.WriteString("|")
		for c := 0; c < b.cols; c++ {
			if b.Filled(r, c) {
				sb.WriteString("[]")
			} else {
				sb.WriteString(" .")
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	fmt.Fprintf(&sb, "turn %d  rows cleared %d  next %v", b.turn, b.rowsCleared, b.current)
	if b.lost {
		sb.WriteString("  (lost)")
	}
	sb.WriteString("\n")
	return sb.String()
}

// SetFromPlaintext fills the board from a picture drawn top row first, the
// way boards appear on screen. Blank lines are skipped and the last line is
// row 0. Cells are 'x' or '#' for filled and anything else for empty.
func (b *Board) SetFromPlaintext(text string) error {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	rows := make([]string, len(lines))
	for i, line := range lines {
		rows[len(lines)-1-i] = line
	}
	return b.SetRows(rows)
}

// SetRows fills a board from a bottom-up description, one string per row,
// 'x' or '#' for filled. It recomputes the skyline.
func (b *Board) SetRows(rows []string) error {
	if len(rows) > b.rows {
		return fmt.Errorf("%d rows do not fit a %d-row board", len(rows), b.rows)
	}
	for i := range b.cells {
		b.cells[i] = 0
	}
	for r, line := range rows {
		if len(line) != b.cols {
			return fmt.Errorf("row %d has %d columns, want %d", r, len(line), b.cols)
		}
		for c, ch := range line {
			if ch == 'x' || ch == '#' {
				b.Fill(r, c, 1)
			}
		}
	}
	b.recomputeHeights()
	return nil
}

func (b *Board) recomputeHeights() {
	for c := 0; c < b.cols; c++ {
		h := 0
		for r := b.rows - 1; r >= 0; r-- {
			if b.Filled(r, c) {
				h = r + 1
				break
			}
		}
		b.heights[c] = h
	}
}

// Equals compares grid and skyline.
func (b *Board) Equals(o *Board) bool {
	if b.rows != o.rows || b.cols != o.cols {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != o.cells[i] {
			return false
		}
	}
	for i := range b.heights {
		if b.heights[i] != o.heights[i] {
			return false
		}
	}
	return true
}
