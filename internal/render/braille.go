package render

import "strings"

// Braille patterns: 2x4 dots per character
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Braille is a character grid where each cell holds 2x4 sub-pixels. Cells
// can also be overwritten with plain text.
type Braille struct {
	Width, Height int
	Grid          [][]rune
}

func NewBraille(w, h int) *Braille {
	b := &Braille{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range b.Grid {
		b.Grid[i] = make([]rune, w)
		for j := range b.Grid[i] {
			b.Grid[i][j] = brailleBlank
		}
	}
	return b
}

// Set lights sub-pixel (x, y). The grid is (Width*2) x (Height*4) sub-pixels.
func (b *Braille) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= b.Width || row >= b.Height {
		return
	}
	if b.Grid[row][col] < brailleBlank || b.Grid[row][col] > brailleBlank+0xff {
		// A text rune already occupies the cell.
		return
	}
	b.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// DrawLine draws a line using Bresenham's algorithm.
func (b *Braille) DrawLine(x0, y0, x1, y1 int) {
	plotLine(x0, y0, x1, y1, b.Set)
}

func plotLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Text writes s starting at character cell (col, row), clipped to the grid.
func (b *Braille) Text(col, row int, s string) {
	if row < 0 || row >= b.Height {
		return
	}
	for i, r := range []rune(s) {
		c := col + i
		if c < 0 || c >= b.Width {
			continue
		}
		b.Grid[row][c] = r
	}
}

func (b *Braille) String() string {
	var sb strings.Builder
	for _, row := range b.Grid {
		sb.WriteString(string(row) + "\n")
	}
	return sb.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
