package viz

import "strings"

// Braille cells are 2 dots wide and 4 dots high:
//
//	1 4
//	2 5
//	3 6
//	7 8
const brailleBlank = 0x2800

var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a braille dot grid of Width×Height cells, i.e. (2·Width)×(4·Height)
// dots.
type Canvas struct {
	Width, Height int
	cells         [][]rune
	marks         [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, cells: make([][]rune, h), marks: make([][]rune, h)}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
		c.marks[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		for j := range c.cells[i] {
			c.cells[i][j] = brailleBlank
			c.marks[i][j] = 0
		}
	}
}

// DotsX and DotsY are the canvas size in dots.
func (c *Canvas) DotsX() int { return 2 * c.Width }
func (c *Canvas) DotsY() int { return 4 * c.Height }

// Set lights the dot at (x, y); out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x >= c.DotsX() || y >= c.DotsY() {
		return
	}
	c.cells[y/4][x/2] |= dotBits[y%4][x%2]
}

// Mark replaces the whole cell holding dot (x, y) with r. Marks are drawn
// over dots.
func (c *Canvas) Mark(x, y int, r rune) {
	if x < 0 || y < 0 || x >= c.DotsX() || y >= c.DotsY() {
		return
	}
	c.marks[y/4][x/2] = r
}

// Line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm.
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 > -dy {
			e -= dy
			x0 += sx
		}
		if e2 < dx {
			e += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.cells {
		for j, r := range row {
			if m := c.marks[i][j]; m != 0 {
				r = m
			}
			b.WriteRune(r)
		}
		if i < len(c.cells)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
