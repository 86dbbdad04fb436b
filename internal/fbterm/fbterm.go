// Package fbterm renders console output as text on a pixel display.
package fbterm

import (
	"errors"
	"image/color"
	"strings"
	"sync"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const tabWidth = 4

var ErrTooSmall = errors.New("fbterm: display smaller than one cell")

var (
	DefaultFG = color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}
	DefaultBG = color.RGBA{A: 0xff}
)

// Terminal is a scrolling text grid drawn with a monospace tinyfont font.
type Terminal struct {
	mu sync.Mutex
	d  drivers.Displayer

	font       tinyfont.Fonter
	cellW      int16
	cellH      int16
	baseline   int16
	cols, rows int

	cells    [][]byte
	col, row int
	fg, bg   color.RGBA
}

// New clears d and returns a terminal covering it.
func New(d drivers.Displayer) (*Terminal, error) {
	return NewWithColors(d, DefaultFG, DefaultBG)
}

// NewWithColors is New with explicit foreground and background colours.
func NewWithColors(d drivers.Displayer, fg, bg color.RGBA) (*Terminal, error) {
	font := &proggy.TinySZ8pt7b
	cellH := int16(font.YAdvance)
	_, outbox := tinyfont.LineWidth(font, "0")
	cellW := int16(outbox)

	w, h := d.Size()
	if cellW <= 0 || cellH <= 0 || w < cellW || h < cellH {
		return nil, ErrTooSmall
	}
	t := &Terminal{
		d:        d,
		font:     font,
		cellW:    cellW,
		cellH:    cellH,
		baseline: cellH - cellH/4,
		cols:     int(w / cellW),
		rows:     int(h / cellH),
		fg:       fg,
		bg:       bg,
	}
	t.cells = make([][]byte, t.rows)
	for i := range t.cells {
		t.cells[i] = blankRow(t.cols)
	}
	fill(d, 0, 0, w, h, bg)
	return t, nil
}

// Size returns the grid size in cells.
func (t *Terminal) Size() (cols, rows int) { return t.cols, t.rows }

// Write draws p. It never fails.
func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, b := range p {
		t.put(b)
	}
	return len(p), nil
}

// WriteByte draws one byte. A newline also presents the display.
func (t *Terminal) WriteByte(b byte) error {
	t.mu.Lock()
	t.put(b)
	t.mu.Unlock()
	if b == '\n' {
		return t.d.Display()
	}
	return nil
}

// Flush presents the display.
func (t *Terminal) Flush() error { return t.d.Display() }

// Lines returns the grid contents with trailing blanks trimmed.
func (t *Terminal) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, t.rows)
	for i, r := range t.cells {
		out[i] = strings.TrimRight(string(r), " ")
	}
	return out
}

func (t *Terminal) put(b byte) {
	switch b {
	case '\n':
		t.newline()
	case '\r':
		t.col = 0
	case '\b', 0x7f:
		if t.col > 0 {
			t.col--
			t.draw(t.col, t.row, ' ')
		}
	case '\t':
		for {
			t.put(' ')
			if t.col%tabWidth == 0 {
				break
			}
		}
	default:
		if b < 0x20 || b > 0x7e {
			return
		}
		if t.col >= t.cols {
			t.newline()
		}
		t.draw(t.col, t.row, b)
		t.col++
	}
}

func (t *Terminal) newline() {
	t.col = 0
	if t.row+1 < t.rows {
		t.row++
		return
	}
	first := t.cells[0]
	copy(t.cells, t.cells[1:])
	for i := range first {
		first[i] = ' '
	}
	t.cells[t.rows-1] = first
	t.redraw()
}

func (t *Terminal) draw(col, row int, b byte) {
	t.cells[row][col] = b
	x, y := int16(col)*t.cellW, int16(row)*t.cellH
	fill(t.d, x, y, t.cellW, t.cellH, t.bg)
	if b != ' ' {
		tinyfont.DrawChar(t.d, t.font, x, y+t.baseline, rune(b), t.fg)
	}
}

func (t *Terminal) redraw() {
	w, h := t.d.Size()
	fill(t.d, 0, 0, w, h, t.bg)
	for r, line := range t.cells {
		for c, b := range line {
			if b != ' ' {
				tinyfont.DrawChar(t.d, t.font, int16(c)*t.cellW, int16(r)*t.cellH+t.baseline, rune(b), t.fg)
			}
		}
	}
}

func blankRow(n int) []byte {
	r := make([]byte, n)
	for i := range r {
		r[i] = ' '
	}
	return r
}

func fill(d drivers.Displayer, x0, y0, w, h int16, c color.RGBA) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			d.SetPixel(x, y, c)
		}
	}
}
