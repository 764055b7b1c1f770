package aptdash

import (
	"github.com/gdamore/tcell/v2"
)

// cell is one styled character of a frame.
type cell struct {
	r     rune
	style tcell.Style
}

// frameBuffer is a full-frame grid rebuilt every render tick. It is never
// painted directly: the renderer diffs it against the previously painted
// frame and touches only changed cells.
type frameBuffer struct {
	w, h  int
	cells []cell
}

func newFrameBuffer(w, h int) *frameBuffer {
	b := &frameBuffer{w: w, h: h, cells: make([]cell, w*h)}
	for i := range b.cells {
		b.cells[i] = cell{r: ' ', style: tcell.StyleDefault}
	}
	return b
}

func (b *frameBuffer) set(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= b.w || y >= b.h {
		return
	}
	b.cells[y*b.w+x] = cell{r: r, style: style}
}

func (b *frameBuffer) at(x, y int) cell {
	return b.cells[y*b.w+x]
}

// text writes a string, clipped to the row.
func (b *frameBuffer) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		if x >= b.w {
			return
		}
		b.set(x, y, r, style)
		x++
	}
}

// fill paints a rectangle with one rune.
func (b *frameBuffer) fill(x, y, w, h int, r rune, style tcell.Style) {
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			b.set(xx, yy, r, style)
		}
	}
}

// box draws a bordered rectangle with an optional title on the top edge,
// clearing the interior.
func (b *frameBuffer) box(x, y, w, h int, title string, style tcell.Style) {
	if w < 2 || h < 2 {
		return
	}
	b.fill(x+1, y+1, w-2, h-2, ' ', tcell.StyleDefault)
	for xx := x + 1; xx < x+w-1; xx++ {
		b.set(xx, y, tcell.RuneHLine, style)
		b.set(xx, y+h-1, tcell.RuneHLine, style)
	}
	for yy := y + 1; yy < y+h-1; yy++ {
		b.set(x, yy, tcell.RuneVLine, style)
		b.set(x+w-1, yy, tcell.RuneVLine, style)
	}
	b.set(x, y, tcell.RuneULCorner, style)
	b.set(x+w-1, y, tcell.RuneURCorner, style)
	b.set(x, y+h-1, tcell.RuneLLCorner, style)
	b.set(x+w-1, y+h-1, tcell.RuneLRCorner, style)
	if title != "" {
		b.text(x+2, y, title, style.Bold(true))
	}
}
