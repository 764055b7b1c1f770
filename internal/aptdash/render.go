package aptdash

import (
	"github.com/gdamore/tcell/v2"
)

// diffRenderer paints frames onto a tcell screen cell-by-cell. Only cells
// that differ from the previously painted frame are touched, which is what
// keeps large transcript updates flicker-free on real terminals.
type diffRenderer struct {
	screen tcell.Screen
	prev   *frameBuffer
}

func newDiffRenderer(s tcell.Screen) *diffRenderer {
	return &diffRenderer{screen: s}
}

// invalidate drops the baseline, forcing the next paint to redraw every
// cell. Called on resize, where the previous frame no longer corresponds to
// what the terminal shows.
func (r *diffRenderer) invalidate() {
	r.prev = nil
}

// paint diffs buf against the last painted frame and emits terminal updates
// for changed cells only. Returns the number of cells painted; re-rendering
// an identical frame returns 0 and emits nothing.
func (r *diffRenderer) paint(buf *frameBuffer) int {
	full := r.prev == nil || r.prev.w != buf.w || r.prev.h != buf.h
	painted := 0
	for y := 0; y < buf.h; y++ {
		for x := 0; x < buf.w; x++ {
			c := buf.at(x, y)
			if !full {
				if p := r.prev.at(x, y); p == c {
					continue
				}
			}
			r.screen.SetContent(x, y, c.r, nil, c.style)
			painted++
		}
	}
	if full {
		r.screen.Sync()
	} else if painted > 0 {
		r.screen.Show()
	}
	r.prev = buf
	return painted
}
