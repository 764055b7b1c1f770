package aptdash

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(w, h)
	t.Cleanup(s.Fini)
	return s
}

func TestPaintIdenticalFrameTouchesNothing(t *testing.T) {
	s := newTestScreen(t, 20, 5)
	r := newDiffRenderer(s)

	buf := newFrameBuffer(20, 5)
	buf.text(1, 1, "hello", styleAccent)

	assert.Equal(t, 20*5, r.paint(buf))

	again := newFrameBuffer(20, 5)
	again.text(1, 1, "hello", styleAccent)
	assert.Zero(t, r.paint(again))
}

func TestPaintTouchesOnlyChangedCells(t *testing.T) {
	s := newTestScreen(t, 20, 5)
	r := newDiffRenderer(s)
	r.paint(newFrameBuffer(20, 5))

	buf := newFrameBuffer(20, 5)
	buf.set(3, 2, 'x', styleDefault)
	assert.Equal(t, 1, r.paint(buf))

	ch, _, _, _ := s.GetContent(3, 2)
	assert.Equal(t, 'x', ch)
}

func TestInvalidateForcesFullRepaint(t *testing.T) {
	s := newTestScreen(t, 10, 4)
	r := newDiffRenderer(s)
	r.paint(newFrameBuffer(10, 4))

	r.invalidate()
	assert.Equal(t, 10*4, r.paint(newFrameBuffer(10, 4)))
}

func TestResizedFrameForcesFullRepaint(t *testing.T) {
	s := newTestScreen(t, 20, 5)
	r := newDiffRenderer(s)
	r.paint(newFrameBuffer(20, 5))

	assert.Equal(t, 12*6, r.paint(newFrameBuffer(12, 6)))
}
