package aptdash

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
)

var (
	styleDefault    = tcell.StyleDefault
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleProcessing = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleSuccess    = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleFailure    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleSkipped    = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleAccent     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleFinalBar   = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
)

func statusStyle(s pkgStatus) tcell.Style {
	switch s {
	case statusInstalling:
		return styleProcessing
	case statusSucceeded:
		return styleSuccess
	case statusFailed, statusSkippedFailure:
		return styleFailure
	case statusSkippedInstalled, statusSkippedSuccess:
		return styleSkipped
	default:
		return styleDefault
	}
}

// viewState is everything the keyboard can change. It feeds back into the
// controller only as presentation; install state never depends on it.
type viewState struct {
	listScroll   int
	manualScroll bool // user scrolled; suspend auto-centering
	showStats    bool
	showHelp     bool
	finished     bool
}

// listPageSize is the number of visible package rows.
func listPageSize(h int) int {
	if h < 3 {
		return 1
	}
	return h - 2
}

// clampListScroll bounds the scroll offset to the content extents; scrolling
// past either end is a no-op.
func clampListScroll(offset, total, page int) int {
	max := total - page
	if max < 0 {
		max = 0
	}
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// autoCenter keeps the active entry mid-pane while no manual scroll is in
// effect.
func autoCenter(active, total, page int) int {
	return clampListScroll(active-page/2, total, page)
}

// formatSeconds renders MM:SS, or --:-- for an undefined duration.
func formatSeconds(d time.Duration, ok bool) string {
	if !ok || d < 0 {
		return "--:--"
	}
	secs := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// wrapLine hard-wraps a transcript line to the pane width.
func wrapLine(s string, width int) []string {
	if width < 1 {
		width = 1
	}
	runes := []rune(s)
	if len(runes) == 0 {
		return []string{""}
	}
	var out []string
	for len(runes) > width {
		out = append(out, string(runes[:width]))
		runes = runes[width:]
	}
	return append(out, string(runes))
}

// buildFrame composes one full frame from the model and view state. The
// frame is ephemeral; the diff renderer decides what actually reaches the
// terminal.
func buildFrame(w, h int, m *progressModel, transcript []string, title string, vs *viewState) *frameBuffer {
	buf := newFrameBuffer(w, h)
	if w < 10 || h < 4 {
		buf.text(0, 0, "Terminal too small", styleFailure)
		return buf
	}

	split := w / 2
	drawPackageList(buf, 0, 0, split, h, m, vs.listScroll)
	drawTranscript(buf, split, 0, w-split, h, transcript, title)

	if vs.showStats {
		drawStats(buf, w, m)
	}
	if vs.showHelp {
		drawHelp(buf, w, h)
	}
	if vs.finished {
		msg := "Installation run complete. Press 'q' to exit."
		buf.fill(0, h-1, w, 1, ' ', styleFinalBar)
		buf.text(0, h-1, msg, styleFinalBar)
	}
	return buf
}

func drawPackageList(buf *frameBuffer, x, y, w, h int, m *progressModel, scroll int) {
	buf.box(x, y, w, h, " Packages (↑/↓ PgUp/PgDn) ", styleBorder)
	page := listPageSize(h)
	maxText := w - 4
	for row := 0; row < page; row++ {
		idx := scroll + row
		if idx >= len(m.entries) {
			break
		}
		e := m.entries[idx]
		line := e.status.glyph() + " " + e.name
		if len([]rune(line)) > maxText {
			line = string([]rune(line)[:maxText])
		}
		buf.text(x+2, y+1+row, line, statusStyle(e.status))
	}
	// scrollbar thumb
	if total := len(m.entries); total > page {
		maxScroll := total - page
		pos := 0
		if maxScroll > 0 {
			pos = scroll * (page - 1) / maxScroll
		}
		buf.set(x+w-2, y+1+pos, '█', styleBorder)
	}
}

func drawTranscript(buf *frameBuffer, x, y, w, h int, transcript []string, title string) {
	if title == "" {
		title = " Output "
	}
	buf.box(x, y, w, h, title, styleBorder)
	inner := w - 4
	rows := h - 2

	var wrapped []string
	for _, line := range transcript {
		wrapped = append(wrapped, wrapLine(line, inner)...)
	}
	// pinned to the tail, like following a log
	start := 0
	if len(wrapped) > rows {
		start = len(wrapped) - rows
	}
	for row := 0; row < rows && start+row < len(wrapped); row++ {
		buf.text(x+2, y+1+row, wrapped[start+row], styleDefault)
	}
}

func drawStats(buf *frameBuffer, w int, m *progressModel) {
	const sw, sh = 30, 9
	x := w - sw - 1
	if x < 0 {
		x = 0
	}
	buf.box(x, 1, sw, sh, " Statistics ", styleBorder)
	now := time.Now()
	c := m.counts()
	etr, ok := m.etr()
	buf.text(x+2, 2, "Date: "+now.Format("2006-01-02"), styleDefault)
	buf.text(x+2, 3, "Time: "+now.Format("03:04:05 PM"), styleDefault)
	buf.text(x+2, 4, fmt.Sprintf("Packages: %d / %d", c.processed(), c.total), styleAccent)
	buf.text(x+2, 5, "Elapsed:  "+formatSeconds(m.elapsed(), true), styleDefault)
	buf.text(x+2, 6, "ETR:      "+formatSeconds(etr, ok), styleDefault)
	buf.text(x+2, 7, fmt.Sprintf("OK %d  Fail %d  Skip %d", c.succeeded, c.failed,
		c.skippedInstalled+c.skippedSuccess+c.skippedFailure), styleDefault)
}

func drawHelp(buf *frameBuffer, w, h int) {
	const hw, hh = 32, 13
	x := (w - hw) / 2
	y := (h - hh) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	buf.box(x, y, hw, hh, " Help ", styleBorder)
	legend := []struct {
		glyph string
		text  string
		style tcell.Style
	}{
		{"->", "Processing", styleProcessing},
		{" ✔", "Success", styleSuccess},
		{" ✖", "Failed", styleFailure},
		{" S", "Skipped", styleSkipped},
		{" F", "Prior failure", styleFailure},
		{"  ", "Queued", styleDefault},
	}
	row := y + 2
	for _, l := range legend {
		buf.text(x+3, row, l.glyph, l.style.Bold(true))
		buf.text(x+6, row, "- "+l.text, styleDefault)
		row++
	}
	buf.text(x+3, row+1, "s - Toggle Stats", styleDefault)
	buf.text(x+3, row+2, "h - Toggle Help", styleDefault)
	buf.text(x+3, row+3, "q - Quit", styleDefault)
}
