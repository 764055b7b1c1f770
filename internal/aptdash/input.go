package aptdash

import (
	"github.com/gdamore/tcell/v2"
)

// uiCommand is a translated key press. Installation state never depends on
// these; they drive view state only (plus quit).
type uiCommand int

const (
	cmdNone uiCommand = iota
	cmdQuit
	cmdScrollUp
	cmdScrollDown
	cmdPageUp
	cmdPageDown
	cmdToggleStats
	cmdToggleHelp
	cmdResize
)

// inputDispatcher pumps tcell events into a channel so the controller can
// poll keys without ever blocking the tick loop.
type inputDispatcher struct {
	events chan tcell.Event
	quit   chan struct{}
}

func newInputDispatcher(s tcell.Screen) *inputDispatcher {
	d := &inputDispatcher{
		events: make(chan tcell.Event, 32),
		quit:   make(chan struct{}),
	}
	go s.ChannelEvents(d.events, d.quit)
	return d
}

func (d *inputDispatcher) stop() {
	close(d.quit)
}

// poll returns the next pending command without blocking; cmdNone when no
// event is queued.
func (d *inputDispatcher) poll() uiCommand {
	select {
	case ev, ok := <-d.events:
		if !ok {
			return cmdQuit
		}
		return translate(ev)
	default:
		return cmdNone
	}
}

func translate(ev tcell.Event) uiCommand {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		return cmdResize
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyUp:
			return cmdScrollUp
		case tcell.KeyDown:
			return cmdScrollDown
		case tcell.KeyPgUp:
			return cmdPageUp
		case tcell.KeyPgDn:
			return cmdPageDown
		case tcell.KeyEsc, tcell.KeyCtrlC:
			return cmdQuit
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return cmdQuit
			case 's':
				return cmdToggleStats
			case 'h':
				return cmdToggleHelp
			case 'k':
				return cmdScrollUp
			case 'j':
				return cmdScrollDown
			}
		}
	}
	return cmdNone
}
