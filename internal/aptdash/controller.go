package aptdash

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
)

// newScreen is a seam for tests, which run the loop on a SimulationScreen.
var newScreen = tcell.NewScreen

// runDashboard is the interactive event loop: it advances one package at a
// time through the install runner while servicing the keyboard and
// repainting on a fixed cadence. Single logical timeline; the only
// concurrency is the runner's internal reader, reached through snapshots.
func runDashboard(ctx context.Context, m *progressModel) error {
	screen, err := newScreen()
	if err != nil {
		return fmt.Errorf("terminal initialization failed: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal initialization failed: %w", err)
	}
	// Restored on every exit path: normal, quit, error, panic.
	defer screen.Fini()
	screen.HideCursor()

	renderer := newDiffRenderer(screen)
	input := newInputDispatcher(screen)
	defer input.stop()

	installCtx, cancelInstalls := context.WithCancel(ctx)
	defer cancelInstalls()

	vs := &viewState{showStats: true}
	transcript := []string{"Welcome! Press 'h' for help or 's' to toggle stats."}
	title := ""
	quitting := false

	var active *installRun
	activeIdx := -1

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		w, h := screen.Size()
		page := listPageSize(h)

		// --- Handle user input ---
		for {
			cmd := input.poll()
			if cmd == cmdNone {
				break
			}
			switch cmd {
			case cmdQuit:
				quitting = true
				cancelInstalls()
			case cmdToggleStats:
				vs.showStats = !vs.showStats
			case cmdToggleHelp:
				vs.showHelp = !vs.showHelp
			case cmdScrollUp:
				vs.listScroll = clampListScroll(vs.listScroll-1, len(m.entries), page)
				vs.manualScroll = true
			case cmdScrollDown:
				vs.listScroll = clampListScroll(vs.listScroll+1, len(m.entries), page)
				vs.manualScroll = true
			case cmdPageUp:
				vs.listScroll = clampListScroll(vs.listScroll-page, len(m.entries), page)
				vs.manualScroll = true
			case cmdPageDown:
				vs.listScroll = clampListScroll(vs.listScroll+page, len(m.entries), page)
				vs.manualScroll = true
			case cmdResize:
				renderer.invalidate()
			}
		}
		if ctx.Err() != nil {
			quitting = true
			cancelInstalls()
		}

		// --- Main state machine ---
		if active == nil && !quitting {
			if idx := m.nextPending(); idx >= 0 {
				m.markInstalling(idx)
				activeIdx = idx
				active = startInstall(installCtx, m.entries[idx].name)
				title = fmt.Sprintf(" %s ", m.entries[idx].name)
				vs.manualScroll = false
			}
		}
		if active != nil {
			transcript = active.snapshot()
			if done, oc := active.finished(); done {
				// A child killed mid-flight has no outcome and none may be
				// invented for it; one that exited on its own is recorded
				// even when quit raced the exit.
				if !active.wasAborted() {
					finalizeOutcome(m, activeIdx, active, oc)
				}
				active = nil
				activeIdx = -1
			}
		}

		// --- View bookkeeping and render ---
		if !vs.manualScroll {
			anchor := activeIdx
			if anchor < 0 {
				if anchor = m.nextPending(); anchor < 0 {
					anchor = len(m.entries) - 1
				}
			}
			vs.listScroll = autoCenter(anchor, len(m.entries), page)
		}
		vs.finished = m.allTerminal()
		renderer.paint(buildFrame(w, h, m, transcript, title, vs))

		if quitting && active == nil {
			return nil
		}

		<-ticker.C
	}
}

// finalizeOutcome records one terminal result: model counts, the durable
// ledger record, and for failures the archived transcript. The ledger write
// is the critical section the signal handler shields.
func finalizeOutcome(m *progressModel, idx int, run *installRun, oc outcome) {
	transcript := run.snapshot()
	m.complete(idx, oc, transcript)

	isCriticalAtomic.Store(1)
	defer isCriticalAtomic.Store(0)

	name := m.entries[idx].name
	if err := appendOutcome(name, oc, run.lastLine()); err != nil {
		// Surface in the transcript pane; a ledger write failure must not
		// kill the run.
		m.entries[idx].transcript = append(m.entries[idx].transcript,
			fmt.Sprintf("WARNING: ledger write failed: %v", err))
	}
	if oc == outcomeFailure {
		if err := archiveTranscript(name, transcript); err != nil {
			debugf("transcript archive: %v\n", err)
		}
	}
}
