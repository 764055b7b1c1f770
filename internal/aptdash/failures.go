package aptdash

import (
	"fmt"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"golang.org/x/term"
)

// runFailureViewer shows the archived transcripts of failed installs in a
// scrollable TUI. Falls back to plain printing when stdout is not a TTY.
func runFailureViewer() int {
	names, err := listArchivedFailures()
	if err != nil {
		colError.Printf("Error reading failure log: %v\n", err)
		return 1
	}
	if len(names) == 0 {
		cPrintln(colInfo, "No failure transcripts recorded.")
		return 0
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		for _, name := range names {
			lines, err := readTranscript(name)
			if err != nil {
				colError.Printf("%s: %v\n", name, err)
				continue
			}
			fmt.Printf("==== %s ====\n%s\n", name, strings.Join(lines, "\n"))
		}
		return 0
	}

	app := tview.NewApplication()

	headerBox := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetTextAlign(tview.AlignLeft)
	headerBox.SetBorder(true)
	headerBox.SetTitle("aptdash Failure Viewer")

	logView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetScrollable(true)
	logView.SetBorder(true)

	footerBox := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetTextAlign(tview.AlignLeft)
	footerBox.SetBorder(true)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerBox, 3, 0, false).
		AddItem(logView, 0, 1, true).
		AddItem(footerBox, 3, 0, false)

	activeIdx := 0
	show := func() {
		name := names[activeIdx]
		headerBox.SetText(fmt.Sprintf("[gray]Failure %d/%d: %s[white]", activeIdx+1, len(names), name))
		logView.Clear()
		lines, err := readTranscript(name)
		if err != nil {
			logView.SetText(fmt.Sprintf("failed to read transcript: %v", err))
		} else {
			ansiWriter := tview.ANSIWriter(logView)
			ansiWriter.Write([]byte(strings.Join(lines, "\n")))
		}
		logView.ScrollToEnd()
	}

	footerBox.SetText("[gray]Press 'q' or Esc to quit | ← → (or h/l) to switch packages | ↑ ↓ PgUp/PgDn to scroll[white]")

	flex.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc, tcell.KeyCtrlQ:
			app.Stop()
			return nil
		case tcell.KeyLeft:
			activeIdx = (activeIdx + len(names) - 1) % len(names)
			show()
			return nil
		case tcell.KeyRight:
			activeIdx = (activeIdx + 1) % len(names)
			show()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'q':
				app.Stop()
				return nil
			case 'h':
				activeIdx = (activeIdx + len(names) - 1) % len(names)
				show()
				return nil
			case 'l':
				activeIdx = (activeIdx + 1) % len(names)
				show()
				return nil
			}
		}
		return event
	})

	app.SetRoot(flex, true).SetFocus(logView)
	show()

	if err := app.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "failures:", err)
		return 1
	}
	return 0
}
