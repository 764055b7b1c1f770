package aptdash

import (
	"context"
	"time"

	"github.com/schollz/progressbar/v3"
)

// runPlain is the no-TTY fallback: same orchestration and ledger discipline
// as the dashboard, rendered as a progress bar and one line per outcome.
// Used when stdout is piped (CI, cron) or -plain is given.
func runPlain(ctx context.Context, m *progressModel) error {
	c := m.counts()
	bar := progressbar.NewOptions(c.pending,
		progressbar.OptionSetDescription("installing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
	)

	for {
		if ctx.Err() != nil {
			cPrintln(colWarn, "\nInterrupted; completed work is recorded in the ledger.")
			return nil
		}
		idx := m.nextPending()
		if idx < 0 {
			break
		}
		name := m.entries[idx].name
		m.markInstalling(idx)
		run := startInstall(ctx, name)
		for {
			if done, _ := run.finished(); done {
				break
			}
			time.Sleep(tickInterval)
		}
		_, oc := run.finished()
		if run.wasAborted() {
			continue // killed mid-flight: no outcome to record
		}
		// A child that exited on its own is recorded even when an interrupt
		// raced its exit.
		finalizeOutcome(m, idx, run, oc)
		bar.Add(1)
		if oc == outcomeSuccess {
			colSuccess.Printf("\n%s installed (%s)\n", name, run.elapsed().Round(time.Second))
		} else {
			colError.Printf("\n%s failed: %s\n", name, run.lastLine())
		}
	}

	bar.Finish()
	printSummary(m)
	return nil
}

// printSummary is the end-of-run report shared by plain mode and `status`.
func printSummary(m *progressModel) {
	c := m.counts()
	colArrow.Print("-> ")
	colSuccess.Println("Installation run complete")
	cPrintf(colInfo, "  total %d, succeeded %d, failed %d\n", c.total, c.succeeded, c.failed)
	cPrintf(colInfo, "  skipped: %d installed, %d prior success, %d prior failure\n",
		c.skippedInstalled, c.skippedSuccess, c.skippedFailure)
	if c.failed > 0 || c.skippedFailure > 0 {
		cPrintln(colWarn, "Run 'aptdash failures' to inspect failure transcripts.")
	}
}
