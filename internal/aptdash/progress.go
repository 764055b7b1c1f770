package aptdash

import (
	"time"
)

// pkgStatus is the per-package state. Only pending and installing are
// non-terminal; no transition ever reverses.
type pkgStatus int

const (
	statusPending pkgStatus = iota
	statusSkippedInstalled // already on the system, installer never invoked
	statusSkippedSuccess   // prior run succeeded (ledger)
	statusSkippedFailure   // prior run failed (ledger)
	statusInstalling
	statusSucceeded
	statusFailed
)

func (s pkgStatus) terminal() bool {
	return s != statusPending && s != statusInstalling
}

func (s pkgStatus) glyph() string {
	switch s {
	case statusInstalling:
		return "->"
	case statusSucceeded:
		return " ✔"
	case statusFailed:
		return " ✖"
	case statusSkippedInstalled, statusSkippedSuccess:
		return " S"
	case statusSkippedFailure:
		return " F"
	default:
		return "  "
	}
}

// pkgEntry is created once per manifest line and only ever mutated, never
// removed. Transcript is retained for failed packages so the failure can be
// reviewed after the run.
type pkgEntry struct {
	name       string
	status     pkgStatus
	startedAt  time.Time
	endedAt    time.Time
	transcript []string
}

// statusCounts aggregates entry states for the stats panel and final summary.
type statusCounts struct {
	pending          int
	skippedInstalled int
	skippedSuccess   int
	skippedFailure   int
	installing       int
	succeeded        int
	failed           int
	total            int
}

func (c statusCounts) processed() int {
	return c.total - c.pending - c.installing
}

// progressModel is the single source of truth for run state. It has exactly
// one writer, the controller loop; the renderer only reads between mutations.
type progressModel struct {
	entries   []*pkgEntry
	startedAt time.Time
	durations []time.Duration // completions this run, for ETR
}

func newProgressModel(names []string) *progressModel {
	m := &progressModel{startedAt: time.Now()}
	for _, n := range names {
		m.entries = append(m.entries, &pkgEntry{name: n, status: statusPending})
	}
	return m
}

// seed marks entries terminal from prior knowledge: the system inventory and
// the resume ledger. Inventory wins; a package already on the machine is
// skipped no matter what history says.
func (m *progressModel) seed(installed map[string]struct{}, ledger *ledgerState) {
	for _, e := range m.entries {
		if _, ok := installed[e.name]; ok {
			e.status = statusSkippedInstalled
			continue
		}
		switch ledger.prior(e.name) {
		case outcomeSuccess:
			e.status = statusSkippedSuccess
		case outcomeFailure:
			e.status = statusSkippedFailure
		}
	}
}

// nextPending returns the index of the first entry still eligible for an
// install, or -1. Strictly manifest order.
func (m *progressModel) nextPending() int {
	for i, e := range m.entries {
		if e.status == statusPending {
			return i
		}
	}
	return -1
}

// markInstalling transitions exactly one entry into the in-flight state.
func (m *progressModel) markInstalling(i int) {
	e := m.entries[i]
	e.status = statusInstalling
	e.startedAt = time.Now()
}

// complete records a terminal outcome for an in-flight entry.
func (m *progressModel) complete(i int, oc outcome, transcript []string) {
	e := m.entries[i]
	e.endedAt = time.Now()
	if oc == outcomeSuccess {
		e.status = statusSucceeded
		m.durations = append(m.durations, e.endedAt.Sub(e.startedAt))
	} else {
		e.status = statusFailed
		e.transcript = transcript
	}
}

// installingIndex returns the in-flight entry, or -1. The sequential
// invariant means there is never more than one.
func (m *progressModel) installingIndex() int {
	for i, e := range m.entries {
		if e.status == statusInstalling {
			return i
		}
	}
	return -1
}

func (m *progressModel) allTerminal() bool {
	for _, e := range m.entries {
		if !e.status.terminal() {
			return false
		}
	}
	return true
}

func (m *progressModel) counts() statusCounts {
	var c statusCounts
	c.total = len(m.entries)
	for _, e := range m.entries {
		switch e.status {
		case statusPending:
			c.pending++
		case statusSkippedInstalled:
			c.skippedInstalled++
		case statusSkippedSuccess:
			c.skippedSuccess++
		case statusSkippedFailure:
			c.skippedFailure++
		case statusInstalling:
			c.installing++
		case statusSucceeded:
			c.succeeded++
		case statusFailed:
			c.failed++
		}
	}
	return c
}

func (m *progressModel) elapsed() time.Duration {
	return time.Since(m.startedAt)
}

// etr estimates time remaining from the average completion time this run
// times the packages still to be attempted. Undefined until at least one
// package completed this run.
func (m *progressModel) etr() (time.Duration, bool) {
	if len(m.durations) == 0 {
		return 0, false
	}
	var sum time.Duration
	for _, d := range m.durations {
		sum += d
	}
	avg := sum / time.Duration(len(m.durations))
	c := m.counts()
	remaining := c.pending + c.installing
	return avg * time.Duration(remaining), true
}
