package aptdash

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedFromInventoryAndLedger(t *testing.T) {
	m := newProgressModel([]string{"a", "b", "c", "d", "e"})
	installed := map[string]struct{}{"b": {}}
	ledger := &ledgerState{outcomes: map[string]outcome{
		"c": outcomeSuccess,
		"d": outcomeFailure,
		"b": outcomeFailure, // inventory wins over history
	}}
	m.seed(installed, ledger)

	assert.Equal(t, statusPending, m.entries[0].status)
	assert.Equal(t, statusSkippedInstalled, m.entries[1].status)
	assert.Equal(t, statusSkippedSuccess, m.entries[2].status)
	assert.Equal(t, statusSkippedFailure, m.entries[3].status)
	assert.Equal(t, statusPending, m.entries[4].status)

	c := m.counts()
	assert.Equal(t, 5, c.total)
	assert.Equal(t, 2, c.pending)
	assert.Equal(t, c.total,
		c.pending+c.skippedInstalled+c.skippedSuccess+c.skippedFailure+c.installing+c.succeeded+c.failed)
}

func TestSequentialStateMachine(t *testing.T) {
	m := newProgressModel([]string{"a", "b"})

	idx := m.nextPending()
	require.Equal(t, 0, idx)
	m.markInstalling(idx)
	assert.Equal(t, 0, m.installingIndex())
	assert.Equal(t, 1, m.counts().installing)

	m.complete(idx, outcomeSuccess, nil)
	assert.Equal(t, statusSucceeded, m.entries[0].status)
	assert.Equal(t, -1, m.installingIndex())

	idx = m.nextPending()
	require.Equal(t, 1, idx)
	m.markInstalling(idx)
	m.complete(idx, outcomeFailure, []string{"boom"})
	assert.Equal(t, statusFailed, m.entries[1].status)
	assert.Equal(t, []string{"boom"}, m.entries[1].transcript)

	assert.True(t, m.allTerminal())
	assert.Equal(t, -1, m.nextPending())
}

func TestEveryEntryReachesExactlyOneTerminalState(t *testing.T) {
	names := []string{"a", "b", "c", "d"}
	m := newProgressModel(names)
	m.seed(map[string]struct{}{"b": {}}, &ledgerState{outcomes: map[string]outcome{"c": outcomeSuccess}})

	for {
		idx := m.nextPending()
		if idx < 0 {
			break
		}
		m.markInstalling(idx)
		m.complete(idx, outcomeSuccess, nil)
	}

	require.True(t, m.allTerminal())
	c := m.counts()
	assert.Equal(t, len(names), c.succeeded+c.failed+c.skippedInstalled+c.skippedSuccess+c.skippedFailure)
	assert.Zero(t, c.pending)
	assert.Zero(t, c.installing)
}

func TestETRUndefinedUntilFirstCompletion(t *testing.T) {
	m := newProgressModel([]string{"a", "b", "c"})
	_, ok := m.etr()
	assert.False(t, ok)

	idx := m.nextPending()
	m.markInstalling(idx)
	m.entries[idx].startedAt = time.Now().Add(-2 * time.Second)
	m.complete(idx, outcomeSuccess, nil)

	etr, ok := m.etr()
	require.True(t, ok)
	// two packages remain at roughly 2s each
	assert.InDelta(t, (4 * time.Second).Seconds(), etr.Seconds(), 1.0)
}

func TestETRIgnoresFailures(t *testing.T) {
	m := newProgressModel([]string{"a", "b"})
	idx := m.nextPending()
	m.markInstalling(idx)
	m.complete(idx, outcomeFailure, nil)

	_, ok := m.etr()
	assert.False(t, ok)
}

func TestStatusGlyphs(t *testing.T) {
	assert.Equal(t, "->", statusInstalling.glyph())
	assert.Equal(t, " ✔", statusSucceeded.glyph())
	assert.Equal(t, " ✖", statusFailed.glyph())
	assert.Equal(t, " S", statusSkippedInstalled.glyph())
	assert.Equal(t, "  ", statusPending.glyph())
}

func TestTerminalPredicate(t *testing.T) {
	assert.False(t, statusPending.terminal())
	assert.False(t, statusInstalling.terminal())
	for _, s := range []pkgStatus{statusSkippedInstalled, statusSkippedSuccess,
		statusSkippedFailure, statusSucceeded, statusFailed} {
		assert.True(t, s.terminal())
	}
}
