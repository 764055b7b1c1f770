package aptdash

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setSimScreen routes runDashboard onto a simulation screen. The dashboard
// owns the screen lifecycle, so no Fini cleanup is registered here.
func setSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	old := newScreen
	newScreen = func() (tcell.Screen, error) { return sim, nil }
	t.Cleanup(func() { newScreen = old })
	return sim
}

func waitForLedger(t *testing.T, name string, want outcome) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if l, err := loadLedger(); err == nil && l.prior(name) == want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("ledger never recorded %s as %v", name, want)
}

func TestDashboardRunRecordsOutcomesAndQuits(t *testing.T) {
	setTestState(t)
	setLoggingInstaller(t, "")
	sim := setSimScreen(t)

	m := newProgressModel([]string{"a", "b", "c"})
	m.seed(map[string]struct{}{}, &ledgerState{outcomes: map[string]outcome{}})

	done := make(chan error, 1)
	go func() { done <- runDashboard(context.Background(), m) }()

	waitForLedger(t, "a", outcomeSuccess)
	waitForLedger(t, "b", outcomeFailure)
	waitForLedger(t, "c", outcomeSuccess)
	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("dashboard did not exit on q")
	}

	c := m.counts()
	assert.Equal(t, 2, c.succeeded)
	assert.Equal(t, 1, c.failed)
	assert.True(t, m.allTerminal())
}

func TestDashboardQuitLeavesKilledChildUnrecorded(t *testing.T) {
	setTestState(t)
	invoked := setLoggingInstaller(t, `if [ "$1" = "b" ]; then sleep 60; fi`)
	sim := setSimScreen(t)

	m := newProgressModel([]string{"a", "b"})
	m.seed(map[string]struct{}{}, &ledgerState{outcomes: map[string]outcome{}})

	done := make(chan error, 1)
	go func() { done <- runDashboard(context.Background(), m) }()

	waitForLedger(t, "a", outcomeSuccess)
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		data, _ := os.ReadFile(invoked)
		if strings.Contains(string(data), "b") {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("dashboard did not exit after quit killed the child")
	}

	// the killed child left no ledger record and no invented outcome
	l, err := loadLedger()
	require.NoError(t, err)
	assert.Equal(t, outcomeSuccess, l.prior("a"))
	assert.Equal(t, outcomeNone, l.prior("b"))
	assert.Equal(t, statusInstalling, m.entries[1].status)
}
