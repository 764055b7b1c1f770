package aptdash

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setTestState points the state-dir globals at a fresh temp dir for one test.
func setTestState(t *testing.T) string {
	t.Helper()
	oldState, oldManifest := stateDir, manifestPath
	stateDir = t.TempDir()
	initPaths()
	t.Cleanup(func() {
		stateDir = oldState
		manifestPath = oldManifest
		initPaths()
	})
	return stateDir
}

func TestLedgerRoundTrip(t *testing.T) {
	setTestState(t)

	require.NoError(t, appendOutcome("curl", outcomeSuccess, ""))
	require.NoError(t, appendOutcome("vim", outcomeFailure, "E: unable to locate package"))
	require.NoError(t, appendOutcome("git", outcomeSuccess, ""))

	l, err := loadLedger()
	require.NoError(t, err)
	assert.Equal(t, outcomeSuccess, l.prior("curl"))
	assert.Equal(t, outcomeFailure, l.prior("vim"))
	assert.Equal(t, outcomeSuccess, l.prior("git"))
	assert.Equal(t, outcomeNone, l.prior("htop"))
}

func TestLedgerMissingFilesAreEmpty(t *testing.T) {
	setTestState(t)
	l, err := loadLedger()
	require.NoError(t, err)
	assert.Empty(t, l.outcomes)
	assert.Zero(t, l.warnings)
}

func TestLedgerSuccessWinsOverOlderFailure(t *testing.T) {
	setTestState(t)
	require.NoError(t, appendOutcome("curl", outcomeFailure, "transient"))
	require.NoError(t, appendOutcome("curl", outcomeSuccess, ""))

	l, err := loadLedger()
	require.NoError(t, err)
	assert.Equal(t, outcomeSuccess, l.prior("curl"))
}

func TestLedgerSkipsMalformedLines(t *testing.T) {
	setTestState(t)
	content := "curl\t2026-01-01T00:00:00Z\nthis line is garbage with spaces\n\nvim\t2026-01-01T00:00:00Z\n"
	require.NoError(t, os.WriteFile(successLog, []byte(content), 0o644))

	l, err := loadLedger()
	require.NoError(t, err)
	assert.Equal(t, outcomeSuccess, l.prior("curl"))
	assert.Equal(t, outcomeSuccess, l.prior("vim"))
	assert.Equal(t, 1, l.warnings)
}

func TestLedgerToleratesBareNames(t *testing.T) {
	// Format produced by hand-edited lists: one name per line, no timestamp.
	setTestState(t)
	require.NoError(t, os.WriteFile(successLog, []byte("curl\nvim\n"), 0o644))

	l, err := loadLedger()
	require.NoError(t, err)
	assert.Equal(t, outcomeSuccess, l.prior("curl"))
	assert.Equal(t, outcomeSuccess, l.prior("vim"))
}

func TestAppendOutcomeFailureDetail(t *testing.T) {
	setTestState(t)
	require.NoError(t, appendOutcome("vim", outcomeFailure, "line one\nline\ttwo"))

	data, err := os.ReadFile(failureLog)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	fields := strings.Split(line, "\t")
	require.Len(t, fields, 3)
	assert.Equal(t, "vim", fields[0])
	assert.Equal(t, "line one line two", fields[2])
}

func TestSanitizeDetailTruncates(t *testing.T) {
	long := strings.Repeat("x", 1000)
	assert.Len(t, sanitizeDetail(long), 300)
}

func TestAcquireLockIsExclusive(t *testing.T) {
	setTestState(t)

	release, err := acquireLock()
	require.NoError(t, err)

	_, err = acquireLock()
	require.ErrorIs(t, err, errAlreadyRunning)

	release()
	release2, err := acquireLock()
	require.NoError(t, err)
	release2()
}

func TestCheckFingerprintWritesSidecar(t *testing.T) {
	setTestState(t)
	manifestPath = writeManifest(t, "packages.list", "curl\tinstall\n")

	checkFingerprint()
	data, err := os.ReadFile(fingerprintFile)
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(string(data)), 64)
}
