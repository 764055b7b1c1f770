package aptdash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveTranscriptRoundTrip(t *testing.T) {
	setTestState(t)

	lines := []string{"Running: apt-get install -y vim", "E: broken", "Install command failed: exit status 100"}
	require.NoError(t, archiveTranscript("vim", lines))

	got, err := readTranscript("vim")
	require.NoError(t, err)
	assert.Equal(t, lines, got)
}

func TestTranscriptPathEscapesSlash(t *testing.T) {
	setTestState(t)
	require.NoError(t, archiveTranscript("weird/name", []string{"x"}))
	_, err := readTranscript("weird/name")
	assert.NoError(t, err)
}

func TestListArchivedFailures(t *testing.T) {
	setTestState(t)

	require.NoError(t, appendOutcome("vim", outcomeFailure, "boom"))
	require.NoError(t, appendOutcome("git", outcomeFailure, "boom"))
	require.NoError(t, appendOutcome("vim", outcomeFailure, "boom again"))
	require.NoError(t, archiveTranscript("vim", []string{"x"}))
	// git failed but has no archive, so it is not listed

	names, err := listArchivedFailures()
	require.NoError(t, err)
	assert.Equal(t, []string{"vim"}, names)
}

func TestListArchivedFailuresNoLedger(t *testing.T) {
	setTestState(t)
	names, err := listArchivedFailures()
	require.NoError(t, err)
	assert.Empty(t, names)
}
