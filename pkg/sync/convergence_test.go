package sync

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionRecord = "Synchronization complete. All files and directories are synchronized."

func TestCountEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/tree/sub", 0755))
	require.NoError(t, afero.WriteFile(fs, "/tree/a.txt", []byte("a"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/tree/sub/b.txt", []byte("b"), 0644))

	// The root itself isn't counted: one directory plus two files.
	count, err := countEntries(fs, "/tree")
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCheckLogsCompletion(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src", 0755))
	require.NoError(t, afero.WriteFile(fs, "/src/a.txt", []byte("hi"), 0644))

	session := newTestSession(fs)
	NewReconciler(session, "/src", "/dst").Reconcile()
	require.True(t, session.ChangesMade())

	NewChecker(session, "/src", "/dst").Check()

	assert.Equal(t, 1, countRecords(readLog(t, fs), completionRecord))
	assert.False(t, session.ChangesMade())
}

func TestCheckSilentWithoutChanges(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src", 0755))
	require.NoError(t, fs.MkdirAll("/dst", 0755))

	session := newTestSession(fs)
	NewChecker(session, "/src", "/dst").Check()

	assert.Equal(t, 0, countRecords(readLog(t, fs), completionRecord))
}

func TestCheckSilentOnCountMismatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src", 0755))
	require.NoError(t, fs.MkdirAll("/dst", 0755))
	require.NoError(t, afero.WriteFile(fs, "/src/a.txt", []byte("hi"), 0644))

	session := newTestSession(fs)
	session.FlagChange()
	NewChecker(session, "/src", "/dst").Check()

	assert.Equal(t, 0, countRecords(readLog(t, fs), completionRecord))
	// The flag is only cleared when completion is declared.
	assert.True(t, session.ChangesMade())
}

func TestCheckIsCardinalityHeuristic(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/src", 0755))
	require.NoError(t, fs.MkdirAll("/dst", 0755))
	require.NoError(t, afero.WriteFile(fs, "/src/a.txt", []byte("hi"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/dst/unrelated.txt", []byte("nope"), 0644))

	session := newTestSession(fs)
	session.FlagChange()
	NewChecker(session, "/src", "/dst").Check()

	// Equal counts of differing entries still count as convergence.
	assert.Equal(t, 1, countRecords(readLog(t, fs), completionRecord))
}
