package sync

import (
	iofs "io/fs"
	"os"
	"sync/atomic"
	"syscall"

	"github.com/spf13/afero"

	"github.com/syncwell/mirror/pkg/errors"
	"github.com/syncwell/mirror/pkg/oplog"
)

// Session carries the state shared by the components of one synchronization
// session: the filesystem, the operation log, and the two process-lifecycle
// flags. Keeping the flags here rather than in package globals lets multiple
// independent sessions run in one process.
type Session struct {
	fs  afero.Fs
	log *oplog.Logger

	// changes records whether any mutation happened during the current pass.
	// shutdown is set exactly once by the signal path and may be read from
	// any goroutine.
	changes  atomic.Bool
	shutdown atomic.Bool
}

// NewSession creates a Session that operates on `fs` and records mutations
// to `log`.
func NewSession(fs afero.Fs, log *oplog.Logger) *Session {
	return &Session{fs: fs, log: log}
}

// FlagChange records that the current pass mutated the replica.
func (s *Session) FlagChange() {
	s.changes.Store(true)
}

// ChangesMade returns whether the current pass mutated the replica.
func (s *Session) ChangesMade() bool {
	return s.changes.Load()
}

func (s *Session) clearChanges() {
	s.changes.Store(false)
}

// RequestShutdown asks the session's driver to stop after the current pass.
// It's safe to call from a signal handler goroutine at any time.
func (s *Session) RequestShutdown() {
	s.shutdown.Store(true)
}

// ShutdownRequested returns whether a shutdown has been requested.
func (s *Session) ShutdownRequested() bool {
	return s.shutdown.Load()
}

// logError records a failed sub-operation in the operation log. Failures at
// the OS filesystem boundary are labeled "Filesystem error", everything else
// "Error".
func (s *Session) logError(err error) {
	switch errors.RootCause(err).(type) {
	case *iofs.PathError, *os.LinkError, syscall.Errno:
		s.log.Log("Filesystem error: " + err.Error())
	default:
		s.log.Log("Error: " + err.Error())
	}
}
