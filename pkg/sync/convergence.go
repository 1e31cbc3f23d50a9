package sync

import (
	"os"

	"github.com/spf13/afero"

	"github.com/syncwell/mirror/pkg/errors"
)

// Checker decides whether to declare a pass complete.
type Checker struct {
	session *Session
	source  string
	replica string
}

// NewChecker creates a Checker for the given tree roots.
func NewChecker(session *Session, source, replica string) *Checker {
	return &Checker{session: session, source: source, replica: replica}
}

// Check counts the entries under both trees and, if the counts match and the
// current pass made changes, logs a completion record and clears the change
// flag. This is a cardinality heuristic, not a content-equality proof: equal
// counts of differing entries are indistinguishable from true convergence.
func (c *Checker) Check() {
	sourceCount, err := countEntries(c.session.fs, c.source)
	if err != nil {
		c.session.logError(err)
		return
	}
	replicaCount, err := countEntries(c.session.fs, c.replica)
	if err != nil {
		c.session.logError(err)
		return
	}

	if sourceCount == replicaCount && c.session.ChangesMade() {
		c.session.log.Log("Synchronization complete. All files and directories are synchronized.")
		c.session.clearChanges()
	}
}

// countEntries returns the number of regular files and directories under
// `root`, not counting the root itself.
func countEntries(fs afero.Fs, root string) (int, error) {
	count := 0
	err := afero.Walk(fs, root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if fi.Mode().IsRegular() || fi.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, errors.WithContext(err, "count entries")
	}
	return count, nil
}
