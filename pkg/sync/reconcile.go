package sync

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/syncwell/mirror/pkg/errors"
	"github.com/syncwell/mirror/pkg/hash"
)

// Reconciler makes the replica tree match the source tree for one pass.
type Reconciler struct {
	session *Session
	source  string
	replica string
}

// NewReconciler creates a Reconciler that mirrors `source` onto `replica`.
func NewReconciler(session *Session, source, replica string) *Reconciler {
	return &Reconciler{session: session, source: source, replica: replica}
}

// Reconcile runs one full pass: ensure the replica root exists, then sync
// directories, file contents, and deletions in that order.
// Each phase's errors are logged and the pass moves on to the next phase, so
// one bad entry never aborts the whole pass. If the replica root itself can't
// be created there's nothing for the phases to work on, so the pass is
// abandoned.
func (r *Reconciler) Reconcile() {
	r.session.clearChanges()

	if err := r.ensureReplica(); err != nil {
		r.session.logError(err)
		return
	}
	if err := r.syncDirectories(); err != nil {
		r.session.logError(err)
	}
	if err := r.syncFiles(); err != nil {
		r.session.logError(err)
	}
	if err := r.syncDeletes(); err != nil {
		r.session.logError(err)
	}
}

func (r *Reconciler) ensureReplica() error {
	exists, err := afero.DirExists(r.session.fs, r.replica)
	if err != nil {
		return errors.WithContext(err, "check replica")
	}
	if exists {
		return nil
	}

	if err := r.session.fs.MkdirAll(r.replica, 0755); err != nil {
		return errors.WithContext(err, "create replica")
	}
	r.session.log.Log("Created replica directory: " + r.replica)
	r.session.FlagChange()
	return nil
}

// syncDirectories creates a replica directory for every source directory.
// Walk visits parents before children, so nested directories can be created
// with a plain Mkdir.
func (r *Reconciler) syncDirectories() error {
	err := afero.Walk(r.session.fs, r.source, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == r.source || !fi.IsDir() {
			return nil
		}

		replicaPath, err := r.toReplicaPath(path)
		if err != nil {
			return err
		}

		exists, err := afero.Exists(r.session.fs, replicaPath)
		if err != nil {
			return err
		}
		if !exists {
			if err := r.session.fs.Mkdir(replicaPath, 0755); err != nil {
				return err
			}
			r.session.log.Log("Created directory: " + replicaPath)
			r.session.FlagChange()
		}
		return nil
	})
	if err != nil {
		return errors.WithContext(err, "sync directories")
	}
	return nil
}

// syncFiles copies every regular source file whose replica counterpart is
// missing or has different contents. Change detection is by content hash, so
// touched-but-unchanged files are never recopied. Entries that aren't regular
// files or directories are skipped.
func (r *Reconciler) syncFiles() error {
	err := afero.Walk(r.session.fs, r.source, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		replicaPath, err := r.toReplicaPath(path)
		if err != nil {
			return err
		}

		shouldCopy, err := r.shouldCopy(path, replicaPath)
		if err != nil {
			return err
		}
		if !shouldCopy {
			return nil
		}

		if err := r.copyFile(path, replicaPath); err != nil {
			return err
		}
		r.session.log.Log(fmt.Sprintf("Copied file: %s to %s", path, replicaPath))
		r.session.FlagChange()
		return nil
	})
	if err != nil {
		return errors.WithContext(err, "sync files")
	}
	return nil
}

func (r *Reconciler) shouldCopy(sourcePath, replicaPath string) (bool, error) {
	exists, err := afero.Exists(r.session.fs, replicaPath)
	if err != nil {
		return false, errors.WithContext(err, "check replica file")
	}
	if !exists {
		return true, nil
	}

	sourceHash, err := hash.HashFile(r.session.fs, sourcePath)
	if err != nil {
		return false, errors.WithContext(err, "hash source file")
	}
	replicaHash, err := hash.HashFile(r.session.fs, replicaPath)
	if err != nil {
		return false, errors.WithContext(err, "hash replica file")
	}
	return sourceHash != replicaHash, nil
}

// syncDeletes removes every replica entry with no corresponding source entry.
// Doomed paths are collected first and deleted only after the walk finishes
// so that the walk never iterates a tree it's mutating. Removing a child
// whose orphaned parent was already deleted is a no-op, but it's still
// logged, matching one "Removed" record per orphaned entry.
func (r *Reconciler) syncDeletes() error {
	var doomed []string
	err := afero.Walk(r.session.fs, r.replica, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == r.replica {
			return nil
		}

		sourcePath, err := r.toSourcePath(path)
		if err != nil {
			return err
		}

		exists, err := afero.Exists(r.session.fs, sourcePath)
		if err != nil {
			return err
		}
		if !exists {
			doomed = append(doomed, path)
		}
		return nil
	})
	if err != nil {
		return errors.WithContext(err, "collect orphaned entries")
	}

	for _, path := range doomed {
		if err := r.session.fs.RemoveAll(path); err != nil {
			return errors.WithContext(err, "remove orphaned entry")
		}
		r.session.log.Log("Removed: " + path)
		r.session.FlagChange()
	}
	return nil
}

// copyFile overwrites `dst` with the contents of `src`, preserving the file
// mode and modification time.
func (r *Reconciler) copyFile(src, dst string) error {
	fs := r.session.fs

	srcFile, err := fs.Open(src)
	if err != nil {
		return errors.WithContext(err, "open source")
	}
	defer srcFile.Close()

	fileInfo, err := srcFile.Stat()
	if err != nil {
		return errors.WithContext(err, "stat")
	}

	dstFile, err := fs.Create(dst)
	if err != nil {
		return errors.WithContext(err, "open destination")
	}
	defer dstFile.Close()

	if err := fs.Chmod(dst, fileInfo.Mode()); err != nil {
		return errors.WithContext(err, "set file mode")
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return errors.WithContext(err, "copy")
	}

	// Change the modification time as the last step so that it doesn't get
	// reset by other file operations.
	if err := fs.Chtimes(dst, time.Now(), fileInfo.ModTime()); err != nil {
		return errors.WithContext(err, "set file modtime")
	}
	return nil
}

func (r *Reconciler) toReplicaPath(sourcePath string) (string, error) {
	relativePath, err := filepath.Rel(r.source, sourcePath)
	if err != nil {
		return "", errors.WithContext(err, "relative path")
	}
	return filepath.Join(r.replica, relativePath), nil
}

func (r *Reconciler) toSourcePath(replicaPath string) (string, error) {
	relativePath, err := filepath.Rel(r.replica, replicaPath)
	if err != nil {
		return "", errors.WithContext(err, "relative path")
	}
	return filepath.Join(r.source, relativePath), nil
}
