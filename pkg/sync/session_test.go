package sync

import (
	"os"
	"syscall"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"github.com/syncwell/mirror/pkg/errors"
)

func TestLogErrorClassification(t *testing.T) {
	fs := afero.NewMemMapFs()
	session := newTestSession(fs)

	pathErr := &os.PathError{Op: "open", Path: "/src/f", Err: syscall.EIO}
	session.logError(errors.WithContext(pathErr, "sync files"))
	session.logError(errors.WithContext(errors.New("walk gave up"), "sync deletes"))

	log := readLog(t, fs)
	assert.Equal(t, 1, countRecords(log, "Filesystem error: sync files: open /src/f:"))
	assert.Equal(t, 1, countRecords(log, "Error: sync deletes: walk gave up"))
}
