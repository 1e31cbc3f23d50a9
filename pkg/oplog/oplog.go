// Package oplog writes the persistent operation log: one timestamped line per
// mutation the synchronizer performs, appended to the log file and mirrored
// to the console.
package oplog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// timestampLayout is the local-time format of every record's prefix.
const timestampLayout = "2006-01-02 15:04:05"

// Logger appends operation records to a log file and echoes them to an
// interactive stream. The write path is serialized so concurrent callers
// never interleave partial lines.
type Logger struct {
	mu      sync.Mutex
	fs      afero.Fs
	clock   clockwork.Clock
	path    string
	console io.Writer
}

// New creates a Logger that appends to the file at `path` and echoes records
// to `console`, typically os.Stdout.
func New(fs afero.Fs, path string, console io.Writer) *Logger {
	return &Logger{
		fs:      fs,
		clock:   clockwork.NewRealClock(),
		path:    path,
		console: console,
	}
}

// Log appends a single `[YYYY-MM-DD HH:MM:SS] <message>` record.
// The file is opened and closed on every call so that external rotation or
// truncation of the log file is picked up on the next record.
// Failures to open the file are reported on stderr and otherwise swallowed:
// a broken log sink must never stop synchronization.
func (l *Logger) Log(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record := fmt.Sprintf("[%s] %s", l.clock.Now().Format(timestampLayout), message)

	file, err := l.fs.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		log.WithError(err).WithField("path", l.path).Error("Unable to open log file")
		return
	}
	defer file.Close()

	if _, err := fmt.Fprintln(file, record); err != nil {
		log.WithError(err).WithField("path", l.path).Error("Failed to write log record")
	}
	fmt.Fprintln(l.console, record)
}
