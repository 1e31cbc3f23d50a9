package sync

import (
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/syncwell/mirror/pkg/errors"
)

// Driver owns the polling loop: it validates the source, runs one
// reconciliation pass, checks for convergence, and sleeps out the remainder
// of the interval, until a shutdown is requested.
type Driver struct {
	session    *Session
	reconciler *Reconciler
	checker    *Checker
	source     string
	interval   time.Duration
	clock      clockwork.Clock

	// wake cuts the end-of-pass sleep short, e.g. when a file watcher sees a
	// change under the source tree. Nil disables early wakeups.
	wake <-chan struct{}
}

// NewDriver creates a Driver that mirrors `source` onto `replica` every
// `interval`.
func NewDriver(session *Session, source, replica string, interval time.Duration) *Driver {
	return &Driver{
		session:    session,
		reconciler: NewReconciler(session, source, replica),
		checker:    NewChecker(session, source, replica),
		source:     source,
		interval:   interval,
		clock:      clockwork.NewRealClock(),
	}
}

// WatchEvents makes the driver start the next pass as soon as `events`
// fires, rather than waiting out the rest of the polling interval.
func (d *Driver) WatchEvents(events <-chan struct{}) {
	d.wake = events
}

// Run loops until a shutdown is requested. The shutdown flag is only
// observed at the top of each iteration: a pass in progress, and the sleep
// after it, always run to completion.
// Run returns nil on a requested shutdown. The source disappearing or
// stopping being a directory mid-run terminates the loop with an error.
func (d *Driver) Run() error {
	for !d.session.ShutdownRequested() {
		if err := ValidateSource(d.session, d.source); err != nil {
			d.session.log.Log("Source directory has been deleted or is inaccessible. Exiting...")
			return err
		}

		start := d.clock.Now()
		d.reconciler.Reconcile()
		d.checker.Check()
		d.sleep(d.clock.Since(start))
	}

	d.session.log.Log("Synchronization stopped.")
	return nil
}

// sleep waits out the remainder of the polling interval. A pass that took
// longer than the interval starts the next pass immediately rather than
// sleeping a negative duration.
func (d *Driver) sleep(elapsed time.Duration) {
	remaining := d.interval - elapsed
	if remaining <= 0 {
		return
	}

	if d.wake == nil {
		d.clock.Sleep(remaining)
		return
	}

	timer := d.clock.NewTimer(remaining)
	select {
	case <-timer.Chan():
	case <-d.wake:
		timer.Stop()
	}
}

// ValidateSource checks that the source path exists and is a directory,
// logging the failure to the operation log if it isn't.
func ValidateSource(session *Session, source string) error {
	fi, err := session.fs.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			session.log.Log("Error: Source path does not exist.")
			return errors.FileNotFound{Path: source}
		}
		session.logError(errors.WithContext(err, "stat source"))
		return errors.WithContext(err, "stat source")
	}

	if !fi.IsDir() {
		session.log.Log("Error: Source path is not a directory.")
		return errors.NotADirectory{Path: source}
	}
	return nil
}
