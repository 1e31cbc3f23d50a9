package util

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/syncwell/mirror/pkg/errors"
)

// HandleFatalError reports an unrecoverable error and exits with a failure
// status. Friendly errors are printed as-is; anything else goes through the
// structured logger.
func HandleFatalError(err error) {
	if friendly, ok := errors.RootCause(err).(errors.FriendlyError); ok {
		fmt.Fprintln(os.Stderr, friendly.Message)
	} else {
		log.WithError(err).Error("Unexpected error")
	}
	os.Exit(1)
}

// HandlePanic recovers from panics so that crashes are reported with a stack
// trace before the process exits. It should be deferred at the top of every
// goroutine.
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "panic: %v\n\n%s\n", r, debug.Stack())
	os.Exit(1)
}
