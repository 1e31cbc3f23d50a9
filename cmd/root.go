package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/syncwell/mirror/cmd/util"
	versionCmd "github.com/syncwell/mirror/cmd/version"
	"github.com/syncwell/mirror/pkg/errors"
	"github.com/syncwell/mirror/pkg/fswatch"
	"github.com/syncwell/mirror/pkg/oplog"
	"github.com/syncwell/mirror/pkg/sync"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "MIRROR_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	rootCmd := newRootCommand()
	rootCmd.AddCommand(versionCmd.New())

	if err := rootCmd.Execute(); err != nil {
		// Cobra already printed the error and usage.
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "mirror <source_path> <replica_path> <interval_seconds> <log_file_path>",
		Short: "Periodically mirror a source directory onto a replica directory.",
		Long: "Mirror keeps the replica directory identical to the source directory.\n" +
			"Every <interval_seconds> it creates missing directories, copies files\n" +
			"whose content hash changed, and deletes replica entries that no longer\n" +
			"exist in the source. Every mutation is appended to <log_file_path>.",
		Args: cobra.ExactArgs(4),
		Run: func(_ *cobra.Command, args []string) {
			opts, err := parseOptions(args, watch)
			if err != nil {
				util.HandleFatalError(err)
			}

			if err := runSync(opts); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false,
		"start a pass as soon as the source tree changes, in addition to the fixed interval")
	return cmd
}

type options struct {
	source   string
	replica  string
	interval time.Duration
	logPath  string
	watch    bool
}

func parseOptions(args []string, watch bool) (options, error) {
	seconds, err := strconv.Atoi(args[2])
	if err != nil {
		return options{}, errors.NewFriendlyError(
			"The synchronization interval must be an integer number of seconds, not %q.", args[2])
	}

	return options{
		source:   args[0],
		replica:  args[1],
		interval: time.Duration(seconds) * time.Second,
		logPath:  args[3],
		watch:    watch,
	}, nil
}

func runSync(opts options) error {
	fs := afero.NewOsFs()
	logger := oplog.New(fs, opts.logPath, os.Stdout)
	session := sync.NewSession(fs, logger)

	// An invalid source is fatal at startup. The driver re-validates at the
	// top of every iteration to catch the source disappearing mid-run.
	if err := sync.ValidateSource(session, opts.source); err != nil {
		return err
	}

	logger.Log("Starting folder synchronization.")
	logger.Log("Source path: " + opts.source)
	logger.Log("Replica path: " + opts.replica)
	logger.Log(fmt.Sprintf("Synchronization interval: %d seconds", int(opts.interval/time.Second)))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		session.RequestShutdown()
	}()

	driver := sync.NewDriver(session, opts.source, opts.replica, opts.interval)
	if opts.watch {
		events, err := fswatch.Watch(opts.source)
		if err != nil {
			log.WithError(err).Warn("Failed to watch the source tree for changes. " +
				"Falling back to interval polling only.")
		} else {
			// The watcher is never closed: it must live exactly as long as
			// the sync loop, and the process exits when the loop stops.
			driver.WatchEvents(events)
		}
	}

	return driver.Run()
}
