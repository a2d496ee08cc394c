// Command widgetreplay replays recorded viewport sessions against a widget
// definition and prints the event batches the tracker would send.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose  bool
	jsonLogs bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "widgetreplay",
		Short: "Replay widget impression sessions",
		Long: `widgetreplay drives the impression tracker through a recorded session
(scrolls, resizes, clicks and elapsed time) against a simulated window.

It prints every batch the tracker sends as one JSON line, so widget
definitions and breakpoint changes can be checked without a browser.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log tracker decisions at debug level")
	root.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON")

	root.AddCommand(newRunCmd())
	root.AddCommand(newSnapshotsCmd())
	return root
}

// newLogger writes to w, which is stderr outside tests.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
