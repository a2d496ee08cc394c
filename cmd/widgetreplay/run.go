package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	widgetwatch "github.com/randalmurphal/widgetwatch/pkg/widgetwatch"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/config"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/replay"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/sink"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/store"
)

type runFlags struct {
	widget  string
	tuning  string
	db      string
	metrics bool
	tracing bool
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run TRACE...",
		Short: "Replay one or more traces",
		Long: `Replay each trace file in order against the widget definition.

Each trace mounts a fresh tracker. With --db, delivered events are kept in a
SQLite snapshot store between traces and runs, like a widget re-mounted on
the same page.

Examples:
  # Replay a scroll session
  widgetreplay run --widget recs.yaml scroll.yaml

  # Replay two visits, the second remembering the first
  widgetreplay run --widget recs.yaml --db snapshots.db visit1.yaml visit2.yaml

  # Try a slower dispatch window without editing the widget file
  widgetreplay run --widget recs.yaml --tuning slow.yaml scroll.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, f, args)
		},
	}
	cmd.Flags().StringVarP(&f.widget, "widget", "w", "", "Widget definition file (required)")
	cmd.Flags().StringVar(&f.tuning, "tuning", "", "Tuning file overriding the widget's tuning block")
	cmd.Flags().StringVar(&f.db, "db", "", "SQLite snapshot database")
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "Record OpenTelemetry metrics")
	cmd.Flags().BoolVar(&f.tracing, "tracing", false, "Record OpenTelemetry spans")
	_ = cmd.MarkFlagRequired("widget")
	return cmd
}

func runReplay(cmd *cobra.Command, f runFlags, traces []string) error {
	logger := newLogger(cmd.ErrOrStderr())

	wf, err := config.LoadWidget(f.widget)
	if err != nil {
		return err
	}
	if f.tuning != "" {
		over, err := config.LoadTuning(f.tuning)
		if err != nil {
			return err
		}
		wf.OverrideTuning(over)
		logger.Debug("tuning overrides loaded",
			slog.String("path", f.tuning),
			slog.Any("keys", over.Keys()),
		)
	}
	cfg, opts, err := widgetwatch.FromWidgetFile(wf)
	if err != nil {
		return err
	}
	opts = append(opts, widgetwatch.WithMetrics(f.metrics), widgetwatch.WithTracing(f.tracing))

	if f.db != "" {
		st, err := store.NewSQLiteStore(f.db)
		if err != nil {
			return err
		}
		defer st.Close()
		opts = append(opts, widgetwatch.WithSnapshotStore(st))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	runner := replay.NewRunner(cfg, sink.NewLogSink(logger, cmd.OutOrStdout()), logger, opts...)
	for _, path := range traces {
		if err := replayOne(ctx, cmd, runner, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func replayOne(ctx context.Context, cmd *cobra.Command, runner *replay.Runner, path string) error {
	tr, err := replay.LoadTrace(path)
	if err != nil {
		return err
	}
	res, err := runner.Run(ctx, tr)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d batches, %d events, state %s after %s\n",
		path, len(res.Batches), len(res.Events), res.State, res.Elapsed)
	return nil
}
