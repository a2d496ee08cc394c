package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/ledger"
	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/store"
)

func newSnapshotsCmd() *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Inspect the snapshot database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listSnapshots(cmd, db)
		},
	}
	cmd.PersistentFlags().StringVar(&db, "db", "", "SQLite snapshot database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(&cobra.Command{
		Use:   "rm WIDGET...",
		Short: "Forget delivered events for widgets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return removeSnapshots(cmd, db, args)
		},
	})
	return cmd
}

func listSnapshots(cmd *cobra.Command, db string) error {
	st, err := store.NewSQLiteStore(db)
	if err != nil {
		return err
	}
	defer st.Close()

	infos, err := st.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WIDGET\tEVENTS\tUPDATED")
	for _, info := range infos {
		data, err := st.Load(info.WidgetID)
		if err != nil {
			return err
		}
		snap, err := ledger.UnmarshalSnapshot(data)
		if err != nil {
			return fmt.Errorf("widget %s: %w", info.WidgetID, err)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", info.WidgetID, len(snap.Acknowledged), info.UpdatedAt.UTC().Format(time.RFC3339))
	}
	return w.Flush()
}

func removeSnapshots(cmd *cobra.Command, db string, widgets []string) error {
	st, err := store.NewSQLiteStore(db)
	if err != nil {
		return err
	}
	defer st.Close()

	for _, id := range widgets {
		if err := st.Delete(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
	}
	return nil
}
