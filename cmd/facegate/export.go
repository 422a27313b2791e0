package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mereles/facegate/internal/config"
	"github.com/mereles/facegate/internal/db"
	"github.com/mereles/facegate/internal/facegate/export"
	"github.com/mereles/facegate/internal/facegate/store"
	"github.com/mereles/facegate/internal/facegate/store/sqlite"
	"github.com/mereles/facegate/internal/facegate/types"
)

var exportFlags struct {
	out     string
	from    string
	to      string
	outcome string
	limit   int
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the audit log as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context())
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.out, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFlags.from, "from", "", "start date, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportFlags.to, "to", "", "end date, YYYY-MM-DD (inclusive)")
	exportCmd.Flags().StringVar(&exportFlags.outcome, "outcome", "", "filter by outcome: admitted or denied")
	exportCmd.Flags().IntVar(&exportFlags.limit, "limit", 0, "maximum number of rows (0 = store default)")
}

func runExport(ctx context.Context) error {
	cfg := config.FromEnv()

	var filter store.EventFilter
	var err error
	if filter.From, err = parseExportDate(exportFlags.from, false); err != nil {
		return err
	}
	if filter.To, err = parseExportDate(exportFlags.to, true); err != nil {
		return err
	}
	if exportFlags.outcome != "" {
		outcome := types.Outcome(exportFlags.outcome)
		if !outcome.Valid() {
			return fmt.Errorf("outcome must be %q or %q", types.OutcomeAdmitted, types.OutcomeDenied)
		}
		filter.Outcome = &outcome
	}
	if exportFlags.limit > 0 {
		filter.Limit = exportFlags.limit
	}

	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		return err
	}
	defer conn.Close()

	writer := db.NewWorker(conn)
	defer writer.Close()

	eventStore := sqlite.NewAccessEventStore(conn, writer)
	rows, err := eventStore.Query(ctx, filter)
	if err != nil {
		return err
	}

	out := os.Stdout
	if exportFlags.out != "" {
		f, err := os.Create(exportFlags.out)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteCSV(out, rows); err != nil {
		return err
	}
	if exportFlags.out != "" {
		fmt.Printf("exported %d events to %s\n", len(rows), exportFlags.out)
	}
	return nil
}

func parseExportDate(v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("dates must be YYYY-MM-DD: %q", v)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	t = t.UTC()
	return &t, nil
}
