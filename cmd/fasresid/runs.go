package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/residuals.report/internal/store"
)

// openArchive opens an existing archive. Unlike compute --db it never
// creates one, so a mistyped path is reported instead of silently
// producing an empty database.
func openArchive(path string) (*store.DB, error) {
	if path == "" {
		return nil, errors.New("--db is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return db, nil
}

func newRunsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect runs archived with compute --db",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite archive written by compute --db")

	list := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openArchive(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range runs {
				fmt.Fprintf(w, "%s  %s  %-6s %4d records  %3d freqs  %s\n",
					r.ID, r.CreatedAt.Format(time.RFC3339), r.Model, r.Records, r.Frequencies, r.Input)
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print a run's settings and its residuals as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openArchive(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			run, err := db.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cells, err := db.Residuals(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			writeRun(cmd.OutOrStdout(), run, cells)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <run-id>",
		Short: "Remove a run and its residuals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openArchive(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, show, del, newMigrateCmd(&dbPath))
	return cmd
}

// writeRun prints run metadata as "# key: value" lines followed by the
// residual cells in long form. Undefined residuals are empty.
func writeRun(w io.Writer, run store.Run, cells []store.Residual) {
	fmt.Fprintf(w, "# id: %s\n", run.ID)
	fmt.Fprintf(w, "# created: %s\n", run.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "# input: %s\n", run.Input)
	fmt.Fprintf(w, "# output: %s\n", run.Output)
	fmt.Fprintf(w, "# model: %s region=%s vs_source=%s mechanism_from_sof=%t min_amp=%g\n",
		run.Model, run.Region, run.VsSource, run.MechanismFromSOF, run.MinAmp)
	fmt.Fprintf(w, "# version: %s\n", run.Version)
	fmt.Fprintln(w, "row,freq_hz,resid")
	for _, c := range cells {
		fmt.Fprintf(w, "%d,%s,%s\n", c.RowIndex, strconv.FormatFloat(c.Freq, 'g', -1, 64), c.Value)
	}
}

func newMigrateCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect or roll back the archive schema",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openArchive(*dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			return printSchemaVersion(cmd.OutOrStdout(), db)
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent schema migration",
		Long: `down rolls back one migration. Rolling back the initial migration drops
every archived run. The next command that opens the archive migrates it up
again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openArchive(*dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.MigrateDown(); err != nil {
				return err
			}
			return printSchemaVersion(cmd.OutOrStdout(), db)
		},
	}

	cmd.AddCommand(status, down)
	return cmd
}

func printSchemaVersion(w io.Writer, db *store.DB) error {
	v, dirty, err := db.MigrateVersion()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	fmt.Fprintf(w, "schema version %d (dirty: %t)\n", v, dirty)
	return nil
}
