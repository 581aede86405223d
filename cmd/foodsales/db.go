package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/foodsales/internal/cli"
	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/config"
	"github.com/Veraticus/foodsales/internal/dataset"
	"github.com/spf13/cobra"
)

func dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the imported SQLite dataset",
	}
	cmd.AddCommand(dbStatusCmd())
	cmd.AddCommand(dbClearCmd())
	return cmd
}

func dbStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the schema version and the last import",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			dbPath := config.DatabasePath()

			store, closeStore, err := openStore(cmd, dbPath)
			if err != nil {
				return err
			}
			defer closeStore()

			version, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			count, err := store.Count(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("Database status"))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Database\t%s\n", dbPath)
			fmt.Fprintf(w, "Schema version\t%d of %d\n", version, dataset.ExpectedSchemaVersion)
			fmt.Fprintf(w, "Records\t%d\n", count)

			info, err := store.LastImport(ctx)
			switch {
			case errors.Is(err, common.ErrNotFound):
				fmt.Fprintf(w, "Last import\tnever\n")
			case err != nil:
				return err
			default:
				fmt.Fprintf(w, "Last import\t%s (%d records, %s)\n",
					info.Source, info.Records, info.ImportedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func dbClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every imported record",
		Long: `Remove all records from the SQLite store. Source CSV files are not
touched; import them again to restore the data.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			store, closeStore, err := openStore(cmd, config.DatabasePath())
			if err != nil {
				return err
			}
			defer closeStore()

			count, err := store.Count(ctx)
			if err != nil {
				return err
			}
			if count == 0 {
				fmt.Fprintln(out, "No records stored. Nothing to clear.")
				return nil
			}

			force, _ := cmd.Flags().GetBool("force")
			if !force && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("This will delete %d imported records.", count)) {
				fmt.Fprintln(out, "Clear canceled.")
				return nil
			}

			if err := store.Clear(ctx); err != nil {
				return err
			}
			slog.Info("Cleared imported records", "count", count)
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %d records", count)))
			return nil
		},
	}

	cmd.Flags().BoolP("force", "f", false, "skip confirmation prompt")
	return cmd
}

func openStore(cmd *cobra.Command, dbPath string) (*dataset.SQLiteStore, func(), error) {
	store, err := dataset.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(cmd.Context()); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}, nil
}

// confirm asks a yes/no question; anything but y or yes is no.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s\nAre you sure you want to continue? [y/N]: ", prompt)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
