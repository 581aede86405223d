package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/foodsales/internal/cli"
	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/config"
	"github.com/Veraticus/foodsales/internal/dataset"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <csv>",
		Short: "Copy a CSV dataset into the local SQLite store",
		Long: `Read a food-sales CSV file and store a copy in SQLite so it can be
viewed later with --source sqlite. The source file is never modified.

The whole import runs in one transaction: an interrupted or failed import
leaves the store unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("replace", false, "remove previously imported records first")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := config.ExpandPath(args[0])

	interruptHandler := cli.NewInterruptHandler(out)
	ctx := interruptHandler.HandleInterrupts(cmd.Context(), "Import", "Nothing was written; run the import again.")

	table, err := dataset.NewCSVLoader(path).Load(ctx)
	if err != nil {
		return err
	}

	dbPath := config.DatabasePath()
	store, err := dataset.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Warn("Failed to close database", "error", closeErr)
		}
	}()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	replace, _ := cmd.Flags().GetBool("replace")
	if replace {
		if err := store.Clear(ctx); err != nil {
			return err
		}
		slog.Info("Cleared stored records", "database", dbPath)
	}

	bar := newImportBar(out, table.Len(), filepath.Base(path))
	err = store.SaveRecords(ctx, path, table.Records(), func() { _ = bar.Add(1) })
	if err != nil {
		if interruptHandler.WasInterrupted() {
			return fmt.Errorf("import interrupted: %w", ctx.Err())
		}
		return fmt.Errorf("failed to save records: %w", err)
	}

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}

	common.LogInfo("Import complete", common.Fields{
		"file":     path,
		"records":  table.Len(),
		"database": dbPath,
	})
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d records from %s (%d stored)", table.Len(), filepath.Base(path), total)))
	fmt.Fprintln(out, cli.FormatInfo("View them with: foodsales view --source sqlite --data "+dbPath))
	return nil
}

func newImportBar(w io.Writer, total int, name string) *progressbar.ProgressBar {
	if w == nil {
		w = os.Stdout
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][bold]Importing %s[reset]", name)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}
