package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/foodsales/internal/cli"
	"github.com/Veraticus/foodsales/internal/config"
	"github.com/Veraticus/foodsales/internal/tui"
	"github.com/Veraticus/foodsales/internal/tui/themes"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func viewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the dataset in an interactive terminal dashboard",
		Long: `Open the food-sales dashboard in the terminal.

In live mode the table follows every filter change. In search mode the
table stays hidden until you choose a date range and press Enter; after
that it follows every change.`,
		RunE: runView,
	}

	cmd.Flags().String("mode", "live", "filter mode (live, search)")
	cmd.Flags().String("theme", "default", "color theme ("+strings.Join(themes.Names(), ", ")+")")

	cmd.Flags().String("record", "", "write every dashboard update to this directory for debugging")
	_ = viper.BindPFlag("view.theme", cmd.Flags().Lookup("theme"))
	_ = viper.BindPFlag("view.record", cmd.Flags().Lookup("record"))

	return cmd
}

func runView(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	mode, err := viewMode(cmd)
	if err != nil {
		return err
	}

	loader, closeFn, err := openLoader(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeFn(); closeErr != nil {
			slog.Warn("Failed to close dataset", "error", closeErr)
		}
	}()

	opts := []tui.Option{
		tui.WithLoader(loader),
		tui.WithMode(mode),
		tui.WithTheme(themes.GetTheme(viper.GetString("view.theme"))),
	}

	if dir := config.ExpandPath(viper.GetString("view.record")); dir != "" {
		recorder, err := tui.NewRecorder(dir)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := recorder.Close(); closeErr != nil {
				slog.Warn("Failed to close recorder", "error", closeErr)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatInfo(fmt.Sprintf("Recorded %d frames to %s", recorder.Frames(), recorder.Dir())))
		}()
		opts = append(opts, tui.WithRecorder(recorder))
	}

	slog.Info("Starting dashboard", "mode", mode, "theme", viper.GetString("view.theme"))

	return tui.Run(ctx, opts...)
}
