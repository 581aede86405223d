package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/config"
	"github.com/Veraticus/foodsales/internal/dataset"
	"github.com/Veraticus/foodsales/internal/filter"
	"github.com/Veraticus/foodsales/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// openLoader returns the configured dataset loader, memoised for the life of
// the command. The closer releases any database handle.
func openLoader(ctx context.Context) (dataset.Loader, func() error, error) {
	src, err := config.LoadSource()
	if err != nil {
		return nil, nil, err
	}

	loader, closeFn, err := dataset.Open(ctx, src)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s dataset: %w", src.Kind, err)
	}

	slog.Debug("Dataset source configured", "source", src.Kind, "path", src.Path)
	return dataset.NewCachedLoader(loader), closeFn, nil
}

// loadTable opens the configured source and reads it once.
func loadTable(ctx context.Context) (model.Table, error) {
	loader, closeFn, err := openLoader(ctx)
	if err != nil {
		return model.Table{}, err
	}
	defer func() {
		if closeErr := closeFn(); closeErr != nil {
			slog.Warn("Failed to close dataset", "error", closeErr)
		}
	}()

	return loader.Load(ctx)
}

// viewMode reads the command's --mode flag, falling back to view.mode.
// view and serve share the config key, so the flag is not bound to it.
func viewMode(cmd *cobra.Command) (filter.Mode, error) {
	value := viper.GetString("view.mode")
	if flag := cmd.Flags().Lookup("mode"); flag != nil && flag.Changed {
		value = flag.Value.String()
	}

	mode, err := filter.ParseMode(value)
	if err != nil {
		return mode, common.NewUserError(err.Error(), fmt.Errorf("%w: %w", common.ErrInvalidConfig, err))
	}
	return mode, nil
}
