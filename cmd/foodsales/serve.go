package main

import (
	"log/slog"
	"time"

	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/web"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long: `Serve the food-sales dashboard in the browser.

The dataset is loaded once at startup. Every browser gets its own filter
session; a failed load is reported on every page.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("mode", "live", "filter mode (live, search)")
	cmd.Flags().Duration("session-ttl", 30*time.Minute, "idle time before a browser session is discarded")

	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.session_ttl", cmd.Flags().Lookup("session-ttl"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	mode, err := viewMode(cmd)
	if err != nil {
		return err
	}

	data, loadErr := loadTable(ctx)
	if loadErr != nil {
		common.LogError(loadErr, "Dataset failed to load", common.Fields{"command": cmd.Name()})
	} else {
		common.LogInfo("Dataset loaded", common.Fields{"records": data.Len()})
	}

	server := web.NewServer(web.Config{
		Logger:     slog.Default(),
		Addr:       viper.GetString("server.addr"),
		Mode:       mode,
		SessionTTL: viper.GetDuration("server.session_ttl"),
	}, data, loadErr)

	return server.Start(ctx)
}
