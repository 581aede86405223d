package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	logCloser io.Closer
	version   = "dev"
	rootCmd   = &cobra.Command{
		Use:   "foodsales",
		Short: "🍽️  Food sales dashboard",
		Long: `foodsales: browse a food-sales dataset by date, city and category.

Load the data from a CSV file, an imported SQLite copy or a Google Sheet,
then explore it in the terminal (view), in a browser (serve) or with
one-off queries (query).`,
		PersistentPreRunE:  initConfig,
		PersistentPostRunE: closeLogging,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/foodsales/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().String("source", "csv", "dataset source (csv, sqlite, sheets)")
	rootCmd.PersistentFlags().String("data", "", "path to the CSV file or SQLite database")
	rootCmd.PersistentFlags().String("db", "", "SQLite database used by import (default: $HOME/.config/foodsales/foodsales.db)")

	bindRootFlags()

	// Add commands
	rootCmd.AddCommand(viewCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(optionsCmd())
	rootCmd.AddCommand(queryCmd())
	rootCmd.AddCommand(dbCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(versionCmd())
}

// bindRootFlags binds the global flags to their viper keys.
func bindRootFlags() {
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("dataset.source", rootCmd.PersistentFlags().Lookup("source"))
	_ = viper.BindPFlag("dataset.path", rootCmd.PersistentFlags().Lookup("data"))
	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := execute(ctx, os.Stderr)
	stop()

	if code != 0 {
		os.Exit(code)
	}
}

// execute runs the root command and reports a failure as one line on stderr.
func execute(ctx context.Context, stderr io.Writer) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, common.UserMessage(err))
		return 1
	}
	return 0
}

func initConfig(cmd *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.Dir())
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables: FOODSALES_DATASET_PATH and so on.
	viper.SetEnvPrefix("FOODSALES")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := setupLogging(cmd); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	slog.Debug("Configuration loaded", "config_file", viper.ConfigFileUsed())
	return nil
}

// setupLogging configures slog. The dashboard owns the terminal, so view
// only logs when a log file is configured.
func setupLogging(cmd *cobra.Command) error {
	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}

	file := config.ExpandPath(viper.GetString("logging.file"))
	if cmd.Name() == "view" && file == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nil
	}

	closer, err := common.SetupLogger(level, viper.GetString("logging.format"), file)
	if err != nil {
		return err
	}
	logCloser = closer
	return nil
}

func closeLogging(_ *cobra.Command, _ []string) error {
	if logCloser == nil {
		return nil
	}
	return logCloser.Close()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "foodsales %s\n", version)
		},
	}
}
