package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/Veraticus/foodsales/internal/cli"
	"github.com/Veraticus/foodsales/internal/config"
	"github.com/Veraticus/foodsales/internal/dataset"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external data sources",
	}
	cmd.AddCommand(authSheetsCmd())
	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize read-only access to Google Sheets",
		Long: `Authorize foodsales to read your Google Sheets using OAuth2.

This opens your browser, waits for the redirect, and saves the refresh token
to your config file as sheets.refresh_token. Run it once before using
--source sheets without a service account.`,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 client secret (overrides config)")
	cmd.Flags().String("callback", "localhost:8085", "address for the OAuth2 redirect listener")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	clientID := firstNonEmpty(flagString(cmd, "client-id"), viper.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
	clientSecret := firstNonEmpty(flagString(cmd, "client-secret"), viper.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found: set sheets.client_id and sheets.client_secret or pass --client-id and --client-secret")
	}

	token, err := dataset.AuthorizeSheets(cmd.Context(), dataset.SheetsAuthConfig{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		CallbackAddr: flagString(cmd, "callback"),
	}, func(url string) {
		fmt.Fprintln(out, cli.FormatInfo("Visit this URL to authorize access:"))
		fmt.Fprintln(out, url)
		openBrowser(url)
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	viper.Set("sheets.client_id", clientID)
	viper.Set("sheets.client_secret", clientSecret)
	viper.Set("sheets.refresh_token", token.RefreshToken)

	path, err := saveConfig()
	if err != nil {
		slog.Warn("Failed to update config file", "error", err)
		fmt.Fprintln(out, cli.FormatWarning("Could not save the refresh token. Add this to your config.yaml:"))
		fmt.Fprintf(out, "sheets:\n  refresh_token: %q\n", token.RefreshToken)
		return nil
	}

	fmt.Fprintln(out, cli.FormatSuccess("Google Sheets authorized; token saved to "+path))
	return nil
}

// saveConfig writes the current settings to the config file in use, or to
// the default location when none was read.
func saveConfig() (string, error) {
	path := viper.ConfigFileUsed()
	if path == "" {
		path = filepath.Join(config.Dir(), "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", err
	}
	return path, viper.WriteConfigAs(path)
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// openBrowser tries to open url in the default browser.
func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start() //nolint:gosec
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start() //nolint:gosec
	case "darwin":
		err = exec.Command("open", url).Start() //nolint:gosec
	}
	if err != nil {
		slog.Debug("Failed to open browser", "error", err)
	}
}
