package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsConfig holds the settings for reading a dataset from Google Sheets.
type SheetsConfig struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	Range              string // A1 notation, header row first
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultSheetsConfig returns a SheetsConfig with sensible defaults.
func DefaultSheetsConfig() SheetsConfig {
	return SheetsConfig{
		Range:         "Sheet1",
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c SheetsConfig) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("%w: no Google Sheets authentication method configured", common.ErrMissingConfig)
	}
	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("%w: multiple authentication methods configured; use either OAuth2 or service account", common.ErrInvalidConfig)
	}
	if c.SpreadsheetID == "" {
		return fmt.Errorf("%w: spreadsheet id", common.ErrMissingConfig)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts cannot be negative", common.ErrInvalidConfig)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}

// rangeReader fetches cell values for an A1 range.
type rangeReader interface {
	ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]any, error)
}

// SheetsLoader reads the dataset from a spreadsheet range.
type SheetsLoader struct {
	reader rangeReader
	config SheetsConfig
}

// NewSheetsLoader authenticates against the Sheets API.
func NewSheetsLoader(ctx context.Context, config SheetsConfig) (*SheetsLoader, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsLoader{config: config, reader: apiReader{srv: srv}}, nil
}

// Load fetches the configured range and parses it like a CSV file.
func (l *SheetsLoader) Load(ctx context.Context) (model.Table, error) {
	source := fmt.Sprintf("sheets:%s!%s", l.config.SpreadsheetID, l.config.Range)

	var values [][]any
	err := common.WithRetry(ctx, func() error {
		var readErr error
		values, readErr = l.reader.ReadRange(ctx, l.config.SpreadsheetID, l.config.Range)
		return readErr
	}, common.RetryOptions{
		MaxAttempts:  l.config.RetryAttempts,
		InitialDelay: l.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	})
	if err != nil {
		return model.Table{}, loadError(source, err)
	}

	if len(values) == 0 {
		return model.Table{}, loadError(source, common.ErrEmptyDataset)
	}

	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = fmt.Sprint(cell)
		}
	}

	table, err := parseRows(rows[0], rows[1:], 1)
	if err != nil {
		return model.Table{}, loadError(source, err)
	}

	slog.Debug("Loaded dataset from Google Sheets", "spreadsheet", l.config.SpreadsheetID, "records", table.Len())
	return table, nil
}

type apiReader struct {
	srv *sheets.Service
}

func (r apiReader) ReadRange(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
	resp, err := r.srv.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifySheetsError(err)
	}
	return resp.Values, nil
}

// classifySheetsError marks throttling and server failures as retryable.
func classifySheetsError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", common.ErrSheetsUnavailable, err)
	default:
		return err
	}
}

func createSheetsService(ctx context.Context, config SheetsConfig) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsReadonlyScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}
