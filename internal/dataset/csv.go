package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/model"
)

// CSVLoader reads a comma-delimited sales file.
type CSVLoader struct {
	path string
}

// NewCSVLoader creates a loader for the file at path.
func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{path: path}
}

// Load reads and parses the file.
func (l *CSVLoader) Load(ctx context.Context) (model.Table, error) {
	if err := ctx.Err(); err != nil {
		return model.Table{}, err
	}

	f, err := os.Open(l.path)
	if err != nil {
		return model.Table{}, loadError(l.path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close dataset", "path", l.path, "error", closeErr)
		}
	}()

	table, err := ReadCSV(f)
	if err != nil {
		return model.Table{}, loadError(l.path, err)
	}

	common.LogDebug("Loaded dataset", common.Fields{"path": l.path, "records": table.Len()})
	return table, nil
}

// ReadCSV parses a header row followed by records from r.
func ReadCSV(r io.Reader) (model.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return model.Table{}, common.ErrEmptyDataset
	}
	if err != nil {
		return model.Table{}, fmt.Errorf("failed to read header: %w", err)
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: %w", common.ErrMalformedRow, err)
	}

	return parseRows(header, rows, 1)
}
