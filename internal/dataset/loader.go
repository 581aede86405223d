// Package dataset loads food-sales tables from CSV files, an imported SQLite
// copy, or a Google Sheets range.
package dataset

import (
	"context"
	"fmt"
	"sync"

	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/model"
)

// Loader produces the session table.
type Loader interface {
	Load(ctx context.Context) (model.Table, error)
}

// LoadError reports that a source could not produce a table.
type LoadError struct {
	Err    error
	Source string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%v from %s: %v", common.ErrLoad, e.Source, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{common.ErrLoad, e.Err}
}

func loadError(source string, err error) error {
	return &LoadError{Source: source, Err: err}
}

// SourceKind names a dataset backend.
type SourceKind string

// Supported sources.
const (
	SourceCSV    SourceKind = "csv"
	SourceSQLite SourceKind = "sqlite"
	SourceSheets SourceKind = "sheets"
)

// Source describes where the session table comes from.
type Source struct {
	Sheets *SheetsConfig
	Kind   SourceKind
	Path   string // CSV file or SQLite database
}

// Open returns the loader for src. The returned closer must be called when
// the loader is no longer needed.
func Open(ctx context.Context, src Source) (Loader, func() error, error) {
	noop := func() error { return nil }

	switch src.Kind {
	case "", SourceCSV:
		if src.Path == "" {
			return nil, nil, fmt.Errorf("%w: dataset.path is required for csv sources", common.ErrMissingConfig)
		}
		return NewCSVLoader(src.Path), noop, nil

	case SourceSQLite:
		store, err := NewSQLiteStore(src.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return store, store.Close, nil

	case SourceSheets:
		if src.Sheets == nil {
			return nil, nil, fmt.Errorf("%w: sheets configuration", common.ErrMissingConfig)
		}
		loader, err := NewSheetsLoader(ctx, *src.Sheets)
		if err != nil {
			return nil, nil, err
		}
		return loader, noop, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown dataset source %q", common.ErrInvalidConfig, src.Kind)
	}
}

// CachedLoader memoises the first successful load for the lifetime of the
// process. Failed loads are not cached.
type CachedLoader struct {
	next  Loader
	table model.Table
	mu    sync.Mutex
	done  bool
}

// NewCachedLoader wraps next.
func NewCachedLoader(next Loader) *CachedLoader {
	return &CachedLoader{next: next}
}

// Load returns the cached table, loading it on first use.
func (c *CachedLoader) Load(ctx context.Context) (model.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return c.table, nil
	}

	table, err := c.next.Load(ctx)
	if err != nil {
		return model.Table{}, err
	}

	c.table = table
	c.done = true
	return table, nil
}
