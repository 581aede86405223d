package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/model"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"
)

// SQLiteStore keeps an imported copy of a dataset in SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// ImportInfo describes the most recent import into a store.
type ImportInfo struct {
	ImportedAt time.Time
	Source     string
	Records    int
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
// Use ":memory:" for a throwaway store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("%w: database path", common.ErrMissingConfig)
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections, and :memory: needs one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRecords appends records after any already stored, in one transaction.
// progress, when non-nil, is called after each inserted record.
func (s *SQLiteStore) SaveRecords(ctx context.Context, source string, records []model.Record, progress func()) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM sales`).Scan(&next); err != nil {
		return fmt.Errorf("failed to read next position: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales (
			id, position, date, region, city, category, product,
			quantity, unit_price, total_price
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
		_, err = stmt.ExecContext(ctx,
			r.ID,
			next+i,
			r.Date.String(),
			r.Region,
			r.City,
			r.Category,
			r.Product,
			r.Quantity,
			r.UnitPrice.String(),
			r.TotalPrice.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %s: %w", r.ID, err)
		}
		if progress != nil {
			progress()
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (source, records) VALUES (?, ?)`, source, len(records)); err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}

	return tx.Commit()
}

// Clear removes every stored record.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sales`); err != nil {
		return fmt.Errorf("failed to clear sales: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sales: %w", err)
	}
	return n, nil
}

// LastImport returns metadata for the most recent import, or
// common.ErrNotFound when nothing has been imported.
func (s *SQLiteStore) LastImport(ctx context.Context) (ImportInfo, error) {
	var info ImportInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT source, records, imported_at FROM imports
		ORDER BY id DESC LIMIT 1
	`).Scan(&info.Source, &info.Records, &info.ImportedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ImportInfo{}, common.ErrNotFound
	}
	if err != nil {
		return ImportInfo{}, fmt.Errorf("failed to read import history: %w", err)
	}
	return info, nil
}

// Load reads every stored record in import order.
func (s *SQLiteStore) Load(ctx context.Context) (model.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, region, city, category, product, quantity, unit_price, total_price
		FROM sales ORDER BY position
	`)
	if err != nil {
		return model.Table{}, loadError(s.dbPath, fmt.Errorf("failed to query sales: %w", err))
	}
	defer func() { _ = rows.Close() }()

	var records []model.Record
	for rows.Next() {
		var (
			r                  model.Record
			dateText           string
			unitText, totalTxt string
		)
		if err := rows.Scan(&r.ID, &dateText, &r.Region, &r.City, &r.Category, &r.Product,
			&r.Quantity, &unitText, &totalTxt); err != nil {
			return model.Table{}, loadError(s.dbPath, fmt.Errorf("failed to scan sale: %w", err))
		}

		if r.Date, err = civil.ParseDate(dateText); err != nil {
			return model.Table{}, loadError(s.dbPath, fmt.Errorf("%w: sale %s date %q", common.ErrDatabaseCorrupted, r.ID, dateText))
		}
		if r.UnitPrice, err = decimal.NewFromString(unitText); err != nil {
			return model.Table{}, loadError(s.dbPath, fmt.Errorf("%w: sale %s unit price %q", common.ErrDatabaseCorrupted, r.ID, unitText))
		}
		if r.TotalPrice, err = decimal.NewFromString(totalTxt); err != nil {
			return model.Table{}, loadError(s.dbPath, fmt.Errorf("%w: sale %s total price %q", common.ErrDatabaseCorrupted, r.ID, totalTxt))
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return model.Table{}, loadError(s.dbPath, fmt.Errorf("failed to iterate sales: %w", err))
	}

	table, err := model.NewTable(records)
	if err != nil {
		return model.Table{}, loadError(s.dbPath, err)
	}
	return table, nil
}
