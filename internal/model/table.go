package model

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord indicates a row that cannot be part of a Table.
var ErrInvalidRecord = errors.New("invalid record")

// Table is an ordered, read-only sequence of records.
// It is built once per session and never mutated afterwards.
type Table struct {
	records []Record
}

// NewTable validates the records and wraps a private copy of them.
func NewTable(records []Record) (Table, error) {
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return Table{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		if _, dup := seen[r.ID]; dup {
			return Table{}, fmt.Errorf("row %d: %w: duplicate id %s", i+1, ErrInvalidRecord, r.ID)
		}
		seen[r.ID] = struct{}{}
	}

	owned := make([]Record, len(records))
	copy(owned, records)
	return Table{records: owned}, nil
}

// Len returns the number of records.
func (t Table) Len() int {
	return len(t.records)
}

// At returns the record at index i.
func (t Table) At(i int) Record {
	return t.records[i]
}

// Records returns a copy of all records in source order.
func (t Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Each calls fn for every record in order.
func (t Table) Each(fn func(Record)) {
	for _, r := range t.records {
		fn(r)
	}
}
