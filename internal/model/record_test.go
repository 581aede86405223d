package model

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() Record {
	return Record{
		ID:         "10001",
		Date:       civil.Date{Year: 2020, Month: time.January, Day: 1},
		Region:     "East",
		City:       "Boston",
		Category:   "Bars",
		Product:    "Carrot",
		Quantity:   33,
		UnitPrice:  decimal.RequireFromString("1.77"),
		TotalPrice: decimal.RequireFromString("58.41"),
	}
}

func TestRecord_Validate(t *testing.T) {
	tests := []struct {
		mutate  func(*Record)
		name    string
		wantErr bool
	}{
		{name: "valid", mutate: func(*Record) {}},
		{name: "missing id", mutate: func(r *Record) { r.ID = "" }, wantErr: true},
		{name: "zero date", mutate: func(r *Record) { r.Date = civil.Date{} }, wantErr: true},
		{name: "missing city", mutate: func(r *Record) { r.City = "" }, wantErr: true},
		{name: "missing category", mutate: func(r *Record) { r.Category = "" }, wantErr: true},
		{name: "negative quantity", mutate: func(r *Record) { r.Quantity = -1 }, wantErr: true},
		{name: "negative price", mutate: func(r *Record) { r.UnitPrice = decimal.NewFromInt(-1) }, wantErr: true},
		{name: "zero quantity", mutate: func(r *Record) { r.Quantity = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRecord)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRecord_Cells(t *testing.T) {
	r := validRecord()
	r.TotalPrice = decimal.RequireFromString("58.4")

	cells := r.Cells()
	require.Len(t, cells, len(Columns))
	assert.Equal(t, []string{"10001", "2020-01-01", "East", "Boston", "Bars", "Carrot", "33", "$1.77", "$58.40"}, cells)
}

func TestNewTable(t *testing.T) {
	a := validRecord()
	b := validRecord()
	b.ID = "10002"

	input := []Record{a, b}
	table, err := NewTable(input)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	input[0].City = "Changed"
	assert.Equal(t, "Boston", table.At(0).City, "table keeps its own copy")

	out := table.Records()
	out[1].City = "Changed"
	assert.Equal(t, "Boston", table.At(1).City)

	_, err = NewTable([]Record{a, a})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}
