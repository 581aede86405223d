package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/foodsales/internal/filter"
	"github.com/Veraticus/foodsales/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRecords(t *testing.T) {
	records := []model.Record{
		{
			ID:         "10001",
			Date:       civil.Date{Year: 2020, Month: time.January, Day: 1},
			Region:     "East",
			City:       "Boston",
			Category:   "Bars",
			Product:    "Carrot",
			Quantity:   33,
			UnitPrice:  decimal.RequireFromString("1.77"),
			TotalPrice: decimal.RequireFromString("58.41"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, col := range model.Headers {
		assert.Contains(t, lines[0], col)
	}
	assert.Equal(t, []string{"10001", "2020-01-01", "East", "Boston", "Bars", "Carrot", "33", "$1.77", "$58.41"}, strings.Fields(lines[1]))
}

func TestWriteRecords_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, nil))
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 1)
}

func TestWriteOptions(t *testing.T) {
	opts := filter.Options{
		Dates:      []civil.Date{{Year: 2020, Month: time.January, Day: 1}},
		Cities:     []string{"Austin", "Boston"},
		Categories: []string{"Bars"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOptions(&buf, opts))

	out := buf.String()
	assert.Contains(t, out, "All Dates, 2020-01-01")
	assert.Contains(t, out, "All Cities, Austin, Boston")
	assert.Contains(t, out, "All Categories, Bars")
}
