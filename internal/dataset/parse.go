package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/model"
	"github.com/shopspring/decimal"
)

type column int

const (
	colID column = iota
	colDate
	colRegion
	colCity
	colCategory
	colProduct
	colQuantity
	colUnitPrice
	colTotalPrice
	columnCount
)

var headerAliases = map[string]column{
	"id":         colID,
	"orderid":    colID,
	"date":       colDate,
	"orderdate":  colDate,
	"region":     colRegion,
	"city":       colCity,
	"category":   colCategory,
	"product":    colProduct,
	"qty":        colQuantity,
	"quantity":   colQuantity,
	"unitprice":  colUnitPrice,
	"totalprice": colTotalPrice,
}

var dateLayouts = []string{"2006-01-02", "1/2/2006", "2006/01/02"}

// schema maps each known column to its index in a source row.
type schema [columnCount]int

func normaliseHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// newSchema resolves header names to column positions. Every column is
// required.
func newSchema(header []string) (schema, error) {
	var s schema
	for i := range s {
		s[i] = -1
	}

	for i, h := range header {
		if col, ok := headerAliases[normaliseHeader(h)]; ok && s[col] == -1 {
			s[col] = i
		}
	}

	var missing []string
	for col, idx := range s {
		if idx == -1 {
			missing = append(missing, model.Columns[col])
		}
	}
	if len(missing) > 0 {
		return s, fmt.Errorf("%w: %s", common.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return s, nil
}

func (s schema) field(row []string, col column) string {
	idx := s[col]
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRecord converts one source row. line is used in error messages.
func (s schema) parseRecord(row []string, line int) (model.Record, error) {
	rowErr := func(format string, args ...any) error {
		return fmt.Errorf("%w: line %d: %s", common.ErrMalformedRow, line, fmt.Sprintf(format, args...))
	}

	d, err := ParseDate(s.field(row, colDate))
	if err != nil {
		return model.Record{}, rowErr("%v", err)
	}

	qtyText := strings.ReplaceAll(s.field(row, colQuantity), ",", "")
	qty, err := strconv.Atoi(qtyText)
	if err != nil {
		return model.Record{}, rowErr("invalid quantity %q", qtyText)
	}

	unit, err := parseMoney(s.field(row, colUnitPrice))
	if err != nil {
		return model.Record{}, rowErr("invalid unit price: %v", err)
	}

	total, err := parseMoney(s.field(row, colTotalPrice))
	if err != nil {
		return model.Record{}, rowErr("invalid total price: %v", err)
	}

	rec := model.Record{
		ID:         s.field(row, colID),
		Date:       d,
		Region:     s.field(row, colRegion),
		City:       s.field(row, colCity),
		Category:   s.field(row, colCategory),
		Product:    s.field(row, colProduct),
		Quantity:   qty,
		UnitPrice:  unit,
		TotalPrice: total,
	}
	if err := rec.Validate(); err != nil {
		return model.Record{}, rowErr("%v", err)
	}
	return rec, nil
}

// ParseDate accepts ISO dates and the US month/day/year form used by the
// sample dataset.
func ParseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("invalid date %q", s)
}

func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	return decimal.NewFromString(s)
}

// parseRows builds a table from a header row followed by data rows.
// firstLine is the 1-based source line of the header.
func parseRows(header []string, rows [][]string, firstLine int) (model.Table, error) {
	s, err := newSchema(header)
	if err != nil {
		return model.Table{}, err
	}

	records := make([]model.Record, 0, len(rows))
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		rec, err := s.parseRecord(row, firstLine+i+1)
		if err != nil {
			return model.Table{}, err
		}
		records = append(records, rec)
	}

	return model.NewTable(records)
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
