package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Columns lists the dataset header in display order.
var Columns = []string{"ID", "Date", "Region", "City", "Category", "Product", "Qty", "UnitPrice", "TotalPrice"}

// Headers are the column titles shown by every front end, in Columns order.
var Headers = []string{"ID", "Date", "Region", "City", "Category", "Product", "Qty", "Unit Price ($)", "Total Price ($)"}

// FormatMoney renders an amount as dollars with two decimals.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Cells returns the record's display values in Columns order.
func (r Record) Cells() []string {
	return []string{
		r.ID,
		r.Date.String(),
		r.Region,
		r.City,
		r.Category,
		r.Product,
		strconv.Itoa(r.Quantity),
		FormatMoney(r.UnitPrice),
		FormatMoney(r.TotalPrice),
	}
}
