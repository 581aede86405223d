package filter

import (
	"cmp"
	"slices"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/foodsales/internal/model"
)

// Options holds the selectable values for each filter dimension.
// Every slice is distinct and ascending.
type Options struct {
	Dates      []civil.Date
	Cities     []string
	Categories []string
}

// DeriveOptions computes the option sets from the full, unfiltered table.
func DeriveOptions(t model.Table) Options {
	return Options{
		Dates:      DistinctDates(t),
		Cities:     DistinctCities(t),
		Categories: DistinctCategories(t),
	}
}

// DistinctCities returns every city in t once, ascending.
func DistinctCities(t model.Table) []string {
	return distinct(t, func(r model.Record) string { return r.City }, cmp.Compare[string])
}

// DistinctCategories returns every category in t once, ascending.
func DistinctCategories(t model.Table) []string {
	return distinct(t, func(r model.Record) string { return r.Category }, cmp.Compare[string])
}

// DistinctDates returns every calendar date in t once, ascending.
func DistinctDates(t model.Table) []civil.Date {
	return distinct(t, func(r model.Record) civil.Date { return r.Date }, compareDates)
}

// Bounds returns the earliest and latest dates in t. ok is false for an
// empty table.
func Bounds(t model.Table) (first, last civil.Date, ok bool) {
	dates := DistinctDates(t)
	if len(dates) == 0 {
		return civil.Date{}, civil.Date{}, false
	}
	return dates[0], dates[len(dates)-1], true
}

// Contains reports whether the selection only uses values present in o.
func (o Options) Contains(sel Selection) bool {
	if d, ok := sel.Date.Value(); ok && !slices.ContainsFunc(o.Dates, func(x civil.Date) bool { return x == d }) {
		return false
	}
	if c, ok := sel.City.Value(); ok && !slices.Contains(o.Cities, c) {
		return false
	}
	if c, ok := sel.Category.Value(); ok && !slices.Contains(o.Categories, c) {
		return false
	}
	return true
}

func distinct[T comparable](t model.Table, field func(model.Record) T, compare func(a, b T) int) []T {
	seen := make(map[T]struct{})
	out := make([]T, 0)
	t.Each(func(r model.Record) {
		v := field(r)
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	})
	slices.SortFunc(out, compare)
	return out
}

func compareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}
