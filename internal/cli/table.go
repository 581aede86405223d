package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/foodsales/internal/filter"
	"github.com/Veraticus/foodsales/internal/model"
)

// WriteRecords prints records as an aligned table with a styled header.
func WriteRecords(out io.Writer, records []model.Record) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	header := make([]string, len(model.Headers))
	for i, c := range model.Headers {
		header[i] = TableHeaderStyle.Render(c)
	}
	if _, err := fmt.Fprintln(w, strings.Join(header, "\t")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range records {
		if _, err := fmt.Fprintln(w, strings.Join(r.Cells(), "\t")); err != nil {
			return fmt.Errorf("failed to write record %s: %w", r.ID, err)
		}
	}

	return w.Flush()
}

// WriteOptions prints every selectable value per dimension, with the
// "no constraint" entry first as the filter controls show it.
func WriteOptions(out io.Writer, opts filter.Options) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	rows := []struct {
		name   string
		values []string
	}{
		{"Dates", labels(filter.Choices(opts.Dates), filter.AllDates)},
		{"Cities", labels(filter.Choices(opts.Cities), filter.AllCities)},
		{"Categories", labels(filter.Choices(opts.Categories), filter.AllCategories)},
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%s\n",
			TableHeaderStyle.Render(row.name),
			len(row.values)-1,
			strings.Join(row.values, ", ")); err != nil {
			return fmt.Errorf("failed to write %s: %w", strings.ToLower(row.name), err)
		}
	}

	return w.Flush()
}

func labels[T comparable](choices []filter.Constraint[T], all string) []string {
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = c.Label(all)
	}
	return out
}
