package filter

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/foodsales/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func rec(id string, d civil.Date, city, category string) model.Record {
	return model.Record{
		ID:         id,
		Date:       d,
		Region:     "East",
		City:       city,
		Category:   category,
		Product:    "Carrot",
		Quantity:   3,
		UnitPrice:  decimal.RequireFromString("1.77"),
		TotalPrice: decimal.RequireFromString("5.31"),
	}
}

func sampleTable(t *testing.T) model.Table {
	t.Helper()
	table, err := model.NewTable([]model.Record{
		rec("1", date(2020, 1, 1), "Boston", "Bars"),
		rec("2", date(2020, 1, 4), "Los Angeles", "Cookies"),
		rec("3", date(2020, 1, 1), "New York", "Bars"),
		rec("4", date(2020, 1, 7), "Boston", "Crackers"),
		rec("5", date(2020, 1, 4), "San Diego", "Cookies"),
		rec("6", date(2020, 1, 10), "Boston", "Cookies"),
	})
	require.NoError(t, err)
	return table
}

func ids(records []model.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestDeriveOptions(t *testing.T) {
	opts := DeriveOptions(sampleTable(t))

	assert.Equal(t, []string{"Boston", "Los Angeles", "New York", "San Diego"}, opts.Cities)
	assert.Equal(t, []string{"Bars", "Cookies", "Crackers"}, opts.Categories)
	assert.Equal(t, []civil.Date{
		date(2020, 1, 1), date(2020, 1, 4), date(2020, 1, 7), date(2020, 1, 10),
	}, opts.Dates)
}

func TestDeriveOptions_DatesSortChronologically(t *testing.T) {
	// 2019-12-31 sorts before 2020-01-01 even though "12" > "01" textually.
	table, err := model.NewTable([]model.Record{
		rec("a", date(2020, 1, 1), "Boston", "Bars"),
		rec("b", date(2019, 12, 31), "Boston", "Bars"),
		rec("c", date(2020, 10, 2), "Boston", "Bars"),
		rec("d", date(2020, 2, 9), "Boston", "Bars"),
	})
	require.NoError(t, err)

	assert.Equal(t, []civil.Date{
		date(2019, 12, 31), date(2020, 1, 1), date(2020, 2, 9), date(2020, 10, 2),
	}, DistinctDates(table))
}

func TestDeriveOptions_EmptyTable(t *testing.T) {
	opts := DeriveOptions(model.Table{})

	assert.Empty(t, opts.Dates)
	assert.Empty(t, opts.Cities)
	assert.Empty(t, opts.Categories)

	_, _, ok := Bounds(model.Table{})
	assert.False(t, ok)
}

func TestChoices_SentinelFirstAndComplete(t *testing.T) {
	table := sampleTable(t)
	cities := DistinctCities(table)
	choices := Choices(cities)

	require.Len(t, choices, len(cities)+1)
	assert.False(t, choices[0].IsSet())
	assert.Equal(t, "All Cities", choices[0].Label("All Cities"))

	seen := map[string]int{}
	for _, c := range choices[1:] {
		v, ok := c.Value()
		require.True(t, ok)
		seen[v]++
	}
	table.Each(func(r model.Record) {
		assert.Equal(t, 1, seen[r.City], "city %s should appear exactly once", r.City)
	})
}

func TestChoices_RealValueNamedLikeSentinel(t *testing.T) {
	table, err := model.NewTable([]model.Record{
		rec("1", date(2020, 1, 1), "All Cities", "Bars"),
		rec("2", date(2020, 1, 1), "Boston", "Bars"),
	})
	require.NoError(t, err)

	rows, err := Apply(table, Selection{City: Constrained("All Cities")})
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(rows))

	rows, err = Apply(table, Selection{City: Unconstrained[string]()})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(rows))
}

func TestApply(t *testing.T) {
	table := sampleTable(t)

	tests := []struct {
		name string
		sel  Selection
		want []string
	}{
		{
			name: "all unconstrained returns the whole table",
			sel:  Selection{},
			want: []string{"1", "2", "3", "4", "5", "6"},
		},
		{
			name: "city only",
			sel:  Selection{City: Constrained("Boston")},
			want: []string{"1", "4", "6"},
		},
		{
			name: "category only",
			sel:  Selection{Category: Constrained("Cookies")},
			want: []string{"2", "5", "6"},
		},
		{
			name: "exact date only",
			sel:  Selection{Date: Constrained(date(2020, 1, 4))},
			want: []string{"2", "5"},
		},
		{
			name: "city and category are combined with AND",
			sel:  Selection{City: Constrained("Boston"), Category: Constrained("Cookies")},
			want: []string{"6"},
		},
		{
			name: "all three dimensions",
			sel: Selection{
				Date:     Constrained(date(2020, 1, 1)),
				City:     Constrained("New York"),
				Category: Constrained("Bars"),
			},
			want: []string{"3"},
		},
		{
			name: "no match is an empty result",
			sel:  Selection{City: Constrained("San Diego"), Category: Constrained("Bars")},
			want: []string{},
		},
		{
			name: "range is inclusive on both ends",
			sel:  Selection{Range: &DateRange{Start: date(2020, 1, 4), End: date(2020, 1, 7)}},
			want: []string{"2", "4", "5"},
		},
		{
			name: "range combined with city",
			sel: Selection{
				Range: &DateRange{Start: date(2020, 1, 1), End: date(2020, 1, 7)},
				City:  Constrained("Boston"),
			},
			want: []string{"1", "4"},
		},
		{
			name: "single-day range",
			sel:  Selection{Range: &DateRange{Start: date(2020, 1, 10), End: date(2020, 1, 10)}},
			want: []string{"6"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Apply(table, tt.sel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(rows))
		})
	}
}

func TestApply_MatchesPredicateDefinition(t *testing.T) {
	table := sampleTable(t)
	opts := DeriveOptions(table)

	for _, city := range Choices(opts.Cities) {
		for _, category := range Choices(opts.Categories) {
			for _, d := range Choices(opts.Dates) {
				sel := Selection{City: city, Category: category, Date: d}
				rows, err := Apply(table, sel)
				require.NoError(t, err)

				// Result is exactly the records satisfying every active
				// predicate, in table order.
				var want []string
				table.Each(func(r model.Record) {
					if city.Matches(r.City) && category.Matches(r.Category) && d.Matches(r.Date) {
						want = append(want, r.ID)
					}
				})
				if want == nil {
					want = []string{}
				}
				assert.Equal(t, want, ids(rows))
			}
		}
	}
}

func TestApply_RangeBoundaries(t *testing.T) {
	start, end := date(2020, 3, 10), date(2020, 3, 20)
	table, err := model.NewTable([]model.Record{
		rec("before", date(2020, 3, 9), "Boston", "Bars"),
		rec("start", start, "Boston", "Bars"),
		rec("end", end, "Boston", "Bars"),
		rec("after", date(2020, 3, 21), "Boston", "Bars"),
	})
	require.NoError(t, err)

	rows, err := Apply(table, Selection{Range: &DateRange{Start: start, End: end}})
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "end"}, ids(rows))
}

func TestApply_RefusesInvertedRange(t *testing.T) {
	rows, err := Apply(sampleTable(t), Selection{
		Range: &DateRange{Start: date(2023, 1, 1), End: date(2020, 1, 1)},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDateRange))
	assert.Nil(t, rows)
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		start   civil.Date
		end     civil.Date
		wantErr bool
	}{
		{name: "ordered", start: date(2018, 1, 1), end: date(2023, 12, 31)},
		{name: "equal", start: date(2020, 5, 1), end: date(2020, 5, 1)},
		{name: "inverted by one day", start: date(2020, 5, 2), end: date(2020, 5, 1), wantErr: true},
		{name: "inverted by years", start: date(2023, 1, 1), end: date(2020, 1, 1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(tt.start, tt.end)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDateRange)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSelection_Check(t *testing.T) {
	opts := DeriveOptions(sampleTable(t))

	assert.NoError(t, Selection{City: Constrained("Boston")}.Check(opts))
	assert.ErrorIs(t, Selection{City: Constrained("Austin")}.Check(opts), ErrUnknownOption)
	assert.ErrorIs(t, Selection{Category: Constrained("Soup")}.Check(opts), ErrUnknownOption)
	assert.ErrorIs(t, Selection{Date: Constrained(date(1999, 1, 1))}.Check(opts), ErrUnknownOption)
	assert.ErrorIs(t, Selection{
		Range: &DateRange{Start: date(2021, 1, 1), End: date(2020, 1, 1)},
	}.Check(opts), ErrInvalidDateRange)
}
