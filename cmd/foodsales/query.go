package main

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/foodsales/internal/cli"
	"github.com/Veraticus/foodsales/internal/common"
	"github.com/Veraticus/foodsales/internal/dataset"
	"github.com/Veraticus/foodsales/internal/filter"
	"github.com/Veraticus/foodsales/internal/model"
	"github.com/spf13/cobra"
)

// queryFlags holds the raw filter flags; empty means unconstrained.
type queryFlags struct {
	date     string
	start    string
	end      string
	city     string
	category string
}

func queryCmd() *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the records matching a filter",
		Long: `Filter the dataset without the dashboard and print the matching rows.

--start and --end select an inclusive date range; a missing end of the
range defaults to the first or last date in the dataset. --date, --city
and --category must name a value that exists in the dataset.`,
		Example: `  foodsales query --city Boston
  foodsales query --start 2020-01-01 --end 2020-03-31 --category Bars`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.date, "date", "", "exact date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.start, "start", "", "range start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.end, "end", "", "range end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flags.city, "city", "", "city name")
	cmd.Flags().StringVar(&flags.category, "category", "", "product category")

	return cmd
}

func runQuery(cmd *cobra.Command, flags queryFlags) error {
	table, err := loadForCLI(cmd)
	if err != nil {
		return err
	}

	sel, err := buildSelection(flags, table)
	if err != nil {
		return err
	}

	if err := sel.Check(filter.DeriveOptions(table)); err != nil {
		return selectionError(err)
	}

	rows, err := filter.Apply(table, sel)
	if err != nil {
		return selectionError(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Showing %d of %d records", len(rows), table.Len())))
	if len(rows) == 0 {
		return nil
	}
	return cli.WriteRecords(out, rows)
}

// buildSelection turns the flags into a Selection over t.
func buildSelection(flags queryFlags, t model.Table) (filter.Selection, error) {
	sel := filter.Selection{
		City:     textConstraint(flags.city),
		Category: textConstraint(flags.category),
	}

	if flags.date != "" {
		d, err := parseFlagDate("--date", flags.date)
		if err != nil {
			return sel, err
		}
		sel.Date = filter.Constrained(d)
	}

	if flags.start == "" && flags.end == "" {
		return sel, nil
	}

	first, last, _ := filter.Bounds(t)
	start, end := first, last
	if flags.start != "" {
		d, err := parseFlagDate("--start", flags.start)
		if err != nil {
			return sel, err
		}
		start = d
	}
	if flags.end != "" {
		d, err := parseFlagDate("--end", flags.end)
		if err != nil {
			return sel, err
		}
		end = d
	}
	sel.Range = &filter.DateRange{Start: start, End: end}

	return sel, nil
}

func textConstraint(v string) filter.Constraint[string] {
	if v == "" {
		return filter.Unconstrained[string]()
	}
	return filter.Constrained(v)
}

func parseFlagDate(flag, value string) (civil.Date, error) {
	d, err := dataset.ParseDate(value)
	if err != nil {
		return civil.Date{}, common.NewUserError(
			fmt.Sprintf("%s: enter dates as YYYY-MM-DD.", flag),
			fmt.Errorf("invalid %s %q: %w", flag, value, err))
	}
	return d, nil
}

func selectionError(err error) error {
	switch {
	case errors.Is(err, filter.ErrInvalidDateRange):
		return common.NewUserError("Start date must be on or before end date.", err)
	case errors.Is(err, filter.ErrUnknownOption):
		return common.NewUserError("No such date, city or category in the dataset. Run 'foodsales options' to list them.", err)
	default:
		return err
	}
}

// loadForCLI loads the configured dataset, mapping a load failure to the
// standard message. The cause is only logged at debug level so the user sees
// one message.
func loadForCLI(cmd *cobra.Command) (model.Table, error) {
	table, err := loadTable(cmd.Context())
	if err != nil {
		common.LogDebug("Dataset failed to load", common.Fields{"command": cmd.Name(), "error": err.Error()})
		if errors.Is(err, common.ErrLoad) {
			return model.Table{}, common.NewUserError(common.LoadFailureMessage, err)
		}
		return model.Table{}, err
	}
	return table, nil
}
