package main

import (
	"fmt"

	"github.com/Veraticus/foodsales/internal/cli"
	"github.com/Veraticus/foodsales/internal/filter"
	"github.com/spf13/cobra"
)

func optionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List the dates, cities and categories available for filtering",
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := loadForCLI(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Filter options (%d records)", table.Len())))
			return cli.WriteOptions(out, filter.DeriveOptions(table))
		},
	}
}
