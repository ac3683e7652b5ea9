package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetdash-go/internal/console"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/output"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/parser"
)

var kindsFormat string

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the supported sheet layouts",
	Long:  `List every parser kind with the cells its layout reads.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(outputFormat(kindsFormat))
		if err != nil {
			return err
		}
		layouts := parser.Layouts()

		if format != output.FormatTable {
			encoded, err := output.Encode(layouts, format, true)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return err
		}

		t := console.NewTableWithWriter(cmd.OutOrStdout(), []string{"KIND", "TITLE", "HEADERS", "KEY", "ROWS", "MIN ROWS"})
		for _, l := range layouts {
			t.AddRow([]string{
				string(l.Kind),
				strings.Join(l.Title, ","),
				l.Headers,
				l.Key,
				l.Rows,
				strconv.Itoa(l.MinRows),
			})
		}
		return t.Render()
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)

	kindsCmd.Flags().StringVarP(&kindsFormat, "format", "f", "", "output format: table, json, yaml (default from config)")
}
