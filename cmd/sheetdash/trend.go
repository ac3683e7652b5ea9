package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/output"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/parser"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/trend"
)

var (
	trendCurrency bool
	trendFormat   string
)

var trendCmd = &cobra.Command{
	Use:   "trend <current> <prior>",
	Short: "Compare two period counts",
	Long: `Compare the current period count against the prior one and print the
direction and percentage change. Counts may use thousands separators,
currency symbols or a percent sign.`,
	Args: cobra.ExactArgs(2),
	RunE: runTrend,
}

func init() {
	rootCmd.AddCommand(trendCmd)

	trendCmd.Flags().BoolVar(&trendCurrency, "currency", false, "format counts as currency")
	trendCmd.Flags().StringVarP(&trendFormat, "format", "f", "", "output format: table, json, yaml (default from config)")
}

// trendReport is the structured output of the trend command.
type trendReport struct {
	Current float64      `json:"current"`
	Prior   float64      `json:"prior"`
	Result  trend.Result `json:"result"`
}

func runTrend(cmd *cobra.Command, args []string) error {
	current := parser.CleanNumber(args[0])
	if current == nil {
		return fmt.Errorf("current count %q is not a number", args[0])
	}
	prior := parser.CleanNumber(args[1])
	if prior == nil {
		return fmt.Errorf("prior count %q is not a number", args[1])
	}
	format, err := output.ParseFormat(outputFormat(trendFormat))
	if err != nil {
		return err
	}

	result, _ := trend.FromCounts(current, prior)
	report := trendReport{Current: *current, Prior: *prior, Result: result}

	if format != output.FormatTable {
		encoded, err := output.Encode(report, format, true)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
		return err
	}

	formatCount := trend.FormatCompact
	if trendCurrency {
		formatCount = trend.FormatCurrency
	}

	p := newPrinter(cmd)
	p.Print("current: %s", formatCount(report.Current))
	p.Print("prior:   %s", formatCount(report.Prior))
	p.Print("trend:   %s", p.TrendBadge(report.Result))
	return nil
}
