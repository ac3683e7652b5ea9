package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/ukaji3/sheetdash-go/internal/console"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/aggregate"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/fetch"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/output"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/parser"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/style"
)

var (
	fetchKind      string
	fetchView      string
	fetchChartType string
	fetchPalette   string
	fetchFormat    string
	fetchOutput    string
	fetchPretty    bool
	fetchRaw       bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url|file>",
	Short: "Fetch and parse one export",
	Long: `Fetch a published CSV or XLSX export (or read a local file), parse it with
the layout of --kind and print the prepared result.

Daily series can be rolled up with --view weekly or --view monthly; rendering
hints for --chart-type are attached unless --raw is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchKind, "kind", "k", "", "parser kind (see 'sheetdash kinds')")
	fetchCmd.Flags().StringVar(&fetchView, "view", "", "rollup for daily series: daily, weekly, monthly")
	fetchCmd.Flags().StringVar(&fetchChartType, "chart-type", "", "chart type for rendering hints: line, bar, pie")
	fetchCmd.Flags().StringVar(&fetchPalette, "palette", "default", "named palette from config")
	fetchCmd.Flags().StringVarP(&fetchFormat, "format", "f", "", "output format: table, json, yaml (default from config)")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "output file path (default: stdout)")
	fetchCmd.Flags().BoolVar(&fetchPretty, "pretty", false, "pretty-print JSON output")
	fetchCmd.Flags().BoolVar(&fetchRaw, "raw", false, "skip aggregation and styling")
	_ = fetchCmd.MarkFlagRequired("kind")
}

func runFetch(cmd *cobra.Command, args []string) error {
	target := args[0]

	kind, err := parser.ParseKind(fetchKind)
	if err != nil {
		return err
	}
	view, err := aggregate.ParseView(fetchView)
	if err != nil {
		return err
	}
	chartType, err := style.ParseChartType(fetchChartType)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(outputFormat(fetchFormat))
	if err != nil {
		return err
	}

	result, err := load(cmd.Context(), target, kind)
	if err != nil {
		return err
	}

	if !fetchRaw {
		colors, ok := palette(fetchPalette)
		if !ok {
			return fmt.Errorf("unknown palette %q", fetchPalette)
		}
		var report aggregate.Report
		result, report = sheetdash.Prepare(result, sheetdash.Options{
			View:      view,
			ChartType: chartType,
			Colors:    colors,
		}, aggregate.New(loggerOrDefault()))
		if len(report.InvalidLabels) > 0 {
			newPrinter(cmd).Warning("%d labels are not dates and were kept as they are", len(report.InvalidLabels))
		}
	}

	return writeResult(cmd, result, format)
}

// load reads target as a URL when it has an http(s) scheme and as a local
// file otherwise.
func load(ctx context.Context, target string, kind parser.Kind) (models.Result, error) {
	if u, err := url.Parse(target); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return fetch.NewSource(newFetcher()).Load(ctx, fetch.Key{URL: target, Kind: kind})
	}
	return sheetdash.ExtractFile(target, kind)
}

// newFetcher builds a fetcher from the fetch config.
func newFetcher() *fetch.Fetcher {
	opts := []fetch.FetcherOption{fetch.WithFetchLogger(loggerOrDefault())}
	if cfg != nil {
		opts = append(opts,
			fetch.WithTimeout(cfg.Fetch.Timeout),
			fetch.WithRateLimit(rate.Limit(cfg.Fetch.Rate), cfg.Fetch.Burst),
			fetch.WithMaxBytes(cfg.Fetch.MaxBytes),
		)
	}
	return fetch.NewFetcher(opts...)
}

// palette returns a named palette from config.
func palette(name string) ([]string, bool) {
	if cfg != nil {
		if p, ok := cfg.Palettes[name]; ok {
			return p, true
		}
	}
	if name == "default" {
		return sheetdash.DefaultPalette, true
	}
	return nil, false
}

func writeResult(cmd *cobra.Command, result models.Result, format output.Format) error {
	var buf bytes.Buffer
	if format == output.FormatTable {
		p := console.NewPrinterWithWriters(&buf, cmd.ErrOrStderr(), fetchOutput == "" && colorsEnabled())
		if err := console.RenderResult(&buf, p, result); err != nil {
			return err
		}
	} else {
		data, err := output.Encode(result, format, fetchPretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		buf.Write(data)
		if !bytes.HasSuffix(data, []byte("\n")) {
			buf.WriteByte('\n')
		}
	}

	if fetchOutput != "" {
		if err := os.WriteFile(fetchOutput, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err := io.Copy(cmd.OutOrStdout(), &buf)
	return err
}
