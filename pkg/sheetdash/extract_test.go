package sheetdash_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/aggregate"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/parser"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/style"
)

const pieCSV = "Traffic\nCategory,Value\nSearch,45%\nSocial,30%\n"

const dailyCSV = "Daily\nDate,Clicks\n2024-01-01,1\n2024-01-02,2\n2024-01-08,4\n"

func TestExtractCSV(t *testing.T) {
	result, err := sheetdash.Extract([]byte(pieCSV), parser.FormatCSV, parser.KindPie)
	require.NoError(t, err)

	sheet, ok := result.(*models.ParsedSheetResult)
	require.True(t, ok)
	assert.Equal(t, "Traffic", sheet.HeaderTitle)
	assert.Equal(t, []string{"Search", "Social"}, sheet.ChartData.Labels)
}

func TestExtractXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Traffic")
	f.SetCellValue("Sheet1", "A2", "Category")
	f.SetCellValue("Sheet1", "B2", "Value")
	f.SetCellValue("Sheet1", "A3", "Search")
	f.SetCellValue("Sheet1", "B3", "45%")
	f.SetCellValue("Sheet1", "A4", "Social")
	f.SetCellValue("Sheet1", "B4", "30%")
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	data := buf.Bytes()
	require.Equal(t, parser.FormatXLSX, parser.DetectFormat(data, "", ""))

	fromXLSX, err := sheetdash.Extract(data, parser.FormatXLSX, parser.KindPie)
	require.NoError(t, err)
	fromCSV, err := sheetdash.Extract([]byte(pieCSV), parser.FormatCSV, parser.KindPie)
	require.NoError(t, err)
	assert.Equal(t, fromCSV, fromXLSX)
}

func TestExtractMalformed(t *testing.T) {
	_, err := sheetdash.Extract([]byte("a,\"b\n"), parser.FormatCSV, parser.KindTable)

	var perr *sheetdash.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "table", perr.Kind)
	assert.Contains(t, err.Error(), "parse error (table)")
}

func TestExtractUnknownKind(t *testing.T) {
	_, err := sheetdash.Extract([]byte(pieCSV), parser.FormatCSV, parser.Kind("radar"))
	assert.ErrorIs(t, err, sheetdash.ErrUnknownKind)
}

func TestExtractDegenerateIsNotAnError(t *testing.T) {
	result, err := sheetdash.Extract([]byte("only one row\n"), parser.FormatCSV, parser.KindCategoryShareBar)
	require.NoError(t, err)
	assert.True(t, result.IsEmpty())
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pie.csv")
	require.NoError(t, os.WriteFile(path, []byte(pieCSV), 0o644))

	result, err := sheetdash.ExtractFile(path, parser.KindPie)
	require.NoError(t, err)
	assert.False(t, result.IsEmpty())

	_, err = sheetdash.ExtractFile(filepath.Join(dir, "missing.csv"), parser.KindPie)
	assert.ErrorIs(t, err, sheetdash.ErrFileNotFound)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("a,\"b\n"), 0o644))
	_, err = sheetdash.ExtractFile(bad, parser.KindPie)
	var perr *sheetdash.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, bad, perr.URL)
}

func TestPrepare(t *testing.T) {
	result, err := sheetdash.Extract([]byte(dailyCSV), parser.FormatCSV, parser.KindDailyRawTimeSeries)
	require.NoError(t, err)

	opts := sheetdash.DefaultOptions()
	opts.View = aggregate.Weekly
	opts.Colors = []string{"#00a89e"}

	prepared, report := sheetdash.Prepare(result, opts, aggregate.New(nil))
	sheet := prepared.(*models.ParsedSheetResult)
	assert.Equal(t, []string{"2024-01-01", "2024-01-08"}, sheet.ChartData.Labels)
	assert.Equal(t, 2, report.Buckets)
	require.NotNil(t, sheet.ChartData.Datasets[0].Style)
	assert.Len(t, sheet.ChartData.Datasets[0].Style.Gradient, 2)

	original := result.(*models.ParsedSheetResult)
	assert.Len(t, original.ChartData.Labels, 3)
	assert.Nil(t, original.ChartData.Datasets[0].Style)
}

func TestPrepareLeavesOtherShapes(t *testing.T) {
	table := &models.ParsedTableResult{HeaderTitle: "t"}
	prepared, _ := sheetdash.Prepare(table, sheetdash.Options{Colors: []string{"#000"}}, nil)
	assert.Same(t, table, prepared)
}

func TestOptionsGradient(t *testing.T) {
	opts := sheetdash.DefaultOptions()
	assert.True(t, opts.ShouldUseGradient())
	assert.False(t, opts.ShouldAggregate())

	off := false
	opts.Gradient = &off
	opts.View = aggregate.Monthly
	assert.False(t, opts.ShouldUseGradient())
	assert.True(t, opts.ShouldAggregate())
}

func TestFetchErrorMessages(t *testing.T) {
	status := sheetdash.NewStatusError("https://example.com/a.csv", 404, "404 Not Found")
	assert.Equal(t, "fetch https://example.com/a.csv: unexpected status 404 Not Found", status.Error())

	cause := errors.New("connection refused")
	transport := sheetdash.NewFetchError("https://example.com/a.csv", cause)
	assert.ErrorIs(t, transport, cause)
	assert.Contains(t, transport.Error(), "connection refused")
}

func TestResolveKind(t *testing.T) {
	tests := []struct {
		name     string
		card     sheetdash.CardConfig
		view     aggregate.View
		expected parser.Kind
	}{
		{"explicit legacy kind", sheetdash.CardConfig{ParserKind: "shareChart", ChartType: "pie"}, "", parser.KindCategoryShareBar},
		{"aggregating card", sheetdash.CardConfig{Aggregates: true, ChartType: "line"}, aggregate.Weekly, parser.KindDailyRawTimeSeries},
		{"aggregating card without view", sheetdash.CardConfig{Aggregates: true, ChartType: "line"}, "", parser.KindMonthlyFixedSeries},
		{"table card", sheetdash.CardConfig{Type: sheetdash.CardTable}, "", parser.KindTable},
		{"map card", sheetdash.CardConfig{Type: sheetdash.CardWidgetMap}, "", parser.KindMap},
		{"heatmap card", sheetdash.CardConfig{Type: sheetdash.CardHeatmap}, "", parser.KindHeatmap},
		{"bar", sheetdash.CardConfig{ChartType: "bar"}, "", parser.KindWidgetStats},
		{"column", sheetdash.CardConfig{ChartType: "column"}, "", parser.KindWidgetStats},
		{"pie", sheetdash.CardConfig{ChartType: "pie"}, "", parser.KindPie},
		{"line_tall", sheetdash.CardConfig{ChartType: "line_tall"}, "", parser.KindMonthlyTimeSeries},
		{"line", sheetdash.CardConfig{ChartType: "line"}, "", parser.KindMonthlyFixedSeries},
		{"default", sheetdash.CardConfig{}, "", parser.KindMonthlyFixedSeries},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := sheetdash.ResolveKind(tt.card, tt.view)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := sheetdash.ResolveKind(sheetdash.CardConfig{ParserKind: "radar"}, "")
	assert.ErrorIs(t, err, sheetdash.ErrUnknownKind)
}

func TestCardPrepareOptions(t *testing.T) {
	palettes := map[string][]string{"brand": {"#111111", "#222222"}}

	card := sheetdash.CardConfig{ID: "c1", ChartType: "column", Palette: "brand", Aggregates: true}
	opts, err := card.PrepareOptions(aggregate.Monthly, palettes)
	require.NoError(t, err)
	assert.Equal(t, style.ChartBar, opts.ChartType)
	assert.Equal(t, []string{"#111111", "#222222"}, opts.Colors)
	assert.Equal(t, aggregate.Monthly, opts.View)

	card = sheetdash.CardConfig{ID: "c2"}
	opts, err = card.PrepareOptions(aggregate.Monthly, palettes)
	require.NoError(t, err)
	assert.Equal(t, sheetdash.DefaultPalette, opts.Colors)
	assert.Equal(t, aggregate.Daily, opts.View)

	card = sheetdash.CardConfig{ID: "c3", Palette: "missing"}
	_, err = card.PrepareOptions(aggregate.Daily, palettes)
	assert.Error(t, err)
}

func TestCardValidate(t *testing.T) {
	assert.NoError(t, sheetdash.CardConfig{ID: "ok", ParserKind: "pieChart", ChartType: "donut", View: "weekly"}.Validate())
	assert.Error(t, sheetdash.CardConfig{}.Validate())
	assert.ErrorIs(t, sheetdash.CardConfig{ID: "x", ParserKind: "radar"}.Validate(), sheetdash.ErrUnknownKind)
	assert.ErrorIs(t, sheetdash.CardConfig{ID: "x", ChartType: "radar"}.Validate(), style.ErrUnknownChartType)
	assert.ErrorIs(t, sheetdash.CardConfig{ID: "x", View: "yearly"}.Validate(), aggregate.ErrUnknownView)
}

func TestResolveView(t *testing.T) {
	card := sheetdash.CardConfig{View: "weekly"}
	v, err := sheetdash.ResolveView(card, "")
	require.NoError(t, err)
	assert.Equal(t, aggregate.Weekly, v)

	v, err = sheetdash.ResolveView(card, "monthly")
	require.NoError(t, err)
	assert.Equal(t, aggregate.Monthly, v)
}
