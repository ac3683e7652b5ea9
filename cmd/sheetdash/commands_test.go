package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
)

const pieCSV = "Traffic Sources\nCategory,Value\nSearch,45%\nSocial,30%\n"

const dailyCSV = "x\nDate,Clicks,,,,Daily Clicks\n2024-01-01,1\n2024-01-02,2\n2024-01-08,4\n"

func exportServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pie.csv":
			_, _ = w.Write([]byte(pieCSV))
		case "/daily.csv":
			_, _ = w.Write([]byte(dailyCSV))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchFileJSON(t *testing.T) {
	path := writeFile(t, "pie.csv", pieCSV)

	out, _, err := execute(t, "fetch", path, "--kind", "pieChart", "--format", "json", "--chart-type", "pie")
	require.NoError(t, err)

	var got struct {
		HeaderTitle string `json:"headerTitle"`
		ChartData   struct {
			Labels   []string `json:"labels"`
			Datasets []struct {
				Data  []float64 `json:"data"`
				Style struct {
					SliceColors []string `json:"sliceColors"`
				} `json:"style"`
			} `json:"datasets"`
		} `json:"chartData"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Traffic Sources", got.HeaderTitle)
	assert.Equal(t, []string{"Search", "Social"}, got.ChartData.Labels)
	require.Len(t, got.ChartData.Datasets, 1)
	assert.Equal(t, []float64{45, 30}, got.ChartData.Datasets[0].Data)
	assert.Len(t, got.ChartData.Datasets[0].Style.SliceColors, 2)
}

func TestFetchRawSkipsStyling(t *testing.T) {
	path := writeFile(t, "pie.csv", pieCSV)

	out, _, err := execute(t, "fetch", path, "--kind", "pie", "--format", "json", "--raw")
	require.NoError(t, err)
	assert.NotContains(t, out, "sliceColors")
}

func TestFetchURLWeeklyYAML(t *testing.T) {
	srv := exportServer(t)

	out, _, err := execute(t, "fetch", srv.URL+"/daily.csv", "--kind", "daily-raw-time-series", "--view", "weekly", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "headerTitle: Daily Clicks")
	assert.Contains(t, out, "2024-01-08")
	assert.NotContains(t, out, "2024-01-02")
}

func TestFetchTableOutputFile(t *testing.T) {
	path := writeFile(t, "pie.csv", pieCSV)
	dest := filepath.Join(t.TempDir(), "out.txt")

	out, _, err := execute(t, "fetch", path, "--kind", "pie", "--format", "table", "-o", dest)
	require.NoError(t, err)
	assert.Empty(t, out)

	written, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(written), "Traffic Sources")
	assert.Contains(t, string(written), "Search")
	assert.Contains(t, string(written), "45")
}

func TestFetchErrors(t *testing.T) {
	srv := exportServer(t)
	path := writeFile(t, "pie.csv", pieCSV)

	_, _, err := execute(t, "fetch", filepath.Join(t.TempDir(), "missing.csv"), "--kind", "pie")
	assert.ErrorIs(t, err, sheetdash.ErrFileNotFound)

	_, _, err = execute(t, "fetch", path, "--kind", "radar")
	assert.ErrorIs(t, err, sheetdash.ErrUnknownKind)

	_, _, err = execute(t, "fetch", path, "--kind", "pie", "--palette", "neon")
	assert.ErrorContains(t, err, "unknown palette")

	_, _, err = execute(t, "fetch", srv.URL+"/missing.csv", "--kind", "pie")
	var fetchErr *sheetdash.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestTrend(t *testing.T) {
	out, _, err := execute(t, "trend", "120", "100", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "current: 120")
	assert.Contains(t, out, "trend:   increment 20.0%")

	out, _, err = execute(t, "trend", "$1,000", "0", "--format", "json")
	require.NoError(t, err)
	var report trendReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1000.0, report.Current)
	assert.Equal(t, "increment", string(report.Result.Trend))
	assert.Equal(t, 100.0, report.Result.Percentage)

	_, _, err = execute(t, "trend", "lots", "1")
	assert.ErrorContains(t, err, "not a number")
}

func TestKinds(t *testing.T) {
	out, _, err := execute(t, "kinds", "--format", "table")
	require.NoError(t, err)
	for _, kind := range []string{"category-share-bar", "daily-raw-time-series", "heatmap", "pie"} {
		assert.Contains(t, out, kind)
	}

	out, _, err = execute(t, "kinds", "--format", "json")
	require.NoError(t, err)
	var layouts []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &layouts))
	assert.Len(t, layouts, 11)
	assert.Equal(t, "category-share-bar", layouts[0]["kind"])
}

func cardsConfig(t *testing.T, base string) string {
	t.Helper()
	return writeFile(t, "sheetdash.yaml", strings.Join([]string{
		"cards:",
		"  - id: sources",
		"    type: chart",
		"    chart_type: pie",
		"    csv_url: " + base + "/pie.csv",
		"  - id: clicks",
		"    type: chart",
		"    chart_type: line",
		"    aggregates: true",
		"    csv_url: " + base + "/daily.csv",
		"  - id: gone",
		"    type: chart",
		"    csv_url: " + base + "/missing.csv",
		"",
	}, "\n"))
}

func TestCardsJSON(t *testing.T) {
	srv := exportServer(t)
	path := cardsConfig(t, srv.URL)

	out, _, err := execute(t, "--config", path, "cards", "sources", "clicks", "--format", "json", "--view", "monthly")
	require.NoError(t, err)

	var board struct {
		Cards map[string]struct {
			Data  map[string]interface{} `json:"data"`
			Error string                 `json:"error"`
		} `json:"cards"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &board))
	require.Len(t, board.Cards, 2)
	assert.Equal(t, "Traffic Sources", board.Cards["sources"].Data["headerTitle"])
	assert.Empty(t, board.Cards["clicks"].Error)
	labels := board.Cards["clicks"].Data["chartData"].(map[string]interface{})["labels"]
	assert.Equal(t, []interface{}{"2024-01-01"}, labels)
}

func TestCardsTable(t *testing.T) {
	srv := exportServer(t)
	path := cardsConfig(t, srv.URL)

	out, stderr, err := execute(t, "--config", path, "cards", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "sources")
	assert.Contains(t, out, "Traffic Sources")
	assert.Contains(t, stderr, "[ERROR]")
	assert.Contains(t, stderr, "1 of 3 cards failed to load")
}

func TestCardsList(t *testing.T) {
	srv := exportServer(t)
	path := cardsConfig(t, srv.URL)

	out, _, err := execute(t, "--config", path, "cards", "--list", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "sources")
	assert.Contains(t, out, "pie")
	assert.Contains(t, out, "daily-raw-time-series")
}

func TestCardsErrors(t *testing.T) {
	_, _, err := execute(t, "cards")
	assert.ErrorContains(t, err, "no cards configured")

	srv := exportServer(t)
	path := cardsConfig(t, srv.URL)
	_, _, err = execute(t, "--config", path, "cards", "nope", "--format", "json")
	assert.ErrorIs(t, err, sheetdash.ErrCardNotFound)
}

func TestWarm(t *testing.T) {
	var buf bytes.Buffer
	logger = slog.New(slog.NewTextHandler(&buf, nil))
	t.Cleanup(func() { logger = nil })

	warm(context.Background(), func(_ context.Context, view string) models.BoardData {
		assert.Empty(t, view)
		return models.BoardData{Cards: map[string]models.CardData{
			"a": {ID: "a"},
			"b": {ID: "b", Error: "boom"},
		}}
	})

	assert.Contains(t, buf.String(), "card warm-up failed")
	assert.Contains(t, buf.String(), "total=2 failed=1")
}
