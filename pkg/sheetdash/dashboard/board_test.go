package dashboard_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/dashboard"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/fetch"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/parser"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/trend"
)

var exports = map[string]string{
	"/widget.csv": "x\nCat,Leads,Sales,,,Widget,,120\nEmail,1,2\nWeb,3,4\nAds,5,6,,,,,100\n",
	"/daily.csv":  "x\nDate,Clicks,,,,Daily Clicks\n2024-01-01,1\n2024-01-02,2\n2024-01-08,4\n",
	"/table.csv":  "Campaigns\nName,Clicks\n",
	"/map.csv":    "x\nRegion,Value,,States\nNSW,10\n",
	"/stats.csv":  "x\nMonth,Visits,Leads,,Stats,,,\"$1,500\",,,120\nJan,10,20\nFeb,5\nMar,1,2,,,,,,,,100\n",
}

func newBoard(t *testing.T, cards []sheetdash.CardConfig, opts ...fetch.Option) (*dashboard.Board, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, ok := exports[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	for i := range cards {
		if cards[i].CSVURL != "" {
			cards[i].CSVURL = srv.URL + cards[i].CSVURL
		}
	}

	cache := fetch.NewCache(fetch.NewSource(nil).Load, opts...)
	b, err := dashboard.New(cards, cache, dashboard.WithPalettes(map[string][]string{"brand": {"#00a89e"}}))
	require.NoError(t, err)
	return b, &hits
}

func TestBoardLoadWidget(t *testing.T) {
	b, _ := newBoard(t, []sheetdash.CardConfig{
		{ID: "leads", Type: sheetdash.CardWidget, CSVURL: "/widget.csv", ChartType: "column", Palette: "brand", ShowTrend: true},
	})

	card := b.Load(context.Background(), "leads", "")
	require.Empty(t, card.Error)
	assert.False(t, card.Loading)

	sheet, ok := card.Data.(*models.ParsedSheetResult)
	require.True(t, ok)
	assert.Equal(t, "Widget", sheet.HeaderTitle)
	assert.Equal(t, []string{"Email", "Web", "Ads"}, sheet.ChartData.Labels)
	require.NotNil(t, sheet.ChartData.Datasets[0].Style)
	assert.Equal(t, "rgba(0, 168, 158, 1)", sheet.ChartData.Datasets[0].Style.BackgroundColor)

	require.NotNil(t, card.Trend)
	assert.Equal(t, trend.Increment, card.Trend.Trend)
	assert.InDelta(t, 20.0, card.Trend.Percentage, 1e-9)
}

func TestBoardLoadAggregatedView(t *testing.T) {
	b, hits := newBoard(t, []sheetdash.CardConfig{
		{ID: "daily", Type: sheetdash.CardChart, CSVURL: "/daily.csv", ChartType: "line", Aggregates: true, View: "daily"},
	})
	ctx := context.Background()

	weekly := b.Load(ctx, "daily", "weekly")
	require.Empty(t, weekly.Error)
	assert.Equal(t, []string{"2024-01-01", "2024-01-08"}, weekly.Data.(*models.ParsedSheetResult).ChartData.Labels)

	daily := b.Load(ctx, "daily", "")
	require.Empty(t, daily.Error)
	assert.Len(t, daily.Data.(*models.ParsedSheetResult).ChartData.Labels, 3)

	// Both views share one cached daily export.
	assert.Equal(t, int32(1), hits.Load())
}

func TestBoardLoadErrors(t *testing.T) {
	b, _ := newBoard(t, []sheetdash.CardConfig{
		{ID: "missing", CSVURL: "/missing.csv"},
		{ID: "nourl", Type: sheetdash.CardCreative},
		{ID: "badview", CSVURL: "/daily.csv"},
	})
	ctx := context.Background()

	notFound := b.Load(ctx, "unknown", "")
	assert.Contains(t, notFound.Error, sheetdash.ErrCardNotFound.Error())
	assert.Nil(t, notFound.Data)

	fetchErr := b.Load(ctx, "missing", "")
	assert.Contains(t, fetchErr.Error, "404")
	assert.Nil(t, fetchErr.Data)

	noURL := b.Load(ctx, "nourl", "")
	assert.Contains(t, noURL.Error, sheetdash.ErrNoURL.Error())

	badView := b.Load(ctx, "badview", "yearly")
	assert.NotEmpty(t, badView.Error)
}

func TestBoardEmptyTableHasNoData(t *testing.T) {
	b, _ := newBoard(t, []sheetdash.CardConfig{
		{ID: "campaigns", Type: sheetdash.CardTable, CSVURL: "/table.csv"},
	})

	card := b.Load(context.Background(), "campaigns", "")
	assert.Empty(t, card.Error)
	assert.Nil(t, card.Data)
}

func TestBoardTitleOverride(t *testing.T) {
	b, _ := newBoard(t, []sheetdash.CardConfig{
		{ID: "states", Type: sheetdash.CardMap, CSVURL: "/map.csv", Title: "Sales by State"},
		{ID: "states-raw", Type: sheetdash.CardMap, CSVURL: "/map.csv"},
	})
	ctx := context.Background()

	renamed := b.Load(ctx, "states", "")
	require.Empty(t, renamed.Error)
	assert.Equal(t, "Sales by State", renamed.Data.(*models.ParsedMapResult).HeaderTitle)

	raw := b.Load(ctx, "states-raw", "")
	assert.Equal(t, "States", raw.Data.(*models.ParsedMapResult).HeaderTitle)
}

func TestBoardSnapshot(t *testing.T) {
	b, _ := newBoard(t, []sheetdash.CardConfig{
		{ID: "leads", CSVURL: "/widget.csv", ChartType: "bar"},
	})
	ctx := context.Background()

	first := b.Snapshot(ctx, "leads", "")
	assert.True(t, first.Loading)
	assert.Nil(t, first.Data)

	b.Wait()
	second := b.Snapshot(ctx, "leads", "")
	assert.False(t, second.Loading)
	assert.NotNil(t, second.Data)
}

func TestBoardSnapshotReportsFailure(t *testing.T) {
	b, hits := newBoard(t, []sheetdash.CardConfig{
		{ID: "missing", CSVURL: "/missing.csv"},
	})
	ctx := context.Background()

	first := b.Snapshot(ctx, "missing", "")
	assert.True(t, first.Loading)
	b.Wait()

	for i := 0; i < 3; i++ {
		card := b.Snapshot(ctx, "missing", "")
		b.Wait()
		assert.False(t, card.Loading)
		assert.Nil(t, card.Data)
		assert.Contains(t, card.Error, "404")
	}
	assert.Equal(t, int32(1), hits.Load())
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestBoardSnapshotFailureExpires(t *testing.T) {
	clock := &testClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	b, hits := newBoard(t, []sheetdash.CardConfig{
		{ID: "missing", CSVURL: "/missing.csv"},
	}, fetch.WithClock(clock.Now), fetch.WithTTL(time.Minute))
	ctx := context.Background()

	b.Snapshot(ctx, "missing", "")
	b.Wait()
	assert.NotEmpty(t, b.Snapshot(ctx, "missing", "").Error)

	clock.Advance(time.Minute)
	retry := b.Snapshot(ctx, "missing", "")
	assert.True(t, retry.Loading)
	assert.Empty(t, retry.Error)
	b.Wait()
	assert.Equal(t, int32(2), hits.Load())
}

func TestBoardLoadClearsFailure(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	cache := fetch.NewCache(func(ctx context.Context, key fetch.Key) (models.Result, error) {
		if fail.Load() {
			return nil, errors.New("origin down")
		}
		return &models.ParsedSheetResult{HeaderTitle: "Stats"}, nil
	})
	b, err := dashboard.New([]sheetdash.CardConfig{{ID: "stats", CSVURL: "mem://stats"}}, cache)
	require.NoError(t, err)
	ctx := context.Background()

	b.Snapshot(ctx, "stats", "")
	b.Wait()
	assert.Equal(t, "origin down", b.Snapshot(ctx, "stats", "").Error)

	fail.Store(false)
	require.Empty(t, b.Load(ctx, "stats", "").Error)
	cache.Invalidate(fetch.Key{URL: "mem://stats", Kind: parser.KindMonthlyFixedSeries})

	card := b.Snapshot(ctx, "stats", "")
	assert.True(t, card.Loading)
	assert.Empty(t, card.Error)
	b.Wait()
}

func TestBoardLoadAll(t *testing.T) {
	b, _ := newBoard(t, []sheetdash.CardConfig{
		{ID: "leads", CSVURL: "/widget.csv", ChartType: "bar"},
		{ID: "states", Type: sheetdash.CardMap, CSVURL: "/map.csv"},
		{ID: "missing", CSVURL: "/missing.csv"},
	})

	all := b.LoadAll(context.Background(), "")
	require.Len(t, all.Cards, 3)
	assert.Empty(t, all.Cards["leads"].Error)
	assert.Empty(t, all.Cards["states"].Error)
	assert.NotEmpty(t, all.Cards["missing"].Error)
	for id, card := range all.Cards {
		assert.Equal(t, id, card.ID)
		assert.False(t, card.Data != nil && card.Error != "", id)
	}
}

func TestNewRejectsInvalidCards(t *testing.T) {
	cache := fetch.NewCache(nil)

	_, err := dashboard.New([]sheetdash.CardConfig{{ID: "a"}, {ID: "a"}}, cache)
	assert.ErrorContains(t, err, "duplicate card id")

	_, err = dashboard.New([]sheetdash.CardConfig{{ID: "a", ParserKind: "radar"}}, cache)
	assert.ErrorIs(t, err, sheetdash.ErrUnknownKind)

	b, err := dashboard.New([]sheetdash.CardConfig{{ID: "b"}, {ID: "a"}}, cache)
	require.NoError(t, err)
	ids := []string{}
	for _, c := range b.Cards() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"b", "a"}, ids)
}

func TestBoardShowTotal(t *testing.T) {
	b, _ := newBoard(t, []sheetdash.CardConfig{
		{ID: "with-total", Type: sheetdash.CardStat, CSVURL: "/stats.csv", ShowTotal: true, ShowTrend: true},
		{ID: "no-total", Type: sheetdash.CardStat, CSVURL: "/stats.csv"},
	})
	ctx := context.Background()

	with := b.Load(ctx, "with-total", "")
	require.Empty(t, with.Error)
	sheet := with.Data.(*models.ParsedSheetResult)
	require.NotNil(t, sheet.Total)
	assert.Equal(t, 1500.0, *sheet.Total)
	require.NotNil(t, with.Trend)
	assert.InDelta(t, 20.0, with.Trend.Percentage, 1e-9)

	without := b.Load(ctx, "no-total", "")
	require.Empty(t, without.Error)
	assert.Nil(t, without.Data.(*models.ParsedSheetResult).Total)
	assert.Nil(t, without.Trend)

	// The shared cached result keeps its total.
	again := b.Load(ctx, "with-total", "")
	assert.NotNil(t, again.Data.(*models.ParsedSheetResult).Total)
}
