package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/parser"
)

var testKey = Key{URL: "https://example.com/export.csv", Kind: parser.KindPie}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func sheetResult(title string) *models.ParsedSheetResult {
	return &models.ParsedSheetResult{HeaderTitle: title, ChartData: models.EmptyChartData()}
}

// waitRefs blocks until n callers wait on key.
func waitRefs(t *testing.T, c *Cache, key Key, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		fl, ok := c.flights[key]
		return ok && fl.refs == n
	}, 2*time.Second, time.Millisecond)
}

func TestCacheDeduplicatesConcurrentGets(t *testing.T) {
	const callers = 10

	var calls atomic.Int32
	release := make(chan struct{})
	c := NewCache(func(ctx context.Context, key Key) (models.Result, error) {
		calls.Add(1)
		<-release
		return sheetResult("shared"), nil
	})

	var wg sync.WaitGroup
	results := make([]models.Result, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Get(context.Background(), testKey)
		}(i)
	}

	waitRefs(t, c, testKey, callers)
	assert.True(t, c.InFlight(testKey))
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
	assert.False(t, c.InFlight(testKey))
	assert.Equal(t, 1, c.Len())
}

func TestCacheServesFreshEntries(t *testing.T) {
	clock := newFakeClock()
	var calls atomic.Int32
	c := NewCache(func(ctx context.Context, key Key) (models.Result, error) {
		calls.Add(1)
		return sheetResult("v"), nil
	}, WithClock(clock.Now), WithTTL(10*time.Minute))

	ctx := context.Background()
	_, err := c.Get(ctx, testKey)
	require.NoError(t, err)

	clock.Advance(9 * time.Minute)
	_, err = c.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	_, ok := c.Peek(testKey)
	assert.True(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Loads)
}

func TestCacheRefetchesAfterTTL(t *testing.T) {
	clock := newFakeClock()
	var calls atomic.Int32
	c := NewCache(func(ctx context.Context, key Key) (models.Result, error) {
		n := calls.Add(1)
		if n == 1 {
			return sheetResult("first"), nil
		}
		return sheetResult("second"), nil
	}, WithClock(clock.Now), WithTTL(10*time.Minute))

	ctx := context.Background()
	first, err := c.Get(ctx, testKey)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	_, ok := c.Peek(testKey)
	assert.False(t, ok)

	second, err := c.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "first", first.(*models.ParsedSheetResult).HeaderTitle)
	assert.Equal(t, "second", second.(*models.ParsedSheetResult).HeaderTitle)
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	c := NewCache(func(ctx context.Context, key Key) (models.Result, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return sheetResult("ok"), nil
	})

	ctx := context.Background()
	_, err := c.Get(ctx, testKey)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	result, err := c.Get(ctx, testKey)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.(*models.ParsedSheetResult).HeaderTitle)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int64(1), c.Stats().Failures)
}

func TestCacheSharesFailures(t *testing.T) {
	const callers = 5

	boom := errors.New("boom")
	var calls atomic.Int32
	release := make(chan struct{})
	c := NewCache(func(ctx context.Context, key Key) (models.Result, error) {
		calls.Add(1)
		<-release
		return nil, boom
	})

	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Get(context.Background(), testKey)
		}(i)
	}

	waitRefs(t, c, testKey, callers)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, err := range errs {
		assert.ErrorIs(t, err, boom)
	}
}

func TestCacheCancelledCallerDoesNotCancelOthers(t *testing.T) {
	release := make(chan struct{})
	loadErr := make(chan error, 1)
	c := NewCache(func(ctx context.Context, key Key) (models.Result, error) {
		select {
		case <-release:
			loadErr <- nil
			return sheetResult("done"), nil
		case <-ctx.Done():
			loadErr <- ctx.Err()
			return nil, ctx.Err()
		}
	})

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.Get(ctxA, testKey)
		errA <- err
	}()
	waitRefs(t, c, testKey, 1)

	type outcome struct {
		result models.Result
		err    error
	}
	doneB := make(chan outcome, 1)
	go func() {
		r, err := c.Get(context.Background(), testKey)
		doneB <- outcome{r, err}
	}()
	waitRefs(t, c, testKey, 2)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)
	waitRefs(t, c, testKey, 1)

	close(release)
	b := <-doneB
	require.NoError(t, b.err)
	assert.Equal(t, "done", b.result.(*models.ParsedSheetResult).HeaderTitle)
	assert.NoError(t, <-loadErr)
}

func TestCacheLastCallerCancelsLoad(t *testing.T) {
	var calls atomic.Int32
	loadErr := make(chan error, 2)
	c := NewCache(func(ctx context.Context, key Key) (models.Result, error) {
		if calls.Add(1) > 1 {
			return sheetResult("retry"), nil
		}
		<-ctx.Done()
		loadErr <- ctx.Err()
		return nil, ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Get(ctx, testKey)
		errCh <- err
	}()
	waitRefs(t, c, testKey, 1)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	select {
	case err := <-loadErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("load was not cancelled after the last caller left")
	}
	assert.False(t, c.InFlight(testKey))

	result, err := c.Get(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, "retry", result.(*models.ParsedSheetResult).HeaderTitle)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCacheInvalidateAndPurge(t *testing.T) {
	c := NewCache(nil)
	other := Key{URL: testKey.URL, Kind: parser.KindTable}
	third := Key{URL: "https://example.com/other.csv", Kind: parser.KindPie}

	c.Set(testKey, sheetResult("a"))
	c.Set(other, &models.ParsedTableResult{})
	c.Set(third, sheetResult("c"))
	assert.Equal(t, 3, c.Len())

	assert.True(t, c.Invalidate(third))
	assert.False(t, c.Invalidate(third))
	_, ok := c.Peek(third)
	assert.False(t, ok)

	assert.Equal(t, 2, c.InvalidateURL(testKey.URL))
	assert.Equal(t, 0, c.Len())

	c.Set(testKey, sheetResult("a"))
	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestCacheSweep(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(nil, WithClock(clock.Now), WithTTL(time.Minute))

	c.Set(testKey, sheetResult("old"))
	clock.Advance(30 * time.Second)
	fresh := Key{URL: "https://example.com/fresh.csv", Kind: parser.KindPie}
	c.Set(fresh, sheetResult("new"))

	clock.Advance(45 * time.Second)
	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 1, c.Len())
	_, ok := c.Peek(fresh)
	assert.True(t, ok)
}

func TestCacheRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	clock := newFakeClock()
	c := NewCache(nil, WithClock(clock.Now), WithTTL(time.Minute), WithSweepInterval(5*time.Millisecond))
	c.Set(testKey, sheetResult("old"))
	clock.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return c.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "pie|https://example.com/export.csv", testKey.String())
}
