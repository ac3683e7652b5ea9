// Package dashboard serves configured cards as {data, loading, error} triples.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/aggregate"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/fetch"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/trend"
)

const defaultConcurrency = 8

// Board holds the card configuration and the cache the cards share.
type Board struct {
	cards       map[string]sheetdash.CardConfig
	order       []string
	cache       *fetch.Cache
	agg         *aggregate.Aggregator
	palettes    map[string][]string
	logger      *slog.Logger
	concurrency int

	wg sync.WaitGroup

	mu       sync.Mutex
	failures map[fetch.Key]failure
}

// failure is the last load error of a key, kept for one TTL so that
// Snapshot can report it without refetching.
type failure struct {
	err error
	at  time.Time
}

// Option configures a Board.
type Option func(*Board)

// WithPalettes sets the named palettes cards can refer to.
func WithPalettes(p map[string][]string) Option {
	return func(b *Board) { b.palettes = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Board) { b.logger = l }
}

// WithConcurrency caps the number of cards LoadAll loads at once.
func WithConcurrency(n int) Option {
	return func(b *Board) { b.concurrency = n }
}

// New creates a Board. Card IDs must be unique.
func New(cards []sheetdash.CardConfig, cache *fetch.Cache, opts ...Option) (*Board, error) {
	if dups := lo.FindDuplicatesBy(cards, func(c sheetdash.CardConfig) string { return c.ID }); len(dups) > 0 {
		return nil, fmt.Errorf("duplicate card id %q", dups[0].ID)
	}

	b := &Board{
		cards:       make(map[string]sheetdash.CardConfig, len(cards)),
		cache:       cache,
		palettes:    map[string][]string{},
		logger:      slog.Default(),
		concurrency: defaultConcurrency,
		failures:    make(map[fetch.Key]failure),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.agg = aggregate.New(b.logger)

	for _, c := range cards {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		b.cards[c.ID] = c
		b.order = append(b.order, c.ID)
	}
	return b, nil
}

// Cards returns the card configurations in configuration order.
func (b *Board) Cards() []sheetdash.CardConfig {
	return lo.Map(b.order, func(id string, _ int) sheetdash.CardConfig { return b.cards[id] })
}

// Card returns one card configuration.
func (b *Board) Card(id string) (sheetdash.CardConfig, bool) {
	c, ok := b.cards[id]
	return c, ok
}

// request is a card resolved against a view.
type request struct {
	card sheetdash.CardConfig
	view aggregate.View
	key  fetch.Key
}

func (b *Board) resolve(id, view string) (request, error) {
	card, ok := b.cards[id]
	if !ok {
		return request{}, fmt.Errorf("%w: %s", sheetdash.ErrCardNotFound, id)
	}
	if card.CSVURL == "" {
		return request{}, fmt.Errorf("card %s: %w", id, sheetdash.ErrNoURL)
	}
	v, err := sheetdash.ResolveView(card, view)
	if err != nil {
		return request{}, err
	}
	kind, err := sheetdash.ResolveKind(card, v)
	if err != nil {
		return request{}, err
	}
	return request{card: card, view: v, key: fetch.Key{URL: card.CSVURL, Kind: kind}}, nil
}

// Load fetches, parses and prepares one card. Errors are reported in
// CardData.Error; Data and Error are never both set.
func (b *Board) Load(ctx context.Context, id, view string) models.CardData {
	req, err := b.resolve(id, view)
	if err != nil {
		return failed(id, err)
	}

	result, err := b.cache.Get(ctx, req.key)
	if ctx.Err() == nil {
		b.record(req.key, err)
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			b.logger.Warn("card load failed", "card", id, "err", err)
		}
		return failed(id, err)
	}
	return b.present(req, result)
}

// Snapshot returns a card without blocking. A card whose result is not
// cached starts loading in the background and reports Loading. A card whose
// last load failed within the TTL reports that error until it expires.
func (b *Board) Snapshot(ctx context.Context, id, view string) models.CardData {
	req, err := b.resolve(id, view)
	if err != nil {
		return failed(id, err)
	}

	if result, ok := b.cache.Peek(req.key); ok {
		return b.present(req, result)
	}
	if b.cache.InFlight(req.key) {
		return models.CardData{ID: id, Loading: true}
	}
	if err := b.lastFailure(req.key); err != nil {
		return failed(id, err)
	}

	bg := context.WithoutCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		_, err := b.cache.Get(bg, req.key)
		b.record(req.key, err)
		if err != nil {
			b.logger.Warn("background card load failed", "card", id, "err", err)
		}
	}()
	return models.CardData{ID: id, Loading: true}
}

// record keeps err as the last failure of key, or clears it on success.
// Cancelled loads are not kept.
func (b *Board) record(key fetch.Key, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case err == nil:
		delete(b.failures, key)
	case errors.Is(err, context.Canceled):
	default:
		b.failures[key] = failure{err: err, at: b.cache.Now()}
	}
}

// lastFailure returns the unexpired last failure of key.
func (b *Board) lastFailure(key fetch.Key) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.failures[key]
	if !ok {
		return nil
	}
	if !b.cache.Fresh(f.at) {
		delete(b.failures, key)
		return nil
	}
	return f.err
}

// Wait blocks until background loads started by Snapshot have finished.
func (b *Board) Wait() {
	b.wg.Wait()
}

// LoadAll loads every card concurrently.
func (b *Board) LoadAll(ctx context.Context, view string) models.BoardData {
	var mu sync.Mutex
	out := models.BoardData{Cards: make(map[string]models.CardData, len(b.order))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for _, id := range b.order {
		id := id
		g.Go(func() error {
			card := b.Load(gctx, id, view)
			mu.Lock()
			out.Cards[id] = card
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// present prepares a cached result for one card without modifying it.
func (b *Board) present(req request, result models.Result) models.CardData {
	opts, err := req.card.PrepareOptions(req.view, b.palettes)
	if err != nil {
		return failed(req.card.ID, err)
	}

	prepared, report := sheetdash.Prepare(result, opts, b.agg)
	if len(report.InvalidLabels) > 0 {
		b.logger.Warn("card has undated labels", "card", req.card.ID, "labels", report.InvalidLabels)
	}
	prepared = withTitle(prepared, req.card.Title)

	data := models.CardData{ID: req.card.ID, Data: prepared}
	switch r := prepared.(type) {
	case *models.ParsedTableResult:
		if r.IsEmpty() {
			data.Data = nil
		}
	case *models.ParsedSheetResult:
		if !req.card.ShowTotal && r.Total != nil {
			c := r.Clone()
			c.Total = nil
			data.Data = c
		}
		if req.card.ShowTrend {
			if t, ok := trend.FromCounts(r.CurrentPeriodCount, r.PriorPeriodCount); ok {
				data.Trend = &t
			}
		}
	}
	return data
}

// withTitle returns a copy of r carrying title. An empty title keeps r.
func withTitle(r models.Result, title string) models.Result {
	if title == "" {
		return r
	}
	switch v := r.(type) {
	case *models.ParsedSheetResult:
		c := v.Clone()
		c.HeaderTitle = title
		return c
	case *models.ParsedTableResult:
		c := *v
		c.HeaderTitle = title
		return &c
	case *models.ParsedMapResult:
		c := *v
		c.HeaderTitle = title
		return &c
	case *models.ParsedHeatmapResult:
		c := *v
		c.HeaderTitle = title
		return &c
	}
	return r
}

func failed(id string, err error) models.CardData {
	return models.CardData{ID: id, Error: err.Error()}
}
