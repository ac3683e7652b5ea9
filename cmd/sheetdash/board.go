package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/dashboard"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/fetch"
)

// newBoard wires the fetcher, cache and board described by the config.
func newBoard() (*dashboard.Board, *fetch.Cache, error) {
	log := loggerOrDefault()
	cache := fetch.NewCache(fetch.NewSource(newFetcher()).Load,
		fetch.WithTTL(cfg.Cache.TTL),
		fetch.WithSweepInterval(cfg.Cache.SweepInterval),
		fetch.WithLogger(log),
	)
	board, err := dashboard.New(cfg.Cards, cache,
		dashboard.WithPalettes(cfg.Palettes),
		dashboard.WithLogger(log),
		dashboard.WithConcurrency(cfg.Fetch.Concurrency),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("building dashboard: %w", err)
	}
	return board, cache, nil
}

// requireCards fails when no cards are configured.
func requireCards(cmd *cobra.Command) error {
	if len(cfg.Cards) == 0 {
		newPrinter(cmd).Warning("no cards configured; add a 'cards' section to .sheetdash.yaml")
		return fmt.Errorf("no cards configured")
	}
	return nil
}
