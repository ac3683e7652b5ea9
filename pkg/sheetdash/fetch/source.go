package fetch

import (
	"context"
	"errors"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/parser"
)

// Source loads a key by fetching its export and applying the kind's layout.
type Source struct {
	fetcher *Fetcher
}

// NewSource creates a Source. A nil fetcher uses NewFetcher().
func NewSource(f *Fetcher) *Source {
	if f == nil {
		f = NewFetcher()
	}
	return &Source{fetcher: f}
}

// Load fetches and parses key. It satisfies LoadFunc.
func (s *Source) Load(ctx context.Context, key Key) (models.Result, error) {
	if key.URL == "" {
		return nil, sheetdash.ErrNoURL
	}

	resp, err := s.fetcher.Fetch(ctx, key.URL)
	if err != nil {
		return nil, err
	}

	format := parser.DetectFormat(resp.Data, resp.ContentType, key.URL)
	result, err := sheetdash.Extract(resp.Data, format, key.Kind)
	var perr *sheetdash.ParseError
	if errors.As(err, &perr) {
		perr.URL = key.URL
	}
	return result, err
}
