package sheetdash

import (
	"errors"
	"fmt"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/parser"
)

// ErrFileNotFound indicates a local export file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrUnknownKind indicates a parser kind outside the closed set.
var ErrUnknownKind = parser.ErrUnknownKind

// ErrCardNotFound indicates a card ID that is not configured.
var ErrCardNotFound = errors.New("card not found")

// ErrNoURL indicates a card without an export URL.
var ErrNoURL = errors.New("card has no export url")

// FetchError represents a transport failure or a non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int // 0 for transport failures
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %s", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a FetchError for a transport failure.
func NewFetchError(url string, err error) *FetchError {
	return &FetchError{URL: url, Err: err}
}

// NewStatusError creates a FetchError for a non-2xx response.
func NewStatusError(url string, statusCode int, status string) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Status:     status,
	}
}

// ParseError represents a malformed export: the grid could not be read, so
// no layout was applied.
type ParseError struct {
	URL  string
	Kind string
	Err  error
}

func (e *ParseError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("parse error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("parse error in %s (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(url, kind string, err error) *ParseError {
	return &ParseError{
		URL:  url,
		Kind: kind,
		Err:  err,
	}
}
