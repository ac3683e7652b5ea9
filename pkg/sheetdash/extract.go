package sheetdash

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/parser"
)

// Extract reads an export in the given format and applies the layout of kind.
// A grid that cannot be read yields a *ParseError; short or sparse grids are
// not errors and produce an empty result.
func Extract(data []byte, format parser.Format, kind parser.Kind) (models.Result, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	grid, err := parser.ReadGrid(data, format)
	if err != nil {
		return nil, NewParseError("", string(kind), err)
	}
	return parser.Parse(kind, grid)
}

// ExtractFile extracts a local CSV or XLSX export.
func ExtractFile(path string, kind parser.Kind) (models.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}

	result, err := Extract(data, parser.DetectFormat(data, "", path), kind)
	var perr *ParseError
	if errors.As(err, &perr) {
		perr.URL = path
	}
	return result, err
}
