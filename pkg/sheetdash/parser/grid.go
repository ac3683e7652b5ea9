package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/ukaji3/sheetdash-go/pkg/sheetdash/models"
)

// Format is the export format of a fetched sheet.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
	zipMagic = []byte("PK\x03\x04")
)

// Quoting errors reported by ReadCSV.
var (
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
	ErrTrailingQuote     = errors.New("text after closing quote")
)

// ReadCSV reads a comma-delimited, double-quoted export. Every row is data,
// blank lines are skipped and rows may have different lengths. A quote
// inside an unquoted field is kept as text (5" screen); a quoted field must
// be closed and followed by a delimiter or line end.
func ReadCSV(r io.Reader) (models.Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if err := checkQuotes(data); err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = ','
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	grid := models.Grid{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}
		grid = append(grid, models.RawRow(record))
	}
	return grid, nil
}

// checkQuotes walks the field structure of data and reports quoted fields
// that are never closed or are closed in the middle of a field.
func checkQuotes(data []byte) error {
	line := 1
	fieldStart, quoted := true, false
	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case quoted:
			if c == '\n' {
				line++
			}
			if c != '"' {
				continue
			}
			if i+1 < len(data) && data[i+1] == '"' {
				i++
				continue
			}
			quoted = false
			if i+1 < len(data) {
				switch data[i+1] {
				case ',', '\n', '\r':
				default:
					return fmt.Errorf("line %d: %w", line, ErrTrailingQuote)
				}
			}
		case fieldStart && c == '"':
			quoted = true
			fieldStart = false
		case c == ',':
			fieldStart = true
		case c == '\n':
			line++
			fieldStart = true
		default:
			fieldStart = false
		}
	}
	if quoted {
		return fmt.Errorf("line %d: %w", line, ErrUnterminatedQuote)
	}
	return nil
}

// DetectFormat picks the export format from the payload, the response
// content type and the export URL, in that order.
func DetectFormat(data []byte, contentType, rawURL string) Format {
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	if strings.Contains(contentType, "spreadsheetml") {
		return FormatXLSX
	}
	if u, err := url.Parse(rawURL); err == nil {
		if strings.EqualFold(u.Query().Get("output"), "xlsx") || strings.EqualFold(u.Query().Get("format"), "xlsx") {
			return FormatXLSX
		}
		if strings.HasSuffix(strings.ToLower(u.Path), ".xlsx") {
			return FormatXLSX
		}
	}
	return FormatCSV
}

// ReadGrid reads data in the given format.
func ReadGrid(data []byte, format Format) (models.Grid, error) {
	if format == FormatXLSX {
		return ReadXLSX(bytes.NewReader(data), "")
	}
	return ReadCSV(bytes.NewReader(data))
}
