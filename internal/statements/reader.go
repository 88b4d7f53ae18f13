// Package statements reads uploaded bank statement files into raw
// tabular datasets and generates synthetic statements for demos and
// load testing.
package statements

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// MaxStatementSize caps a single uploaded statement file (50 MiB).
const MaxStatementSize = 50 << 20

// acceptedContentTypes lists upload content types the reader handles.
// Browsers disagree on what a CSV is, so octet-stream is allowed and
// the extension decides.
var acceptedContentTypes = map[string]bool{
	"text/csv":                  true,
	"text/tab-separated-values": true,
	"text/plain":                true,
	"application/csv":           true,
	"application/vnd.ms-excel":  true,
	"application/octet-stream":  true,
	"":                          true,
}

// Accepted reports whether the upload content type is one the reader
// can handle. Parameters after the media type are ignored.
func Accepted(contentType string) bool {
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	return acceptedContentTypes[strings.ToLower(strings.TrimSpace(mediaType))]
}

// Read parses one statement file into a raw table. The first non-empty
// row becomes the header; remaining rows keep their cell text verbatim.
// Rows may be ragged. Returns domain.ErrFileTooLarge when the content
// exceeds MaxStatementSize and domain.ErrUnsupportedFormat when no
// tabular structure can be found.
func Read(name string, r io.Reader) (*domain.RawTable, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxStatementSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(data) > MaxStatementSize {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrFileTooLarge)
	}

	// Strip a UTF-8 BOM so the first header cell matches cleanly
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(name, data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", name, domain.ErrUnsupportedFormat, err)
	}

	table := &domain.RawTable{Name: name}
	for _, record := range records {
		if isEmptyRow(record) {
			continue
		}
		if table.Columns == nil {
			header := make([]string, len(record))
			for i, cell := range record {
				header[i] = strings.TrimSpace(cell)
			}
			table.Columns = header
			continue
		}
		table.Rows = append(table.Rows, record)
	}

	if table.Columns == nil {
		return nil, fmt.Errorf("%s: %w: no header row", name, domain.ErrUnsupportedFormat)
	}
	return table, nil
}

// detectDelimiter picks tab or comma. The extension wins; otherwise the
// first line is inspected, and a tab-heavy line means TSV.
func detectDelimiter(name string, data []byte) rune {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tsv", ".tab":
		return '\t'
	case ".csv":
		return ','
	}

	line := data
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if bytes.Count(line, []byte{'\t'}) > bytes.Count(line, []byte{','}) {
		return '\t'
	}
	return ','
}

func isEmptyRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
