package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Sheet is a parsed CSV: ordered headers plus one Row per record.
type Sheet struct {
	Headers []string
	Rows    []Row
}

// Columns builds a column resolver over the sheet's headers.
func (s *Sheet) Columns() *Columns {
	return NewColumns(s.Headers)
}

// ReadSheet parses a CSV file into header-keyed rows. Spreadsheet exports
// are messy, so decoding strips a UTF-8 BOM when present and falls back to
// Latin-1 when the bytes are not valid UTF-8. Headers and values are
// whitespace-trimmed; ragged records are tolerated (missing cells read as
// empty).
func ReadSheet(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	decoded, err := decodeSheet(data)
	if err != nil {
		return nil, fmt.Errorf("decode sheet %s: %w", path, err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Sheet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse sheet header: %w", err)
	}
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	sheet := &Sheet{Headers: headers}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse sheet record: %w", err)
		}
		row := make(Row, len(headers))
		for i, name := range headers {
			if name == "" {
				continue
			}
			if i < len(record) {
				row[name] = strings.TrimSpace(record[i])
			} else {
				row[name] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

func decodeSheet(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		out, _, err := transform.Bytes(unicode.BOMOverride(encoding.Nop.NewDecoder()), data)
		return out, err
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(data)
}
