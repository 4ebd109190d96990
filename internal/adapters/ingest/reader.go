package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Source encodings understood by ReadRows.
const (
	EncodingLatin1      = "latin-1"
	EncodingISO88591    = "iso-8859-1"
	EncodingWindows1252 = "windows-1252"
	EncodingUTF8        = "utf-8"
)

// ReadOptions controls how a delimited file is decoded.
type ReadOptions struct {
	Delimiter rune
	Encoding  string
}

// DefaultReadOptions matches the exports of the evaluation platform.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{Delimiter: ';', Encoding: EncodingLatin1}
}

// Row is one data record keyed by trimmed header name.
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the trimmed value of column, and whether the column exists.
func (r Row) Get(column string) (string, bool) {
	v, ok := r.Fields[column]
	return strings.TrimSpace(v), ok
}

// Value returns the trimmed value of column or "".
func (r Row) Value(column string) string {
	v, _ := r.Get(column)
	return v
}

// Table is a decoded file: its header and data rows.
type Table struct {
	Header []string
	Rows   []Row
}

// HasColumns reports the first missing column, if any.
func (t Table) HasColumns(columns ...string) (missing string, ok bool) {
	present := make(map[string]bool, len(t.Header))
	for _, h := range t.Header {
		present[h] = true
	}
	for _, c := range columns {
		if !present[c] {
			return c, false
		}
	}
	return "", true
}

func decoder(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingLatin1, EncodingISO88591:
		return charmap.ISO8859_1.NewDecoder(), nil
	case EncodingWindows1252:
		return charmap.Windows1252.NewDecoder(), nil
	case EncodingUTF8:
		return unicode.UTF8BOM.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// ReadRows decodes r and splits it into a header and rows. Records shorter
// than the header get empty trailing fields; blank lines are skipped.
func ReadRows(r io.Reader, opts ReadOptions) (Table, error) {
	dec, err := decoder(opts.Encoding)
	if err != nil {
		return Table{}, err
	}
	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.Comma = opts.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, errors.New("empty file")
	}
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	table := Table{Header: header}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read record: %w", err)
		}
		line, _ := cr.FieldPos(0)
		fields := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				fields[name] = record[i]
			} else {
				fields[name] = ""
			}
		}
		table.Rows = append(table.Rows, Row{Line: line, Fields: fields})
	}
	return table, nil
}
