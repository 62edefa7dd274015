package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bft-labs/thumbship/internal/domain"
	"github.com/bft-labs/thumbship/internal/ports"
)

const byteOrderMark = "\ufeff"

var (
	errEmptyManifest = errors.New("manifest is empty")
	errNotText       = errors.New("manifest is not UTF-8 text")
)

// ParseResult holds the records narrowed from a manifest and the rows that
// were dropped along the way.
type ParseResult struct {
	Records  []domain.RawRecord
	Warnings []domain.RowShapeWarning
}

// ManifestParser turns comma-separated manifest text into typed records.
//
// The format is deliberately simple: the first non-blank line names the
// fields, every following non-blank line holds positional values. Quoted
// fields are not supported; a comma always separates fields.
type ManifestParser struct {
	logger ports.Logger
}

// NewManifestParser creates a parser that reports dropped rows to logger.
func NewManifestParser(logger ports.Logger) *ManifestParser {
	return &ManifestParser{logger: logger}
}

// Parse returns the manifest's records in input order.
//
// Empty or non-text input yields an ErrInput error, a header without usable
// field names yields an ErrSchema error. Rows whose field count differs from
// the header, or that cannot be narrowed into a record, are dropped and
// reported as warnings; they never fail the parse.
func (p *ManifestParser) Parse(raw string) (ParseResult, error) {
	raw = strings.TrimPrefix(raw, byteOrderMark)
	if strings.TrimSpace(raw) == "" {
		return ParseResult{}, domain.InputError(errEmptyManifest)
	}
	if !utf8.ValidString(raw) || strings.ContainsRune(raw, 0) {
		return ParseResult{}, domain.InputError(errNotText)
	}

	lines := nonBlankLines(raw)
	headers := splitFields(lines[0])
	if err := checkHeaders(headers); err != nil {
		return ParseResult{}, err
	}

	result := ParseResult{Records: make([]domain.RawRecord, 0, len(lines)-1)}
	for i, line := range lines[1:] {
		rowNum := i + 1
		values := splitFields(line)
		if len(values) != len(headers) {
			p.warn(&result, domain.RowShapeWarning{
				Row:      rowNum,
				Expected: len(headers),
				Actual:   len(values),
				Line:     line,
			})
			continue
		}

		rec, reason := narrow(rowNum, toRow(headers, values))
		if reason != "" {
			p.warn(&result, domain.RowShapeWarning{
				Row:      rowNum,
				Expected: len(headers),
				Actual:   len(values),
				Reason:   reason,
				Line:     line,
			})
			continue
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

func (p *ManifestParser) warn(result *ParseResult, w domain.RowShapeWarning) {
	result.Warnings = append(result.Warnings, w)
	p.logger.Warn("row shape mismatch",
		ports.Int("row", w.Row),
		ports.Int("expected_fields", w.Expected),
		ports.Int("actual_fields", w.Actual),
		ports.String("reason", w.Error()),
	)
}

func nonBlankLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.TrimRight(line, "\r"))
	}
	return lines
}

func splitFields(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

func checkHeaders(headers []string) error {
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		if h != "" {
			seen[h] = true
		}
	}
	if len(seen) == 0 {
		return domain.SchemaError("no usable headers")
	}
	for _, required := range []string{domain.FieldID, domain.FieldURL} {
		if !seen[required] {
			return domain.SchemaError(fmt.Sprintf("header is missing field %q", required))
		}
	}
	return nil
}

// toRow pairs headers with values positionally. Empty values become nil.
// Columns with an empty header name are ignored.
func toRow(headers, values []string) domain.Row {
	row := make(domain.Row, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if values[i] == "" {
			row[h] = nil
			continue
		}
		v := values[i]
		row[h] = &v
	}
	return row
}

// narrow converts a row into a RawRecord. It returns a non-empty reason when
// the row cannot be narrowed.
func narrow(rowNum int, row domain.Row) (domain.RawRecord, string) {
	id, ok := row.Get(domain.FieldID)
	if !ok {
		return domain.RawRecord{}, "id is empty"
	}

	index := rowNum - 1
	if v, ok := row.Get(domain.FieldIndex); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return domain.RawRecord{}, fmt.Sprintf("index %q is not an integer", v)
		}
		index = n
	}

	url, _ := row.Get(domain.FieldURL)
	return domain.RawRecord{Row: rowNum, Index: index, ID: id, URL: url}, ""
}
