package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const recordDelimiter = ","

// Minimum number of fields a stored record must carry: serial, quality mark,
// mass and type. The date-added field is optional on read.
const minRecordFields = 4

var ErrMalformedRecord = errors.New("malformed package record")

// FormatError reports a stored record line that cannot be decoded.
type FormatError struct {
	Line   int // 1-based position in the snapshot, 0 when unknown
	Record string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString("decode record")
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	fmt.Fprintf(&b, ": %s: %q", e.Reason, e.Record)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrMalformedRecord }

// NormalizeRecordLine strips a trailing carriage return from a stored line.
// ok is false for blank lines, which hold no record.
func NormalizeRecordLine(line string) (record string, ok bool) {
	record = strings.TrimSuffix(line, "\r")
	if strings.TrimSpace(record) == "" {
		return "", false
	}
	return record, true
}

// EncodeRecord renders a package as a single comma-joined record line:
// serial number, quality mark, mass, type, date added.
func EncodeRecord(p *Package) string {
	return strings.Join([]string{
		p.SerialNumber,
		p.QualityMark,
		formatMass(p.Mass),
		p.Type,
		p.DateAdded.Format(time.RFC3339Nano),
	}, recordDelimiter)
}

// DecodeRecord parses a record line produced by EncodeRecord.
func DecodeRecord(line string) (*Package, error) {
	return DecodeRecordAt(line, time.Now())
}

// DecodeRecordAt parses a record line. When the line carries no readable
// date-added field (older files, or a date in another layout) the package
// is stamped with now.
func DecodeRecordAt(line string, now time.Time) (*Package, error) {
	fields := strings.Split(line, recordDelimiter)
	if len(fields) < minRecordFields {
		return nil, &FormatError{
			Record: line,
			Reason: fmt.Sprintf("expected at least %d fields, got %d", minRecordFields, len(fields)),
		}
	}

	mass, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return nil, &FormatError{Record: line, Reason: "invalid mass", Err: err}
	}

	dateAdded := now
	if len(fields) > minRecordFields {
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(fields[4])); err == nil {
			dateAdded = t
		}
	}

	return &Package{
		SerialNumber: fields[0],
		QualityMark:  fields[1],
		Mass:         mass,
		Type:         fields[3],
		DateAdded:    dateAdded,
	}, nil
}

func formatMass(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}
