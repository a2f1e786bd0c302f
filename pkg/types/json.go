package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Amount is a monetary amount. The marketplace returns amounts either as a
// JSON number or as a string; outbound it expects a stringified integer
// (truncated, not rounded).
type Amount float64

// UnmarshalJSON accepts both `"100"` and `100`.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", s, err)
	}

	*a = Amount(value)
	return nil
}

// MarshalJSON serializes the amount as a stringified truncated integer,
// which is the only form the listing endpoints accept.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(a)))
}

const timestampLayout = "2006-01-02T15:04:05"

// Timestamp is an ISO-8601 instant. Outbound values carry millisecond
// precision with a literal Z suffix (`.000Z`), matching the API contract.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t as a marketplace timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// UnmarshalJSON accepts RFC 3339 timestamps with or without fractional
// seconds. Null and empty strings decode to the zero value.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, timestampLayout} {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("parse timestamp %q", s)
}

// MarshalJSON serializes as `2006-01-02T15:04:05.000Z`.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(timestampLayout) + ".000Z")
}

// FormatDate renders t as YYYY-MM-DD, the form the query endpoints expect
// for fromDate/toDate parameters. Returns "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// CommaSeparated joins values into the CSV form used by list query
// parameters. Returns "" when values is empty so the parameter is dropped.
func CommaSeparated(values []string) string {
	return strings.Join(values, ",")
}
