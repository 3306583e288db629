package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseDate accepts an ISO date ("2006-01-02") or an ISO date-time.
// Values without a zone are read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// DateInput is a date field in a request body. Set reports whether the key
// was present; a present null or empty string yields Set with a nil Time.
type DateInput struct {
	Set  bool
	Time *time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DateInput) UnmarshalJSON(b []byte) error {
	d.Set = true
	d.Time = nil
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = &t
	return nil
}

// Value returns the parsed time, or nil.
func (d DateInput) Value() *time.Time {
	return d.Time
}

// StringList decodes either a JSON array of strings or a comma-separated
// string. Entries are trimmed and empty entries dropped.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*l = StringList{}
		return nil
	}
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		var joined string
		if err2 := json.Unmarshal(b, &joined); err2 != nil {
			return fmt.Errorf("expected a list of strings: %w", err)
		}
		raw = strings.Split(joined, ",")
	}
	out := make(StringList, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}
