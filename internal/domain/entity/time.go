package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// Layout is the wire format of every timestamp: ISO-8601 in UTC with milliseconds.
const Layout = "2006-01-02T15:04:05.000Z"

// Epoch is the default pull cursor so the first pull fetches everything.
var Epoch = Time{time.Unix(0, 0).UTC()}

// Time is a UTC instant truncated to millisecond precision.
type Time struct {
	time.Time
}

func NewTime(t time.Time) Time {
	return Time{t.UTC().Truncate(time.Millisecond)}
}

func Now() Time {
	return NewTime(time.Now())
}

func ParseTime(s string) (Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return NewTime(t), nil
}

func (t Time) String() string {
	return t.UTC().Format(Layout)
}

func (t Time) After(o Time) bool {
	return t.Time.After(o.Time)
}

func (t Time) Before(o Time) bool {
	return t.Time.Before(o.Time)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time must be a string: %w", err)
	}
	if s == "" {
		*t = Time{}
		return nil
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Schema describes Time as a date-time string in generated OpenAPI documents.
func (Time) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:     huma.TypeString,
		Format:   "date-time",
		Examples: []any{"2024-01-01T12:00:00.000Z"},
	}
}
