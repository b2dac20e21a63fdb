package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ProgressData maps progress field names to the values the user entered.
// Values are strings or booleans as they arrive from the UI; numbers are
// tolerated (JSON numbers decode as float64).
type ProgressData map[string]any

// Clone returns a shallow copy; values are scalars.
func (d ProgressData) Clone() ProgressData {
	if d == nil {
		return nil
	}
	c := make(ProgressData, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// String returns the value of a field as a string, or "" when it is absent
// or not a string.
func (d ProgressData) String(field string) string {
	s, _ := d[field].(string)
	return s
}

// ProgressRecord is the stored progress of one exercise slot. It is replaced
// wholesale on every save.
type ProgressRecord struct {
	Week          int          `json:"week"`
	Day           int          `json:"day"`
	ExerciseIndex int          `json:"exerciseIndex"`
	Data          ProgressData `json:"data"`
	Completed     bool         `json:"completed"`
	Timestamp     time.Time    `json:"timestamp"`
}

// Key returns the record's store key.
func (r *ProgressRecord) Key() SlotKey {
	return SlotKey{Week: r.Week, Day: r.Day, Exercise: r.ExerciseIndex}
}

// Clone returns a copy with its own data map.
func (r *ProgressRecord) Clone() *ProgressRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Data = r.Data.Clone()
	return &c
}

// SlotKey addresses a progress record: (week, day, global exercise index).
type SlotKey struct {
	Week     int
	Day      int
	Exercise int
}

// String renders the key in its persisted form, e.g. "w2-d3-e0".
func (k SlotKey) String() string {
	return fmt.Sprintf("w%d-d%d-e%d", k.Week, k.Day, k.Exercise)
}

// MarshalText implements encoding.TextMarshaler so keys can be JSON map keys.
func (k SlotKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SlotKey) UnmarshalText(b []byte) error {
	parsed, err := ParseSlotKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseSlotKey parses a persisted key of the form "w{week}-d{day}-e{index}".
func ParseSlotKey(s string) (SlotKey, error) {
	var k SlotKey
	n, err := fmt.Sscanf(s, "w%d-d%d-e%d", &k.Week, &k.Day, &k.Exercise)
	if err != nil || n != 3 || k.String() != s {
		return SlotKey{}, fmt.Errorf("models: invalid progress key %q", s)
	}
	return k, nil
}

// IsComplete reports whether data counts as an entered exercise: any value
// that is a non-blank trimmed string, a number above zero, or true. The
// string "0" counts (it was typed); the number 0 does not.
func IsComplete(data ProgressData) bool {
	for _, v := range data {
		if valueEntered(v) {
			return true
		}
	}
	return false
}

func valueEntered(v any) bool {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) != ""
	case bool:
		return val
	case float64:
		return val > 0
	case float32:
		return val > 0
	case int:
		return val > 0
	case int64:
		return val > 0
	case json.Number:
		f, err := val.Float64()
		return err == nil && f > 0
	}
	return false
}
