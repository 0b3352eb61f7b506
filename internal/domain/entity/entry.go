package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format entries use on the wire
const DateLayout = "2006-01-02"

// Entry represents a single accounting transaction (lançamento) under audit.
// Value and Date are pointers so that a missing field can be told apart
// from a zero one.
type Entry struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"client_id,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Value       *float64   `json:"value,omitempty"`
	Description string     `json:"description"`
	Kind        EntryKind  `json:"kind"`
	Category    string     `json:"category,omitempty"`
	Confidence  float64    `json:"confidence"`
}

// Amount returns the entry value, or 0 when it is missing
func (e Entry) Amount() float64 {
	if e.Value == nil {
		return 0
	}
	return *e.Value
}

// MarshalJSON writes Date as a calendar date
func (e Entry) MarshalJSON() ([]byte, error) {
	type plain Entry
	aux := struct {
		plain
		Date *string `json:"date,omitempty"`
	}{plain: plain(e)}
	if e.Date != nil {
		d := e.Date.Format(DateLayout)
		aux.Date = &d
	}
	return json.Marshal(aux)
}

// UnmarshalJSON accepts Date as a calendar date or an RFC3339 timestamp.
// An empty date string leaves Date nil.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	aux := struct {
		*plain
		Date *string `json:"date"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Date == nil {
		return nil
	}

	e.Date = nil
	if strings.TrimSpace(*aux.Date) == "" {
		return nil
	}
	t, err := ParseDate(*aux.Date)
	if err != nil {
		return err
	}
	e.Date = &t
	return nil
}

// ParseDate parses a calendar date, falling back to RFC3339
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want %s or RFC3339", s, DateLayout)
	}
	return t, nil
}

// Period bounds an audit run. Both ends are inclusive calendar dates.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t falls on a day inside the period
func (p Period) Contains(t time.Time) bool {
	day := truncateDay(t)
	return !day.Before(truncateDay(p.From)) && !day.After(truncateDay(p.To))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CategoryAverages maps a category to its reference average value
type CategoryAverages map[string]float64

// BaselineAverage is used for categories with no reference data
const BaselineAverage = 1000.0

// For returns the reference average for a category
func (a CategoryAverages) For(category string) float64 {
	if avg, ok := a[category]; ok && avg > 0 {
		return avg
	}
	return BaselineAverage
}

// Merge returns a copy of a overlaid with the positive values of other
func (a CategoryAverages) Merge(other CategoryAverages) CategoryAverages {
	merged := make(CategoryAverages, len(a)+len(other))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range other {
		if v > 0 {
			merged[k] = v
		}
	}
	return merged
}
