// Package suggest computes progressive overload hints for unfilled exercise
// inputs from the most recent earlier week that recorded the same slot.
package suggest

import (
	"strconv"
	"strings"

	"github.com/carpenike/repcal/internal/metrics"
	"github.com/carpenike/repcal/internal/models"
	"github.com/carpenike/repcal/internal/progress"
)

// Suggestion holds hint values per field and the week they were derived
// from. Hints are never written to the store unless accepted.
type Suggestion struct {
	SourceWeek int               `json:"sourceWeek"`
	Fields     map[string]string `json:"fields"`
}

// Suggest returns hints for the exercise at (week, day, index). ok is false
// in week 1, when no earlier week recorded usable data for the slot, and
// when every hinted field already holds a value this week.
func Suggest(p *models.Program, r progress.Reader, week, day, index int) (Suggestion, bool) {
	s, ok := suggest(p, r, week, day, index)
	metrics.RecordSuggestion(ok)
	return s, ok
}

func suggest(p *models.Program, r progress.Reader, week, day, index int) (Suggestion, bool) {
	if week <= 1 {
		return Suggestion{}, false
	}
	ex, ok := p.ExerciseAt(week, day, index)
	if !ok {
		return Suggestion{}, false
	}

	sourceWeek, source := findSource(r, week, day, index)
	if source == nil {
		return Suggestion{}, false
	}
	weeks := week - sourceWeek
	st := StrategyFor(ex.Category)

	var entered models.ProgressData
	if cur, ok := r.Get(week, day, index); ok {
		entered = cur.Data
	}

	fields := make(map[string]string, len(source))
	for name, raw := range source {
		if hasValue(entered[name]) {
			continue
		}
		var v string
		switch models.KindOfField(name) {
		case models.FieldWeight:
			v = progressWeight(raw, st, sourceWeek, weeks)
		case models.FieldReps:
			v = progressReps(raw, st, sourceWeek, weeks)
		case models.FieldTime:
			v = progressTime(raw, st, sourceWeek, weeks)
		case models.FieldMeasure:
			v = raw
		default:
			continue
		}
		fields[name] = v
	}
	if len(fields) == 0 {
		return Suggestion{}, false
	}
	return Suggestion{SourceWeek: sourceWeek, Fields: fields}, true
}

// findSource walks back from week-1 to week 1 and returns the first record
// with usable values, stringified.
func findSource(r progress.Reader, week, day, index int) (int, map[string]string) {
	for w := week - 1; w >= 1; w-- {
		rec, ok := r.Get(w, day, index)
		if !ok {
			continue
		}
		if values := usableValues(rec.Data); len(values) > 0 {
			return w, values
		}
	}
	return 0, nil
}

// usableValues drops the manual-complete flag, notes, blanks and booleans,
// and renders numbers as strings.
func usableValues(data models.ProgressData) map[string]string {
	out := make(map[string]string)
	for name, v := range data {
		if name == models.FieldNameManualComplete || name == models.FieldNameNotes {
			continue
		}
		switch val := v.(type) {
		case string:
			if strings.TrimSpace(val) != "" {
				out[name] = val
			}
		case float64:
			out[name] = strconv.FormatFloat(val, 'f', -1, 64)
		case int:
			out[name] = strconv.Itoa(val)
		}
	}
	return out
}

func hasValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case bool:
		return val
	}
	return true
}

// Merge fills every blank field of data with the suggested value and
// returns the result. Entered values are kept.
func (s Suggestion) Merge(data models.ProgressData) models.ProgressData {
	out := data.Clone()
	if out == nil {
		out = models.ProgressData{}
	}
	for name, v := range s.Fields {
		if !hasValue(out[name]) {
			out[name] = v
		}
	}
	return out
}
