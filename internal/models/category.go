package models

import (
	"fmt"
	"strings"
)

// Category classifies an exercise. It selects the progress input schema and
// the progression rule the suggestion engine applies.
type Category string

const (
	CategoryStrength    Category = "strength"
	CategoryCardio      Category = "cardio"
	CategoryTime        Category = "time"
	CategoryBodyweight  Category = "bodyweight"
	CategoryFlexibility Category = "flexibility"
	CategoryMobility    Category = "mobility"
	CategoryRest        Category = "rest"
	CategoryEMOM        Category = "emom"
	CategoryAMRAP       Category = "amrap"
	CategoryCircuit     Category = "circuit"
	CategoryLifestyle   Category = "lifestyle"
	CategoryOther       Category = "other"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryStrength, CategoryCardio, CategoryTime, CategoryBodyweight,
	CategoryFlexibility, CategoryMobility, CategoryRest, CategoryEMOM,
	CategoryAMRAP, CategoryCircuit, CategoryLifestyle, CategoryOther,
}

// Normalize lowercases the category and maps anything unknown to
// CategoryOther.
func (c Category) Normalize() Category {
	n := Category(strings.ToLower(strings.TrimSpace(string(c))))
	for _, known := range Categories {
		if n == known {
			return n
		}
	}
	return CategoryOther
}

// FieldKind tells the suggestion engine how a progress field progresses.
type FieldKind int

const (
	FieldText    FieldKind = iota // free text, never progressed
	FieldWeight                   // load, progressed by weight rule
	FieldReps                     // repetitions, progressed by reps rule
	FieldTime                     // seconds or MM:SS, progressed by time rule
	FieldMeasure                  // numeric but not progressed (distance, pace, rounds)
	FieldFlag                     // boolean checkbox
)

func (k FieldKind) String() string {
	switch k {
	case FieldText:
		return "text"
	case FieldWeight:
		return "weight"
	case FieldReps:
		return "reps"
	case FieldTime:
		return "time"
	case FieldMeasure:
		return "measure"
	case FieldFlag:
		return "flag"
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// MarshalText renders the kind by name for JSON consumers.
func (k FieldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name written by MarshalText.
func (k *FieldKind) UnmarshalText(b []byte) error {
	for _, kind := range []FieldKind{FieldText, FieldWeight, FieldReps, FieldTime, FieldMeasure, FieldFlag} {
		if kind.String() == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("models: unknown field kind %q", b)
}

// Field is one input of an exercise's progress schema.
type Field struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
}

// Progress field names shared by several categories.
const (
	FieldNameNotes          = "notes"
	FieldNameDuration       = "duration"
	FieldNameDistance       = "distance"
	FieldNamePace           = "pace"
	FieldNameRounds         = "rounds"
	FieldNamePartialReps    = "partial_reps"
	FieldNameTotalTime      = "total_time"
	FieldNameCompleted      = "completed"
	FieldNameManualComplete = "_manualComplete"
)

// Fields returns the input schema for the category given the exercise's set
// count. Rest exercises are informational and have no inputs.
func (c Category) Fields(sets int) []Field {
	if sets < 1 {
		sets = 1
	}
	switch c.Normalize() {
	case CategoryStrength:
		fields := make([]Field, 0, sets*2)
		for n := 1; n <= sets; n++ {
			fields = append(fields,
				Field{Name: SetFieldName(n, "weight"), Kind: FieldWeight},
				Field{Name: SetFieldName(n, "reps"), Kind: FieldReps},
			)
		}
		return fields
	case CategoryBodyweight:
		fields := make([]Field, 0, sets)
		for n := 1; n <= sets; n++ {
			fields = append(fields, Field{Name: SetFieldName(n, "reps"), Kind: FieldReps})
		}
		return fields
	case CategoryTime:
		fields := make([]Field, 0, sets)
		for n := 1; n <= sets; n++ {
			fields = append(fields, Field{Name: SetFieldName(n, "time"), Kind: FieldTime})
		}
		return fields
	case CategoryCardio:
		return []Field{
			{Name: FieldNameDuration, Kind: FieldTime},
			{Name: FieldNameDistance, Kind: FieldMeasure},
			{Name: FieldNamePace, Kind: FieldMeasure},
		}
	case CategoryFlexibility, CategoryMobility:
		return []Field{
			{Name: FieldNameDuration, Kind: FieldTime},
			{Name: FieldNameNotes, Kind: FieldText},
		}
	case CategoryEMOM:
		return []Field{
			{Name: FieldNameRounds, Kind: FieldMeasure},
			{Name: FieldNameNotes, Kind: FieldText},
		}
	case CategoryAMRAP:
		return []Field{
			{Name: FieldNameRounds, Kind: FieldMeasure},
			{Name: FieldNamePartialReps, Kind: FieldReps},
			{Name: FieldNameNotes, Kind: FieldText},
		}
	case CategoryCircuit:
		return []Field{
			{Name: FieldNameRounds, Kind: FieldMeasure},
			{Name: FieldNameTotalTime, Kind: FieldTime},
			{Name: FieldNameNotes, Kind: FieldText},
		}
	case CategoryLifestyle:
		return []Field{
			{Name: FieldNameCompleted, Kind: FieldFlag},
			{Name: FieldNameNotes, Kind: FieldText},
		}
	case CategoryRest:
		return nil
	}
	return []Field{{Name: FieldNameNotes, Kind: FieldText}}
}

// SetFieldName builds a per-set field name such as "set2_weight".
func SetFieldName(set int, suffix string) string {
	return fmt.Sprintf("set%d_%s", set, suffix)
}

// KindOfField classifies a stored field by name. Historical records may hold
// fields the current schema no longer has, so classification cannot rely on
// the exercise definition.
func KindOfField(name string) FieldKind {
	switch {
	case name == FieldNameNotes:
		return FieldText
	case name == FieldNameCompleted || name == FieldNameManualComplete:
		return FieldFlag
	case strings.HasSuffix(name, "weight"):
		return FieldWeight
	case strings.HasSuffix(name, "reps"):
		return FieldReps
	case strings.HasSuffix(name, "time") || name == FieldNameDuration:
		return FieldTime
	}
	return FieldMeasure
}
