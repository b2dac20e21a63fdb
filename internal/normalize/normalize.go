// Package normalize turns program templates and modular config sets into the
// canonical week → day → plan program the rest of the app works with.
package normalize

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/carpenike/repcal/internal/models"
)

// Format identifies the authoring format of a program document.
type Format string

const (
	FormatLegacy  Format = "legacy"
	FormatModular Format = "modular"
)

// Detect inspects the top-level keys of a JSON document.
func Detect(raw []byte) (Format, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return "", fmt.Errorf("normalize: detect format: %w", err)
	}
	if _, ok := probe["workoutTemplate"]; ok {
		return FormatLegacy, nil
	}
	if _, ok := probe["programMetadata"]; ok {
		return FormatModular, nil
	}
	return "", fmt.Errorf("normalize: detect format: %w: neither workoutTemplate nor programMetadata", ErrIncompleteConfig)
}

// NormalizeJSON decodes a legacy template or a combined modular config and
// normalizes it.
func NormalizeJSON(raw []byte) (*models.Program, error) {
	format, err := Detect(raw)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatLegacy:
		var t Template
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("normalize: decode template: %w", err)
		}
		return NormalizeTemplate(&t)
	default:
		var c ModularConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("normalize: decode modular config: %w", err)
		}
		return NormalizeModular(&c)
	}
}

// FallbackProgramID identifies the built-in fallback program.
const FallbackProgramID = "fallback"

// FallbackProgram is the minimal program used when nothing else loads: one
// gym day with a single bodyweight exercise.
func FallbackProgram() *models.Program {
	return &models.Program{
		ID:          FallbackProgramID,
		Name:        "Basic Program",
		Description: "Built-in fallback program",
		Version:     "1",
		Weeks:       1,
		DaysPerWeek: models.DefaultDaysPerWeek,
		Exercises: map[int]map[int]*models.DayPlan{
			1: {
				1: {
					Type:     "gym",
					Focus:    "Full Body",
					Duration: "20 min",
					Sections: []models.Section{{
						Name: flatSectionName,
						Exercises: []models.Exercise{{
							Name:     "Push-ups",
							Category: models.CategoryBodyweight,
							Sets:     models.DefaultSets,
							Reps:     "10",
						}},
					}},
				},
			},
		},
	}
}

// OrFallback returns p, or the fallback program when err is non-nil. The
// error is logged so the caller can still surface it.
func OrFallback(p *models.Program, err error) *models.Program {
	if err != nil || p == nil {
		log.Printf("normalize: using fallback program: %v", err)
		return FallbackProgram()
	}
	return p
}
