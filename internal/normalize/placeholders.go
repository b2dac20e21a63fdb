package normalize

import (
	"regexp"

	"github.com/carpenike/repcal/internal/models"
)

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Vars maps placeholder names to their values for one week.
type Vars map[string]string

// Substitute replaces {{name}} placeholders with their values. Unknown names
// are left verbatim so a missing variable stays visible.
func Substitute(s string, vars Vars) string {
	if len(vars) == 0 || !placeholderRe.MatchString(s) {
		return s
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}

// substituteDay rewrites every string field of plan in place.
func substituteDay(plan *models.DayPlan, vars Vars) {
	if plan == nil || len(vars) == 0 {
		return
	}
	plan.Type = Substitute(plan.Type, vars)
	plan.Focus = Substitute(plan.Focus, vars)
	plan.Duration = Substitute(plan.Duration, vars)
	for si := range plan.Sections {
		s := &plan.Sections[si]
		s.Name = Substitute(s.Name, vars)
		for ei := range s.Exercises {
			substituteExercise(&s.Exercises[ei], vars)
		}
	}
}

func substituteExercise(ex *models.Exercise, vars Vars) {
	ex.Name = Substitute(ex.Name, vars)
	ex.Category = models.Category(Substitute(string(ex.Category), vars))
	ex.Reps = models.FlexString(Substitute(string(ex.Reps), vars))
	ex.Time = models.FlexString(Substitute(string(ex.Time), vars))
	ex.Notes = Substitute(ex.Notes, vars)
}

// HasUnresolvedPlaceholders reports whether any string in the program still
// carries a {{name}} placeholder. Persisted programs written before a template
// variable existed look like this and should be regenerated.
func HasUnresolvedPlaceholders(p *models.Program) bool {
	if p == nil {
		return false
	}
	for _, days := range p.Exercises {
		for _, plan := range days {
			if plan == nil {
				continue
			}
			if hasPlaceholder(plan.Type, plan.Focus, plan.Duration) {
				return true
			}
			for _, s := range plan.Sections {
				if hasPlaceholder(s.Name) {
					return true
				}
				for _, ex := range s.Exercises {
					if hasPlaceholder(ex.Name, string(ex.Category), string(ex.Reps), string(ex.Time), ex.Notes) {
						return true
					}
				}
			}
		}
	}
	return false
}

func hasPlaceholder(values ...string) bool {
	for _, v := range values {
		if placeholderRe.MatchString(v) {
			return true
		}
	}
	return false
}
