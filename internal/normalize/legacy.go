package normalize

import (
	"fmt"
	"log"

	"github.com/carpenike/repcal/internal/models"
)

// Template is the legacy single-file program format: one day template per
// weekday, cloned for every week, with optional week-bucketed variables.
type Template struct {
	ID                string                                  `json:"id"`
	Name              string                                  `json:"name"`
	Description       string                                  `json:"description"`
	Version           string                                  `json:"version"`
	Weeks             int                                     `json:"weeks"`
	DaysPerWeek       int                                     `json:"daysPerWeek"`
	WorkoutTemplate   map[int]*DayTemplate                    `json:"workoutTemplate"`
	WeeklyProgression map[string]map[string]models.FlexString `json:"weeklyProgression"`
}

// DayTemplate is a day in a legacy template. Older templates list exercises
// flat; newer ones group them in sections.
type DayTemplate struct {
	Type      string            `json:"type"`
	Focus     string            `json:"focus"`
	Duration  string            `json:"duration"`
	Sections  []models.Section  `json:"sections"`
	Exercises []models.Exercise `json:"exercises"`
}

// Week bucket names used by weeklyProgression.
const (
	BucketWeeks1to2 = "weeks1-2"
	BucketWeeks3to4 = "weeks3-4"
	BucketWeeks5to6 = "weeks5-6"
)

// flatSectionName names the single section wrapping a flat exercise list.
const flatSectionName = "Workout"

// ProgressionBucket returns the weeklyProgression bucket for a week. Weeks
// past the last bucket fall back to the first one.
func ProgressionBucket(week int) string {
	switch {
	case week <= 2:
		return BucketWeeks1to2
	case week <= 4:
		return BucketWeeks3to4
	case week <= 6:
		return BucketWeeks5to6
	}
	return BucketWeeks1to2
}

// VarsForWeek resolves every weeklyProgression variable for a week.
func (t *Template) VarsForWeek(week int) Vars {
	if len(t.WeeklyProgression) == 0 {
		return nil
	}
	bucket := ProgressionBucket(week)
	vars := make(Vars, len(t.WeeklyProgression))
	for name, buckets := range t.WeeklyProgression {
		if v, ok := buckets[bucket]; ok {
			vars[name] = v.String()
		} else if v, ok := buckets[BucketWeeks1to2]; ok {
			vars[name] = v.String()
		}
	}
	return vars
}

// plan converts the day template into a fresh DayPlan.
func (d *DayTemplate) plan() *models.DayPlan {
	p := &models.DayPlan{Type: d.Type, Focus: d.Focus, Duration: d.Duration}
	if len(d.Sections) > 0 {
		p.Sections = d.Sections
	} else if len(d.Exercises) > 0 {
		p.Sections = []models.Section{{Name: flatSectionName, Exercises: d.Exercises}}
	}
	// Clone so weeks never share slices with the template or each other.
	return p.Clone()
}

// NormalizeTemplate expands a legacy template into a full program: the day
// templates are deep-cloned for every week and placeholders are filled from
// that week's progression bucket.
func NormalizeTemplate(t *Template) (*models.Program, error) {
	if t == nil || len(t.WorkoutTemplate) == 0 {
		return nil, fmt.Errorf("normalize: template: %w: workoutTemplate", ErrIncompleteConfig)
	}
	if t.Weeks < 1 {
		return nil, &models.ValidationError{Field: "weeks", Message: "must be at least 1"}
	}
	daysPerWeek := t.DaysPerWeek
	if daysPerWeek < 1 {
		daysPerWeek = models.DefaultDaysPerWeek
	}

	p := &models.Program{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Version:     t.Version,
		Weeks:       t.Weeks,
		DaysPerWeek: daysPerWeek,
		Exercises:   make(map[int]map[int]*models.DayPlan, t.Weeks),
	}
	if p.ID == "" {
		p.ID = models.Slugify(t.Name)
	}

	for day := range t.WorkoutTemplate {
		if day < 1 || day > daysPerWeek {
			log.Printf("normalize: template %q: ignoring day %d outside 1..%d", p.ID, day, daysPerWeek)
		}
	}

	for week := 1; week <= t.Weeks; week++ {
		vars := t.VarsForWeek(week)
		days := make(map[int]*models.DayPlan, daysPerWeek)
		for day := 1; day <= daysPerWeek; day++ {
			dt, ok := t.WorkoutTemplate[day]
			if !ok {
				continue
			}
			if dt == nil {
				days[day] = nil
				continue
			}
			plan := dt.plan()
			substituteDay(plan, vars)
			days[day] = plan
		}
		p.Exercises[week] = days
	}

	return p, nil
}
