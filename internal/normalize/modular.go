package normalize

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/carpenike/repcal/internal/models"
)

// ErrIncompleteConfig is returned when a required piece of a template or
// modular config set is missing. Callers fall back to FallbackProgram.
var ErrIncompleteConfig = errors.New("incomplete program config")

// ModularConfig is the config-driven program format. Metadata, Library and
// Sections are required; Sessions, when present, replace generation.
type ModularConfig struct {
	Metadata     *ProgramMetadata             `json:"programMetadata"`
	Phases       []Phase                      `json:"phaseDefinitions"`
	DayTemplates map[int]*ModularDay          `json:"dayTemplates"`
	Library      []LibraryExercise            `json:"exerciseLibrary"`
	Sections     map[string]SectionDefinition `json:"sectionDefinitions"`
	Sessions     []Session                    `json:"workoutSessions"`
}

// ProgramMetadata identifies a modular program.
type ProgramMetadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
	Weeks       int    `json:"weeks"`
	DaysPerWeek int    `json:"daysPerWeek"`
}

// Phase is a block of weeks sharing progression parameters.
type Phase struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	StartWeek   int              `json:"startWeek"`
	EndWeek     int              `json:"endWeek"`
	Progression PhaseProgression `json:"progression"`
}

// PhaseProgression carries the targets a phase applies to generated
// exercises. It also feeds {{repTarget}}, {{sets}}, {{timeTarget}} and
// {{phase}} placeholders.
type PhaseProgression struct {
	RepTarget  models.FlexString `json:"repTarget"`
	Sets       int               `json:"sets"`
	TimeTarget models.FlexString `json:"timeTarget"`
}

// ModularDay lists the section ids scheduled on a weekday.
type ModularDay struct {
	Type     string   `json:"type"`
	Focus    string   `json:"focus"`
	Duration string   `json:"duration"`
	Sections []string `json:"sections"`
}

// LibraryExercise is a reusable exercise definition.
type LibraryExercise struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Category models.Category   `json:"category"`
	Sets     int               `json:"sets"`
	Reps     models.FlexString `json:"reps"`
	Time     models.FlexString `json:"time"`
	Notes    string            `json:"notes"`
}

// SectionDefinition constrains which library exercises fill a section:
// explicit Exercises ids win, otherwise the library is filtered by
// Categories and truncated to Count (0 = no limit).
type SectionDefinition struct {
	Name       string            `json:"name"`
	Categories []models.Category `json:"categories"`
	Count      int               `json:"count"`
	Exercises  []string          `json:"exercises"`
}

// Session is an explicit workout. Weeks (or Week) limits it to specific
// weeks; with neither it repeats every week.
type Session struct {
	Week     int              `json:"week"`
	Weeks    []int            `json:"weeks"`
	Day      int              `json:"day"`
	Type     string           `json:"type"`
	Focus    string           `json:"focus"`
	Duration string           `json:"duration"`
	Sections []SessionSection `json:"sections"`
}

// SessionSection references a section definition and lists its exercises.
type SessionSection struct {
	SectionID string            `json:"sectionId"`
	Name      string            `json:"name"`
	Exercises []SessionExercise `json:"exercises"`
}

// SessionExercise references a library exercise, optionally overriding its
// prescription.
type SessionExercise struct {
	ExerciseID string            `json:"exerciseId"`
	Sets       int               `json:"sets"`
	Reps       models.FlexString `json:"reps"`
	Time       models.FlexString `json:"time"`
	Notes      string            `json:"notes"`
}

func (s Session) appliesTo(week int) bool {
	if len(s.Weeks) > 0 {
		for _, w := range s.Weeks {
			if w == week {
				return true
			}
		}
		return false
	}
	if s.Week > 0 {
		return s.Week == week
	}
	return true
}

// validate checks the required pieces.
func (c *ModularConfig) validate() error {
	var missing []string
	if c.Metadata == nil {
		missing = append(missing, "programMetadata")
	}
	if len(c.Library) == 0 {
		missing = append(missing, "exerciseLibrary")
	}
	if len(c.Sections) == 0 {
		missing = append(missing, "sectionDefinitions")
	}
	if len(missing) > 0 {
		return fmt.Errorf("normalize: modular: %w: %s", ErrIncompleteConfig, strings.Join(missing, ", "))
	}
	if c.Metadata.Weeks < 1 {
		return &models.ValidationError{Field: "programMetadata.weeks", Message: "must be at least 1"}
	}
	return nil
}

// phaseFor returns the phase covering week, or the first phase when none
// does. ok is false when there are no phases at all.
func (c *ModularConfig) phaseFor(week int) (Phase, bool) {
	for _, ph := range c.Phases {
		if week >= ph.StartWeek && (ph.EndWeek == 0 || week <= ph.EndWeek) {
			return ph, true
		}
	}
	if len(c.Phases) > 0 {
		return c.Phases[0], true
	}
	return Phase{}, false
}

func phaseVars(ph Phase) Vars {
	vars := Vars{"phase": ph.Name}
	if ph.Progression.RepTarget != "" {
		vars["repTarget"] = ph.Progression.RepTarget.String()
	}
	if ph.Progression.Sets > 0 {
		vars["sets"] = strconv.Itoa(ph.Progression.Sets)
	}
	if ph.Progression.TimeTarget != "" {
		vars["timeTarget"] = ph.Progression.TimeTarget.String()
	}
	return vars
}

// NormalizeModular builds a program from a modular config set. Explicit
// sessions are resolved against the libraries; without sessions, sections
// are generated from the day templates and section definitions.
func NormalizeModular(c *ModularConfig) (*models.Program, error) {
	if c == nil {
		return nil, fmt.Errorf("normalize: modular: %w: programMetadata", ErrIncompleteConfig)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	md := c.Metadata
	daysPerWeek := md.DaysPerWeek
	if daysPerWeek < 1 {
		daysPerWeek = models.DefaultDaysPerWeek
	}
	p := &models.Program{
		ID:          md.ID,
		Name:        md.Name,
		Description: md.Description,
		Version:     md.Version,
		Weeks:       md.Weeks,
		DaysPerWeek: daysPerWeek,
		Exercises:   make(map[int]map[int]*models.DayPlan, md.Weeks),
	}
	if p.ID == "" {
		p.ID = models.Slugify(md.Name)
	}

	library := make(map[string]LibraryExercise, len(c.Library))
	for _, ex := range c.Library {
		library[ex.ID] = ex
	}

	for week := 1; week <= md.Weeks; week++ {
		var days map[int]*models.DayPlan
		if len(c.Sessions) > 0 {
			days = c.sessionDays(week, daysPerWeek, library)
		} else {
			days = c.generatedDays(week, daysPerWeek, library)
		}
		p.Exercises[week] = days
	}
	return p, nil
}

// sessionDays resolves the explicit sessions scheduled in week. Unknown
// section or exercise ids are skipped with a warning.
func (c *ModularConfig) sessionDays(week, daysPerWeek int, library map[string]LibraryExercise) map[int]*models.DayPlan {
	days := make(map[int]*models.DayPlan)
	for _, s := range c.Sessions {
		if !s.appliesTo(week) {
			continue
		}
		if s.Day < 1 || s.Day > daysPerWeek {
			log.Printf("normalize: modular: session day %d outside 1..%d, skipped", s.Day, daysPerWeek)
			continue
		}

		plan := &models.DayPlan{Type: s.Type, Focus: s.Focus, Duration: s.Duration}
		if dt := c.DayTemplates[s.Day]; dt != nil {
			if plan.Type == "" {
				plan.Type = dt.Type
			}
			if plan.Focus == "" {
				plan.Focus = dt.Focus
			}
			if plan.Duration == "" {
				plan.Duration = dt.Duration
			}
		}

		for _, ss := range s.Sections {
			def, ok := c.Sections[ss.SectionID]
			if !ok {
				log.Printf("normalize: modular: week %d day %d: unknown section %q, skipped", week, s.Day, ss.SectionID)
				continue
			}
			section := models.Section{Name: def.Name}
			if ss.Name != "" {
				section.Name = ss.Name
			}
			for _, se := range ss.Exercises {
				lib, ok := library[se.ExerciseID]
				if !ok {
					log.Printf("normalize: modular: week %d day %d: unknown exercise %q, skipped", week, s.Day, se.ExerciseID)
					continue
				}
				section.Exercises = append(section.Exercises, se.apply(lib.exercise()))
			}
			plan.Sections = append(plan.Sections, section)
		}

		if ph, ok := c.phaseFor(week); ok {
			substituteDay(plan, phaseVars(ph))
		}
		days[s.Day] = plan
	}
	return days
}

// generatedDays synthesizes a week from the day templates. Generation is
// best-effort but stable: library order drives selection.
func (c *ModularConfig) generatedDays(week, daysPerWeek int, library map[string]LibraryExercise) map[int]*models.DayPlan {
	days := make(map[int]*models.DayPlan)
	phase, hasPhase := c.phaseFor(week)

	dayNums := make([]int, 0, len(c.DayTemplates))
	for d := range c.DayTemplates {
		dayNums = append(dayNums, d)
	}
	sort.Ints(dayNums)

	for _, day := range dayNums {
		if day < 1 || day > daysPerWeek {
			continue
		}
		dt := c.DayTemplates[day]
		if dt == nil {
			days[day] = nil
			continue
		}
		plan := &models.DayPlan{Type: dt.Type, Focus: dt.Focus, Duration: dt.Duration}
		for _, sid := range dt.Sections {
			def, ok := c.Sections[sid]
			if !ok {
				log.Printf("normalize: modular: day %d: unknown section %q, skipped", day, sid)
				continue
			}
			section := models.Section{Name: def.Name}
			for _, ex := range c.selectExercises(def, library) {
				if hasPhase {
					ex = applyPhase(ex, phase)
				}
				section.Exercises = append(section.Exercises, ex)
			}
			plan.Sections = append(plan.Sections, section)
		}
		if hasPhase {
			substituteDay(plan, phaseVars(phase))
		}
		days[day] = plan
	}
	return days
}

func (c *ModularConfig) selectExercises(def SectionDefinition, library map[string]LibraryExercise) []models.Exercise {
	var out []models.Exercise
	if len(def.Exercises) > 0 {
		for _, id := range def.Exercises {
			lib, ok := library[id]
			if !ok {
				log.Printf("normalize: modular: section %q: unknown exercise %q, skipped", def.Name, id)
				continue
			}
			out = append(out, lib.exercise())
		}
		return out
	}

	for _, lib := range c.Library {
		if !matchesCategory(lib.Category, def.Categories) {
			continue
		}
		out = append(out, lib.exercise())
		if def.Count > 0 && len(out) == def.Count {
			break
		}
	}
	return out
}

func matchesCategory(c models.Category, allowed []models.Category) bool {
	if len(allowed) == 0 {
		return true
	}
	n := c.Normalize()
	for _, a := range allowed {
		if a.Normalize() == n {
			return true
		}
	}
	return false
}

// applyPhase sets the phase targets on exercises they apply to.
func applyPhase(ex models.Exercise, ph Phase) models.Exercise {
	pr := ph.Progression
	switch ex.Category.Normalize() {
	case models.CategoryStrength, models.CategoryBodyweight:
		if pr.RepTarget != "" {
			ex.Reps = pr.RepTarget
		}
		if pr.Sets > 0 {
			ex.Sets = pr.Sets
		}
	case models.CategoryTime, models.CategoryFlexibility:
		if pr.TimeTarget != "" {
			ex.Time = pr.TimeTarget
		}
	}
	return ex
}

func (l LibraryExercise) exercise() models.Exercise {
	return models.Exercise{
		Name:     l.Name,
		Category: l.Category,
		Sets:     l.Sets,
		Reps:     l.Reps,
		Time:     l.Time,
		Notes:    l.Notes,
	}
}

func (se SessionExercise) apply(ex models.Exercise) models.Exercise {
	if se.Sets > 0 {
		ex.Sets = se.Sets
	}
	if se.Reps != "" {
		ex.Reps = se.Reps
	}
	if se.Time != "" {
		ex.Time = se.Time
	}
	if se.Notes != "" {
		ex.Notes = se.Notes
	}
	return ex
}
