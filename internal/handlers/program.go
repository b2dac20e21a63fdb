package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/carpenike/repcal/internal/app"
	"github.com/carpenike/repcal/internal/models"
	"github.com/carpenike/repcal/internal/suggest"
)

// Program serves the read-only program views.
type Program struct {
	App *app.App
}

// Show returns the normalized live program.
func (h *Program) Show(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.App.Program())
}

type scheduleResponse struct {
	app.Position
	StartDate string `json:"startDate,omitempty"`
	ViewWeek  int    `json:"viewWeek"`
	ViewDay   int    `json:"viewDay"`
}

// Schedule returns today's position in the program.
func (h *Program) Schedule(w http.ResponseWriter, r *http.Request) {
	pos := h.App.Schedule()
	week, day := pos.DefaultView(h.App.Program())
	writeJSON(w, http.StatusOK, scheduleResponse{
		Position:  pos,
		StartDate: h.App.Settings().StartDate,
		ViewWeek:  week,
		ViewDay:   day,
	})
}

// Completion returns the whole-program completion.
func (h *Program) Completion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"completion": h.App.ProgramCompletion()})
}

// Week returns the completion of a week and each of its days.
func (h *Program) Week(w http.ResponseWriter, r *http.Request) {
	week, ok := intParam(w, r, "week", 1)
	if !ok {
		return
	}
	if week > h.App.Program().Weeks {
		writeError(w, r, &models.NotFoundError{Kind: "week", ID: strconv.Itoa(week)})
		return
	}
	writeJSON(w, http.StatusOK, h.App.WeekSummary(week))
}

type exerciseView struct {
	Index      int                    `json:"index"`
	Section    string                 `json:"section"`
	Exercise   models.Exercise        `json:"exercise"`
	Sets       int                    `json:"sets"`
	Fields     []models.Field         `json:"fields"`
	Progress   *models.ProgressRecord `json:"progress,omitempty"`
	Suggestion *suggest.Suggestion    `json:"suggestion,omitempty"`
}

type dayView struct {
	Week       int            `json:"week"`
	Day        int            `json:"day"`
	Rest       bool           `json:"rest"`
	Type       string         `json:"type,omitempty"`
	Focus      string         `json:"focus,omitempty"`
	Duration   string         `json:"duration,omitempty"`
	IsToday    bool           `json:"isToday"`
	Completion int            `json:"completion"`
	Exercises  []exerciseView `json:"exercises"`
}

// Day returns a day plan with each exercise's inputs, saved progress and
// suggestion. Days without a plan come back as rest days.
func (h *Program) Day(w http.ResponseWriter, r *http.Request) {
	week, day, _, ok := slotParams(w, r, false)
	if !ok {
		return
	}
	p := h.App.Program()
	if week > p.Weeks || day > len(p.DayNumbers()) {
		writeError(w, r, &models.NotFoundError{Kind: "day", ID: fmt.Sprintf("%d/%d", week, day)})
		return
	}

	v := dayView{
		Week:       week,
		Day:        day,
		IsToday:    h.App.IsToday(week, day),
		Completion: h.App.DayCompletion(week, day),
		Exercises:  []exerciseView{},
	}
	plan := p.Day(week, day)
	if plan == nil {
		v.Rest = true
		writeJSON(w, http.StatusOK, v)
		return
	}
	v.Type, v.Focus, v.Duration = plan.Type, plan.Focus, plan.Duration

	for _, slot := range p.SlotsForDay(week, day) {
		ev := exerciseView{
			Index:    slot.Global,
			Section:  plan.Sections[slot.Section].Name,
			Exercise: slot.Exercise,
			Sets:     slot.Exercise.EffectiveSets(),
			Fields:   slot.Exercise.Fields(),
		}
		if rec, ok := h.App.ExerciseProgress(week, day, slot.Global); ok {
			ev.Progress = rec
		}
		if s, ok := h.App.Suggest(week, day, slot.Global); ok {
			ev.Suggestion = &s
		}
		v.Exercises = append(v.Exercises, ev)
	}
	writeJSON(w, http.StatusOK, v)
}
