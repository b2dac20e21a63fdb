package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// DefaultDaysPerWeek is used when a template omits daysPerWeek.
const DefaultDaysPerWeek = 7

// DefaultSets is the set count assumed for strength and bodyweight exercises
// that do not declare one.
const DefaultSets = 3

// Program is the canonical, normalized program: week → day → plan. A nil
// DayPlan (or a missing day) is a rest day.
type Program struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description,omitempty"`
	Version     string                   `json:"version,omitempty"`
	Weeks       int                      `json:"weeks"`
	DaysPerWeek int                      `json:"daysPerWeek"`
	Exercises   map[int]map[int]*DayPlan `json:"exercises"`
}

// DayPlan is one scheduled workout. Section order determines each exercise's
// global index, which is the only key tying an exercise to its progress.
type DayPlan struct {
	Type     string    `json:"type"`
	Focus    string    `json:"focus,omitempty"`
	Duration string    `json:"duration,omitempty"`
	Sections []Section `json:"sections"`
}

// Section is a named group of exercises within a day.
type Section struct {
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// Exercise is a value object: it has no identity beyond its position.
type Exercise struct {
	Name     string     `json:"name"`
	Category Category   `json:"category"`
	Sets     int        `json:"sets,omitempty"`
	Reps     FlexString `json:"reps,omitempty"`
	Time     FlexString `json:"time,omitempty"`
	Notes    string     `json:"notes,omitempty"`
}

// EffectiveSets returns the declared set count, or DefaultSets for strength
// and bodyweight exercises that leave it out. Other categories default to 1.
func (e Exercise) EffectiveSets() int {
	if e.Sets > 0 {
		return e.Sets
	}
	switch e.Category.Normalize() {
	case CategoryStrength, CategoryBodyweight:
		return DefaultSets
	}
	return 1
}

// Fields returns the progress input schema for this exercise.
func (e Exercise) Fields() []Field {
	return e.Category.Fields(e.EffectiveSets())
}

// ExerciseSlot locates an exercise inside a program. Global is the
// correlation key used by the progress store; reordering sections changes it.
type ExerciseSlot struct {
	Week     int      `json:"week"`
	Day      int      `json:"day"`
	Section  int      `json:"section"`
	Local    int      `json:"local"`
	Global   int      `json:"global"`
	Exercise Exercise `json:"exercise"`
}

// Day returns the plan for a week/day, or nil for rest days and for
// coordinates outside the program.
func (p *Program) Day(week, day int) *DayPlan {
	if p == nil || p.Exercises == nil {
		return nil
	}
	days, ok := p.Exercises[week]
	if !ok {
		return nil
	}
	return days[day]
}

// ExercisesForDay returns the day's exercises flattened across sections in
// global index order. Rest days return nil.
func (p *Program) ExercisesForDay(week, day int) []Exercise {
	return p.Day(week, day).Flatten()
}

// SlotsForDay returns every exercise slot of a day in global index order.
func (p *Program) SlotsForDay(week, day int) []ExerciseSlot {
	plan := p.Day(week, day)
	if plan == nil {
		return nil
	}
	var slots []ExerciseSlot
	global := 0
	for si, s := range plan.Sections {
		for li, ex := range s.Exercises {
			slots = append(slots, ExerciseSlot{
				Week: week, Day: day, Section: si, Local: li, Global: global, Exercise: ex,
			})
			global++
		}
	}
	return slots
}

// ExerciseAt returns the exercise at a global index.
func (p *Program) ExerciseAt(week, day, index int) (Exercise, bool) {
	exercises := p.ExercisesForDay(week, day)
	if index < 0 || index >= len(exercises) {
		return Exercise{}, false
	}
	return exercises[index], true
}

// WeekNumbers returns the weeks present in the program in ascending order.
func (p *Program) WeekNumbers() []int {
	if p == nil {
		return nil
	}
	weeks := make([]int, 0, len(p.Exercises))
	for w := range p.Exercises {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}

// DayNumbers returns the configured day numbers 1..DaysPerWeek.
func (p *Program) DayNumbers() []int {
	n := DefaultDaysPerWeek
	if p != nil && p.DaysPerWeek > 0 {
		n = p.DaysPerWeek
	}
	days := make([]int, n)
	for i := range days {
		days[i] = i + 1
	}
	return days
}

// Clone returns a deep copy.
func (p *Program) Clone() *Program {
	if p == nil {
		return nil
	}
	c := *p
	c.Exercises = make(map[int]map[int]*DayPlan, len(p.Exercises))
	for w, days := range p.Exercises {
		cd := make(map[int]*DayPlan, len(days))
		for d, plan := range days {
			cd[d] = plan.Clone()
		}
		c.Exercises[w] = cd
	}
	return &c
}

// Flatten returns the plan's exercises in global index order.
func (d *DayPlan) Flatten() []Exercise {
	if d == nil {
		return nil
	}
	var out []Exercise
	for _, s := range d.Sections {
		out = append(out, s.Exercises...)
	}
	return out
}

// Clone returns a deep copy of the plan.
func (d *DayPlan) Clone() *DayPlan {
	if d == nil {
		return nil
	}
	c := *d
	c.Sections = make([]Section, len(d.Sections))
	for i, s := range d.Sections {
		c.Sections[i] = Section{
			Name:      s.Name,
			Exercises: append([]Exercise(nil), s.Exercises...),
		}
	}
	return &c
}

// FlexString is a string that also accepts JSON numbers, so template authors
// can write "reps": 10 or "reps": "8-10".
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the raw value.
func (f FlexString) String() string { return string(f) }

// Int parses the value as an integer.
func (f FlexString) Int() (int, bool) {
	n, err := strconv.Atoi(string(f))
	return n, err == nil
}
