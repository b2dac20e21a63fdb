package app

import (
	"time"

	"github.com/carpenike/repcal/internal/models"
)

// Position is where the calendar puts "today" in the program.
type Position struct {
	Week int `json:"week"`
	Day  int `json:"day"`

	// Started is false without a start date or before it.
	Started bool `json:"started"`
	// Finished is true once today is past the last program week.
	Finished bool `json:"finished"`
}

// ScheduleAt computes the position of now for a program started on
// settings.StartDate. Days are counted on the local calendar, so DST
// changes do not shift them.
func ScheduleAt(s models.Settings, p *models.Program, now time.Time) Position {
	start, ok := s.Start()
	if !ok {
		return Position{Week: 1, Day: 1}
	}
	days := civilDays(start, now.In(time.Local))
	if days < 0 {
		return Position{Week: 1, Day: 1}
	}
	pos := Position{
		Week:    days/7 + 1,
		Day:     days%7 + 1,
		Started: true,
	}
	if p != nil && pos.Week > p.Weeks {
		pos.Finished = true
	}
	return pos
}

// civilDays counts calendar days from a to b.
func civilDays(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 12, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 12, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}

// IsToday reports whether (week, day) is today. It is false everywhere
// before the program starts and after it ends.
func (pos Position) IsToday(week, day int) bool {
	return pos.Started && !pos.Finished && pos.Week == week && pos.Day == day
}

// DefaultView is the week/day a fresh view opens on: today while the
// program runs, day 1 of the last week once it is over, week 1 day 1
// otherwise.
func (pos Position) DefaultView(p *models.Program) (week, day int) {
	switch {
	case !pos.Started:
		return 1, 1
	case pos.Finished && p != nil && p.Weeks > 0:
		return p.Weeks, 1
	case pos.Finished:
		return 1, 1
	}
	return pos.Week, pos.Day
}

// Schedule returns today's position.
func (a *App) Schedule() Position {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return ScheduleAt(a.settings, a.program, a.now())
}

// IsToday reports whether (week, day) is today.
func (a *App) IsToday(week, day int) bool {
	return a.Schedule().IsToday(week, day)
}

// DefaultView returns the week/day a fresh view opens on.
func (a *App) DefaultView() (week, day int) {
	a.mu.RLock()
	p := a.program
	a.mu.RUnlock()
	return a.Schedule().DefaultView(p)
}
