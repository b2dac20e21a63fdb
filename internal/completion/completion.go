// Package completion derives day, week and program completion percentages
// from a program and its progress records. Everything here is recomputed on
// demand; nothing is cached.
package completion

import (
	"math"

	"github.com/carpenike/repcal/internal/models"
	"github.com/carpenike/repcal/internal/progress"
)

// DayDoneThreshold is the day completion percentage at which a day counts
// as done for week completion.
const DayDoneThreshold = 80

// Day returns the percentage of the day's exercises with a completed
// record, 0 when the day has no exercises.
func Day(p *models.Program, r progress.Reader, week, day int) int {
	exercises := p.ExercisesForDay(week, day)
	if len(exercises) == 0 {
		return 0
	}
	done := 0
	for i := range exercises {
		if rec, ok := r.Get(week, day, i); ok && rec.Completed {
			done++
		}
	}
	return percent(done, len(exercises))
}

// Week returns the percentage of the week's training days whose completion
// reaches DayDoneThreshold. Days without exercises are not counted.
func Week(p *models.Program, r progress.Reader, week int) int {
	total, done := 0, 0
	for _, day := range p.DayNumbers() {
		if len(p.ExercisesForDay(week, day)) == 0 {
			continue
		}
		total++
		if Day(p, r, week, day) >= DayDoneThreshold {
			done++
		}
	}
	if total == 0 {
		return 0
	}
	return percent(done, total)
}

// Program returns the percentage of all exercises in the program with a
// completed record.
func Program(p *models.Program, r progress.Reader) int {
	total, done := 0, 0
	for _, week := range p.WeekNumbers() {
		for _, day := range p.DayNumbers() {
			n := len(p.ExercisesForDay(week, day))
			total += n
			for i := 0; i < n; i++ {
				if rec, ok := r.Get(week, day, i); ok && rec.Completed {
					done++
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return percent(done, total)
}

// WeekSummary is the completion of one week and each of its days.
type WeekSummary struct {
	Week       int         `json:"week"`
	Completion int         `json:"completion"`
	Days       map[int]int `json:"days"`
}

// Summarize computes a WeekSummary.
func Summarize(p *models.Program, r progress.Reader, week int) WeekSummary {
	s := WeekSummary{Week: week, Completion: Week(p, r, week), Days: make(map[int]int)}
	for _, day := range p.DayNumbers() {
		s.Days[day] = Day(p, r, week, day)
	}
	return s
}

// percent rounds half up.
func percent(n, total int) int {
	return int(math.Floor(100*float64(n)/float64(total) + 0.5))
}
