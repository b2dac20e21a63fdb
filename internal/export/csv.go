// Package export flattens a normalized program to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/carpenike/repcal/internal/models"
)

// Header is the CSV column order.
var Header = []string{"week", "day", "exercise_name", "category", "sets", "reps", "time", "notes"}

// Rows returns one row per exercise ordered by week, day and global index.
func Rows(p *models.Program) [][]string {
	var rows [][]string
	for _, week := range p.WeekNumbers() {
		for _, day := range p.DayNumbers() {
			for _, slot := range p.SlotsForDay(week, day) {
				ex := slot.Exercise
				sets := ""
				if ex.Sets > 0 {
					sets = strconv.Itoa(ex.Sets)
				}
				rows = append(rows, []string{
					strconv.Itoa(week),
					strconv.Itoa(day),
					ex.Name,
					string(ex.Category),
					sets,
					ex.Reps.String(),
					ex.Time.String(),
					ex.Notes,
				})
			}
		}
	}
	return rows
}

// WriteCSV writes the header and every row.
func WriteCSV(w io.Writer, p *models.Program) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	if err := cw.WriteAll(Rows(p)); err != nil {
		return fmt.Errorf("export: write csv rows: %w", err)
	}
	return nil
}
