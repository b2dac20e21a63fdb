package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/carpenike/repcal/internal/models"
	"github.com/carpenike/repcal/internal/normalize"
	"github.com/spf13/cobra"
)

func newCheckTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-template <path>",
		Short: "Normalize a program template or modular config dir and summarize it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(abs)
			if err != nil {
				return err
			}

			var p *models.Program
			if info.IsDir() {
				p, err = normalize.LoadModular(cmd.Context(), normalize.FSLoader{FS: os.DirFS(abs)}, ".")
			} else {
				p, err = normalize.LoadTemplate(cmd.Context(), normalize.FSLoader{FS: os.DirFS(filepath.Dir(abs))}, filepath.Base(abs))
			}
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func printSummary(w io.Writer, p *models.Program) {
	days, exercises := 0, 0
	for _, week := range p.WeekNumbers() {
		for _, day := range p.DayNumbers() {
			n := len(p.ExercisesForDay(week, day))
			if n > 0 {
				days++
				exercises += n
			}
		}
	}
	fmt.Fprintf(w, "program:     %s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(w, "weeks:       %d\n", p.Weeks)
	fmt.Fprintf(w, "workouts:    %d\n", days)
	fmt.Fprintf(w, "exercises:   %d\n", exercises)
	fmt.Fprintf(w, "fingerprint: %s\n", models.Fingerprint(p))
	if normalize.HasUnresolvedPlaceholders(p) {
		fmt.Fprintln(w, "warning:     unresolved placeholders remain")
	}
}
