package main

import (
	"fmt"
	"os"

	"github.com/carpenike/repcal/internal/config"
	"github.com/carpenike/repcal/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd(configPath *string) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the live program as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			a, db, err := openApp(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}
			return export.WriteCSV(out, a.Program())
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to file instead of stdout")
	return cmd
}
