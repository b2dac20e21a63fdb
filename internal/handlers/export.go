package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/carpenike/repcal/internal/app"
	"github.com/carpenike/repcal/internal/export"
	"github.com/carpenike/repcal/internal/models"
)

// Export streams the program as CSV.
type Export struct {
	App *app.App
}

// CSV writes the live program in the spreadsheet layout.
func (h *Export) CSV(w http.ResponseWriter, r *http.Request) {
	p := h.App.Program()
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, p); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", models.Slugify(p.Name)+".csv"))
	w.Write(buf.Bytes())
}
