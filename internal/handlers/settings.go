package handlers

import (
	"net/http"

	"github.com/carpenike/repcal/internal/app"
	"github.com/carpenike/repcal/internal/models"
)

// Settings serves the app-settings object.
type Settings struct {
	App *app.App
}

// Show returns the current settings.
func (h *Settings) Show(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.App.Settings())
}

// Update replaces the settings. The active program pointer is ignored; use
// the switch endpoint to change it.
func (h *Settings) Update(w http.ResponseWriter, r *http.Request) {
	var s models.Settings
	if !decodeJSON(w, r, &s) {
		return
	}
	saved, err := h.App.UpdateSettings(r.Context(), s)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
