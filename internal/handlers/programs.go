package handlers

import (
	"net/http"
	"strings"

	"github.com/carpenike/repcal/internal/app"
	"github.com/carpenike/repcal/internal/models"
	"github.com/go-chi/chi/v5"
)

// Programs handles saved-program lifecycle.
type Programs struct {
	App *app.App
}

// List returns every saved program, default first.
func (h *Programs) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.App.SavedPrograms())
}

type saveAsRequest struct {
	Name string `json:"name"`
}

// SaveAs snapshots the live program, progress and settings under a new name.
func (h *Programs) SaveAs(w http.ResponseWriter, r *http.Request) {
	var req saveAsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, &models.ValidationError{Field: "name", Message: "is required"})
		return
	}
	sp, err := h.App.SaveAs(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": sp.ID, "name": sp.Name})
}

type switchRequest struct {
	ContinueProgress bool `json:"continueProgress"`
}

// Switch makes a saved program the active one.
func (h *Programs) Switch(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.App.SwitchTo(r.Context(), chi.URLParam(r, "id"), req.ContinueProgress); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.App.Settings())
}

// Delete removes a saved program. The default and the active program are
// protected.
func (h *Programs) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.App.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reset clears progress and settings of the live program.
func (h *Programs) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.App.Reset(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
