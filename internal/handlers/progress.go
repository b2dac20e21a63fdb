package handlers

import (
	"net/http"

	"github.com/carpenike/repcal/internal/app"
	"github.com/carpenike/repcal/internal/models"
)

// Progress handles writes to the progress store.
type Progress struct {
	App *app.App
}

// Update replaces the progress data of one exercise slot. The body is the
// raw data object, e.g. {"set1_weight":"100","set1_reps":"8"}.
func (h *Progress) Update(w http.ResponseWriter, r *http.Request) {
	week, day, index, ok := slotParams(w, r, true)
	if !ok {
		return
	}
	var data models.ProgressData
	if !decodeJSON(w, r, &data) {
		return
	}
	rec, err := h.App.UpdateExerciseProgress(r.Context(), week, day, index, data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Accept merges the current suggestion into the slot's saved data.
func (h *Progress) Accept(w http.ResponseWriter, r *http.Request) {
	week, day, index, ok := slotParams(w, r, true)
	if !ok {
		return
	}
	rec, err := h.App.AcceptSuggestion(r.Context(), week, day, index)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type completeRequest struct {
	Done bool `json:"done"`
}

// Complete toggles the manual completion flag.
func (h *Progress) Complete(w http.ResponseWriter, r *http.Request) {
	week, day, index, ok := slotParams(w, r, true)
	if !ok {
		return
	}
	var req completeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rec, err := h.App.MarkComplete(r.Context(), week, day, index, req.Done)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ResetDay removes every record of a day.
func (h *Progress) ResetDay(w http.ResponseWriter, r *http.Request) {
	week, day, _, ok := slotParams(w, r, false)
	if !ok {
		return
	}
	n, err := h.App.ResetDay(r.Context(), week, day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}
