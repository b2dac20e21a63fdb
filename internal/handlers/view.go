package handlers

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/carpenike/repcal/internal/app"
	"github.com/carpenike/repcal/internal/models"
)

// Session keys of the view cursor.
const (
	sessionViewWeek = "view.week"
	sessionViewDay  = "view.day"
)

// View tracks which week and day a browser is looking at. Each session has
// its own cursor; it starts at today's position.
type View struct {
	App      *app.App
	Sessions *scs.SessionManager
}

type viewCursor struct {
	Week int `json:"week"`
	Day  int `json:"day"`
}

func (h *View) cursor(r *http.Request) viewCursor {
	week := h.Sessions.GetInt(r.Context(), sessionViewWeek)
	day := h.Sessions.GetInt(r.Context(), sessionViewDay)
	if week < 1 || day < 1 {
		week, day = h.App.DefaultView()
	}
	return viewCursor{Week: week, Day: day}
}

// Show returns the session's cursor.
func (h *View) Show(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cursor(r))
}

// Update moves the cursor. Coordinates outside the program are rejected.
func (h *View) Update(w http.ResponseWriter, r *http.Request) {
	var req viewCursor
	if !decodeJSON(w, r, &req) {
		return
	}
	p := h.App.Program()
	if req.Week < 1 || req.Week > p.Weeks {
		writeError(w, r, &models.ValidationError{Field: "week", Message: "out of range"})
		return
	}
	if req.Day < 1 || req.Day > len(p.DayNumbers()) {
		writeError(w, r, &models.ValidationError{Field: "day", Message: "out of range"})
		return
	}
	h.Sessions.Put(r.Context(), sessionViewWeek, req.Week)
	h.Sessions.Put(r.Context(), sessionViewDay, req.Day)
	writeJSON(w, http.StatusOK, req)
}
