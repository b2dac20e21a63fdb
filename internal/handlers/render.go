// Package handlers is the JSON API the rendering layer talks to.
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/carpenike/repcal/internal/models"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("handlers: encode response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// writeError maps typed errors to status codes. Anything unrecognized is
// logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *models.ValidationError
		de *models.DuplicateNameError
		pe *models.ProtectedError
		se *models.PersistError
	)
	switch {
	case errors.As(err, &ve):
		writeMessage(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, models.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.As(err, &de):
		writeMessage(w, http.StatusConflict, de.Error())
	case errors.As(err, &pe):
		writeMessage(w, http.StatusForbidden, pe.Error())
	case errors.As(err, &se):
		log.Printf("handlers: %s %s: %v", r.Method, r.URL.Path, err)
		writeMessage(w, http.StatusInternalServerError, "change applied but could not be saved")
	default:
		log.Printf("handlers: %s %s: %v", r.Method, r.URL.Path, err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// intParam parses a positive path parameter, writing 400 on failure.
func intParam(w http.ResponseWriter, r *http.Request, name string, min int) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < min {
		writeMessage(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return n, true
}

// slotParams parses {week}, {day} and, when withIndex is set, {index}.
func slotParams(w http.ResponseWriter, r *http.Request, withIndex bool) (week, day, index int, ok bool) {
	if week, ok = intParam(w, r, "week", 1); !ok {
		return
	}
	if day, ok = intParam(w, r, "day", 1); !ok {
		return
	}
	if withIndex {
		index, ok = intParam(w, r, "index", 0)
	}
	return
}
