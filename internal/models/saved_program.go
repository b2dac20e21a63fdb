package models

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// DefaultProgramID is the id of the built-in saved program. It can never be
// deleted.
const DefaultProgramID = "default"

// SavedProgram bundles a program definition with the progress and settings
// recorded against it.
type SavedProgram struct {
	ID            string                      `json:"id"`
	Name          string                      `json:"name"`
	Program       *Program                    `json:"program"`
	SavedProgress map[SlotKey]*ProgressRecord `json:"savedProgress"`
	SavedSettings Settings                    `json:"savedSettings"`
	IsDefault     bool                        `json:"isDefault"`
	Created       time.Time                   `json:"created"`
	LastAccessed  time.Time                   `json:"lastAccessed"`

	// Fingerprint is the structure hash of Program at the time SavedProgress
	// was captured.
	Fingerprint string `json:"fingerprint,omitempty"`
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and collapses everything but letters and digits
// into single dashes.
func Slugify(name string) string {
	s := slugInvalid.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "program"
	}
	return s
}

// NewSavedProgramID builds a unique id from the name and a millisecond
// timestamp suffix.
func NewSavedProgramID(name string, now time.Time) string {
	return fmt.Sprintf("%s-%d", Slugify(name), now.UnixMilli())
}

// Fingerprint hashes the structure of a program: week, day, section and the
// name and category of every exercise in global index order. Two programs
// with the same fingerprint correlate progress records identically.
func Fingerprint(p *Program) string {
	h, _ := blake2b.New256(nil)
	for _, w := range p.WeekNumbers() {
		for _, d := range p.DayNumbers() {
			for _, slot := range p.SlotsForDay(w, d) {
				fmt.Fprintf(h, "%d/%d/%d/%d|%s|%s\n",
					w, d, slot.Section, slot.Global, slot.Exercise.Name, slot.Exercise.Category.Normalize())
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
