package app

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/carpenike/repcal/internal/models"
	"github.com/carpenike/repcal/internal/progress"
	"github.com/carpenike/repcal/internal/storage"
)

// SavedSummary is the listing view of a saved program.
type SavedSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	IsDefault    bool      `json:"isDefault"`
	Active       bool      `json:"active"`
	Weeks        int       `json:"weeks"`
	Records      int       `json:"records"`
	Created      time.Time `json:"created"`
	LastAccessed time.Time `json:"lastAccessed"`
}

// SavedPrograms lists saved programs, default first, then by creation.
func (a *App) SavedPrograms() []SavedSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]SavedSummary, 0, len(a.saved))
	for _, sp := range a.saved {
		weeks := 0
		if sp.Program != nil {
			weeks = sp.Program.Weeks
		}
		out = append(out, SavedSummary{
			ID:           sp.ID,
			Name:         sp.Name,
			IsDefault:    sp.IsDefault,
			Active:       sp.ID == a.settings.CurrentProgram,
			Weeks:        weeks,
			Records:      len(sp.SavedProgress),
			Created:      sp.Created,
			LastAccessed: sp.LastAccessed,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.Before(out[j].Created)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SavedProgram returns a copy of one saved program.
func (a *App) SavedProgram(id string) (*models.SavedProgram, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	sp, ok := a.saved[id]
	if !ok {
		return nil, &models.NotFoundError{Kind: "program", ID: id}
	}
	c := *sp
	c.Program = sp.Program.Clone()
	c.SavedProgress = cloneRecords(sp.SavedProgress)
	return &c, nil
}

// SaveAs stores a copy of the live program, progress and settings under a
// new name. Names are unique ignoring case. The active program is
// unchanged.
func (a *App) SaveAs(ctx context.Context, name string) (*models.SavedProgram, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &models.ValidationError{Field: "name", Message: "must not be blank"}
	}

	a.mu.Lock()
	for _, sp := range a.saved {
		if strings.EqualFold(sp.Name, name) {
			a.mu.Unlock()
			return nil, &models.DuplicateNameError{Name: name}
		}
	}

	id := models.NewSavedProgramID(name, a.now())
	for _, taken := a.saved[id]; taken; _, taken = a.saved[id] {
		id += "-1"
	}
	sp := a.snapshotLocked(id, name)
	a.saved[id] = sp
	err := storage.SetJSON(ctx, a.kv, storage.KeySavedPrograms, a.saved)
	a.mu.Unlock()

	return sp, err
}

// SwitchTo makes a saved program the live one. The current live state is
// first written back to its own saved entry. With continueProgress the
// target's saved progress and settings are restored; otherwise progress
// starts empty and the current settings carry over.
func (a *App) SwitchTo(ctx context.Context, id string, continueProgress bool) error {
	a.mu.Lock()
	target, ok := a.saved[id]
	if !ok {
		a.mu.Unlock()
		return &models.NotFoundError{Kind: "program", ID: id}
	}
	if target.Program == nil {
		a.mu.Unlock()
		return &models.ValidationError{Field: "id", Message: "saved program has no definition"}
	}

	currentID := a.settings.CurrentProgram
	if cur, ok := a.saved[currentID]; ok {
		snap := a.snapshotLocked(currentID, cur.Name)
		snap.Created = cur.Created
		a.saved[currentID] = snap
	}
	// Switching to the active program must see the snapshot just taken.
	target = a.saved[id]

	var errs []error
	a.program = target.Program.Clone()
	a.progressShape = models.Fingerprint(a.program)
	if continueProgress {
		if target.Fingerprint != "" && target.Fingerprint != a.progressShape {
			log.Printf("app: program %q changed structure since its progress was saved; records may not line up", id)
			a.progressShape = target.Fingerprint
		}
		errs = append(errs, a.progress.Replace(ctx, target.SavedProgress))
		a.settings = target.SavedSettings
	} else {
		errs = append(errs, a.progress.Replace(ctx, nil))
	}
	a.settings.CurrentProgram = id
	target.LastAccessed = a.now().UTC()

	errs = append(errs,
		storage.SetJSON(ctx, a.kv, storage.KeyProgram, a.program),
		storage.SetJSON(ctx, a.kv, storage.KeySettings, a.settings),
		storage.SetJSON(ctx, a.kv, storage.KeySavedPrograms, a.saved),
	)
	a.mu.Unlock()

	a.notify(Change{Kind: ChangeProgram})
	return errors.Join(errs...)
}

// Delete removes a saved program. The default and the active program are
// protected.
func (a *App) Delete(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id == models.DefaultProgramID {
		return &models.ProtectedError{ID: id, Reason: "the default program cannot be deleted"}
	}
	if id == a.settings.CurrentProgram {
		return &models.ProtectedError{ID: id, Reason: "the active program cannot be deleted"}
	}
	if _, ok := a.saved[id]; !ok {
		return &models.NotFoundError{Kind: "program", ID: id}
	}
	delete(a.saved, id)
	return storage.SetJSON(ctx, a.kv, storage.KeySavedPrograms, a.saved)
}

// Reset clears all live progress and restores default settings. The live
// program stays active.
func (a *App) Reset(ctx context.Context) error {
	a.mu.Lock()
	_, clearErr := a.progress.ClearWhere(ctx, progress.All)
	a.progressShape = models.Fingerprint(a.program)
	current := a.settings.CurrentProgram
	a.settings = models.DefaultSettings()
	a.settings.CurrentProgram = current
	setErr := storage.SetJSON(ctx, a.kv, storage.KeySettings, a.settings)
	a.mu.Unlock()

	a.notify(Change{Kind: ChangeReset})
	return errors.Join(clearErr, setErr)
}

func cloneRecords(in map[models.SlotKey]*models.ProgressRecord) map[models.SlotKey]*models.ProgressRecord {
	if in == nil {
		return nil
	}
	out := make(map[models.SlotKey]*models.ProgressRecord, len(in))
	for k, r := range in {
		out[k] = r.Clone()
	}
	return out
}
