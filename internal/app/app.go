// Package app owns the live program, progress store and settings, and
// every operation that mutates them. One App is constructed at startup and
// passed to the handlers and commands that need it.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sync"
	"time"

	"github.com/carpenike/repcal/internal/completion"
	"github.com/carpenike/repcal/internal/metrics"
	"github.com/carpenike/repcal/internal/models"
	"github.com/carpenike/repcal/internal/normalize"
	"github.com/carpenike/repcal/internal/progress"
	"github.com/carpenike/repcal/internal/storage"
	"github.com/carpenike/repcal/internal/suggest"
	"github.com/carpenike/repcal/internal/syncqueue"
)

// Options configures Load.
type Options struct {
	KV storage.KV

	// Program sources, tried in order: Template, ConfigDir, Seed. Paths are
	// resolved through Loader.
	Loader    normalize.Loader
	Template  string
	ConfigDir string
	Seed      []byte

	// Queue receives every saved progress record. Optional.
	Queue *syncqueue.Queue

	// Now defaults to time.Now.
	Now func() time.Time
}

// App is the application state container.
type App struct {
	kv    storage.KV
	opts  Options
	queue *syncqueue.Queue
	now   func() time.Time

	mu       sync.RWMutex
	program  *models.Program
	progress *progress.Store
	settings models.Settings
	saved    map[string]*models.SavedProgram

	// progressShape is the structure fingerprint the live progress was
	// recorded under. It lags the program after a regeneration changes
	// its structure, until progress is cleared.
	progressShape string

	listenersMu sync.Mutex
	listeners   map[int]func(Change)
	nextID      int
}

// Load reads the persisted state and repairs whatever is missing or
// corrupt. The returned App is always usable; a non-nil error describes
// what was recovered so the caller can tell the user.
func Load(ctx context.Context, opts Options) (*App, error) {
	if opts.KV == nil {
		opts.KV = storage.NewMemory()
	}
	if opts.Loader == nil {
		opts.Loader = normalize.FSLoader{FS: os.DirFS(".")}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	a := &App{
		kv:        opts.KV,
		opts:      opts,
		queue:     opts.Queue,
		now:       opts.Now,
		listeners: make(map[int]func(Change)),
	}

	var warnings []error
	warn := func(err error) {
		log.Printf("app: load: %v", err)
		warnings = append(warnings, err)
	}

	a.loadProgram(ctx, warn)

	store, err := progress.Load(ctx, a.kv)
	if err != nil {
		warn(err)
	}
	store.SetClock(a.now)
	a.progress = store

	a.settings = models.DefaultSettings()
	if err := storage.GetJSON(ctx, a.kv, storage.KeySettings, &a.settings); err != nil {
		a.settings = models.DefaultSettings()
		if !storage.IsNotFound(err) {
			warn(fmt.Errorf("settings reset to defaults: %w", err))
		}
	}

	if err := storage.GetJSON(ctx, a.kv, storage.KeySavedPrograms, &a.saved); err != nil {
		a.saved = nil
		if !storage.IsNotFound(err) {
			warn(fmt.Errorf("saved programs reset: %w", err))
		}
	}
	if a.progressShape == "" {
		if sp, ok := a.saved[a.settings.CurrentProgram]; ok && sp.Fingerprint != "" {
			a.progressShape = sp.Fingerprint
		}
	}
	if err := a.ensureSaved(ctx); err != nil {
		warn(err)
	}

	return a, errors.Join(warnings...)
}

// loadProgram reads the persisted program, regenerating it when it is
// missing, corrupt or still carries template placeholders.
func (a *App) loadProgram(ctx context.Context, warn func(error)) {
	var p models.Program
	err := storage.GetJSON(ctx, a.kv, storage.KeyProgram, &p)
	switch {
	case err == nil && !normalize.HasUnresolvedPlaceholders(&p):
		a.program = &p
		return
	case err == nil:
		regenerated, genErr := a.generateProgram(ctx)
		if genErr != nil {
			log.Printf("app: program %q has unresolved placeholders and cannot be regenerated: %v", p.ID, genErr)
			a.program = &p
			return
		}
		if old := models.Fingerprint(&p); models.Fingerprint(regenerated) != old {
			a.progressShape = old
			log.Printf("app: regenerated program %q changed structure; recorded progress may no longer line up", p.ID)
		}
		a.program = regenerated
	case storage.IsNotFound(err):
		a.program = a.programOrFallback(ctx, warn)
	default:
		warn(fmt.Errorf("stored program unreadable: %w", err))
		a.program = a.programOrFallback(ctx, warn)
	}

	if err := storage.SetJSON(ctx, a.kv, storage.KeyProgram, a.program); err != nil {
		warn(err)
	}
}

func (a *App) programOrFallback(ctx context.Context, warn func(error)) *models.Program {
	p, err := a.generateProgram(ctx)
	if err != nil {
		warn(fmt.Errorf("using fallback program: %w", err))
		metrics.RecordProgramFallback()
		return normalize.FallbackProgram()
	}
	return p
}

// generateProgram normalizes the first configured program source.
func (a *App) generateProgram(ctx context.Context) (*models.Program, error) {
	switch {
	case a.opts.Template != "":
		return normalize.LoadTemplate(ctx, a.opts.Loader, a.opts.Template)
	case a.opts.ConfigDir != "":
		return normalize.LoadModular(ctx, a.opts.Loader, a.opts.ConfigDir)
	case len(a.opts.Seed) > 0:
		return normalize.NormalizeJSON(a.opts.Seed)
	}
	return nil, fmt.Errorf("app: %w: no program source configured", fs.ErrNotExist)
}

// ensureSaved guarantees the default entry and an entry for the active
// program exist.
func (a *App) ensureSaved(ctx context.Context) error {
	if a.saved == nil {
		a.saved = make(map[string]*models.SavedProgram)
	}
	if a.settings.CurrentProgram == "" {
		a.settings.CurrentProgram = models.DefaultProgramID
	}

	changed := false
	if _, ok := a.saved[models.DefaultProgramID]; !ok {
		name := a.program.Name
		if name == "" {
			name = "Default Program"
		}
		a.saved[models.DefaultProgramID] = a.snapshotLocked(models.DefaultProgramID, name)
		changed = true
	}
	if _, ok := a.saved[a.settings.CurrentProgram]; !ok {
		log.Printf("app: active program %q missing from saved programs, recreating it", a.settings.CurrentProgram)
		a.saved[a.settings.CurrentProgram] = a.snapshotLocked(a.settings.CurrentProgram, a.program.Name)
		changed = true
	}
	if !changed {
		return nil
	}
	return storage.SetJSON(ctx, a.kv, storage.KeySavedPrograms, a.saved)
}

// snapshotLocked captures the live triple as a saved program.
func (a *App) snapshotLocked(id, name string) *models.SavedProgram {
	now := a.now().UTC()
	return &models.SavedProgram{
		ID:            id,
		Name:          name,
		Program:       a.program.Clone(),
		SavedProgress: a.progress.Snapshot(),
		SavedSettings: a.settings,
		IsDefault:     id == models.DefaultProgramID,
		Created:       now,
		LastAccessed:  now,
		Fingerprint:   a.shapeLocked(),
	}
}

func (a *App) shapeLocked() string {
	if a.progressShape == "" {
		return models.Fingerprint(a.program)
	}
	return a.progressShape
}

// Program returns the live program. Callers must not modify it; it is
// replaced wholesale on switch.
func (a *App) Program() *models.Program {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.program
}

// Settings returns a copy of the live settings.
func (a *App) Settings() models.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// Progress returns the read side of the live progress store.
func (a *App) Progress() progress.Reader {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.progress
}

// ExercisesForDay returns the flattened exercises of a day.
func (a *App) ExercisesForDay(week, day int) []models.Exercise {
	return a.Program().ExercisesForDay(week, day)
}

// ExerciseProgress returns the record for an exercise slot.
func (a *App) ExerciseProgress(week, day, index int) (*models.ProgressRecord, bool) {
	return a.Progress().Get(week, day, index)
}

// DayCompletion returns the day's completion percentage.
func (a *App) DayCompletion(week, day int) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return completion.Day(a.program, a.progress, week, day)
}

// WeekCompletion returns the week's completion percentage.
func (a *App) WeekCompletion(week int) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return completion.Week(a.program, a.progress, week)
}

// WeekSummary returns the week's and each day's completion.
func (a *App) WeekSummary(week int) completion.WeekSummary {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return completion.Summarize(a.program, a.progress, week)
}

// ProgramCompletion returns the whole program's completion percentage.
func (a *App) ProgramCompletion() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return completion.Program(a.program, a.progress)
}

// Suggest returns progression hints for an exercise slot.
func (a *App) Suggest(week, day, index int) (suggest.Suggestion, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return suggest.Suggest(a.program, a.progress, week, day, index)
}

// UpdateExerciseProgress replaces the record of an exercise slot with data
// and queues it for sync. The slot must exist in the live program.
func (a *App) UpdateExerciseProgress(ctx context.Context, week, day, index int, data models.ProgressData) (*models.ProgressRecord, error) {
	a.mu.Lock()
	rec, err := a.upsertLocked(ctx, week, day, index, data)
	a.mu.Unlock()
	if rec != nil {
		a.notify(Change{Kind: ChangeProgress, Week: week, Day: day, Exercise: index})
	}
	return rec, err
}

// MarkComplete sets or clears the manual completion flag, keeping any
// other entered values.
func (a *App) MarkComplete(ctx context.Context, week, day, index int, done bool) (*models.ProgressRecord, error) {
	a.mu.Lock()
	data := models.ProgressData{}
	if cur, ok := a.progress.Get(week, day, index); ok && cur.Data != nil {
		data = cur.Data
	}
	if done {
		data[models.FieldNameManualComplete] = true
	} else {
		delete(data, models.FieldNameManualComplete)
	}
	rec, err := a.upsertLocked(ctx, week, day, index, data)
	a.mu.Unlock()
	if rec != nil {
		a.notify(Change{Kind: ChangeProgress, Week: week, Day: day, Exercise: index})
	}
	return rec, err
}

// AcceptSuggestion commits the current suggestion for a slot as entered
// values. Fields the user already filled are kept.
func (a *App) AcceptSuggestion(ctx context.Context, week, day, index int) (*models.ProgressRecord, error) {
	a.mu.Lock()
	s, ok := suggest.Suggest(a.program, a.progress, week, day, index)
	if !ok {
		a.mu.Unlock()
		return nil, &models.NotFoundError{Kind: "suggestion", ID: models.SlotKey{Week: week, Day: day, Exercise: index}.String()}
	}
	var data models.ProgressData
	if cur, ok := a.progress.Get(week, day, index); ok {
		data = cur.Data
	}
	rec, err := a.upsertLocked(ctx, week, day, index, s.Merge(data))
	a.mu.Unlock()
	if rec != nil {
		a.notify(Change{Kind: ChangeProgress, Week: week, Day: day, Exercise: index})
	}
	return rec, err
}

func (a *App) upsertLocked(ctx context.Context, week, day, index int, data models.ProgressData) (*models.ProgressRecord, error) {
	if _, ok := a.program.ExerciseAt(week, day, index); !ok {
		return nil, &models.NotFoundError{Kind: "exercise", ID: models.SlotKey{Week: week, Day: day, Exercise: index}.String()}
	}
	rec, err := a.progress.Upsert(ctx, week, day, index, data)
	if err != nil {
		return rec, err
	}
	if a.queue != nil {
		payload, err := json.Marshal(rec)
		if err != nil {
			return rec, fmt.Errorf("app: encode sync payload: %w", err)
		}
		a.queue.Enqueue(rec.Key(), payload)
	}
	return rec, nil
}

// ResetDay removes every record of a day and returns how many went.
func (a *App) ResetDay(ctx context.Context, week, day int) (int, error) {
	a.mu.Lock()
	n, err := a.progress.ClearWhere(ctx, progress.ForDay(week, day))
	a.mu.Unlock()
	if n > 0 {
		a.notify(Change{Kind: ChangeDayReset, Week: week, Day: day})
	}
	return n, err
}

// UpdateSettings validates and stores new settings. The active program
// pointer is owned by the lifecycle operations and cannot be changed here.
func (a *App) UpdateSettings(ctx context.Context, s models.Settings) (models.Settings, error) {
	if err := s.Validate(); err != nil {
		return models.Settings{}, err
	}
	a.mu.Lock()
	s.CurrentProgram = a.settings.CurrentProgram
	a.settings = s
	err := storage.SetJSON(ctx, a.kv, storage.KeySettings, a.settings)
	a.mu.Unlock()
	a.notify(Change{Kind: ChangeSettings})
	return s, err
}
