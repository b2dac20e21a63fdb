// Package progress holds the sparse per-exercise progress records keyed by
// (week, day, global exercise index).
package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carpenike/repcal/internal/metrics"
	"github.com/carpenike/repcal/internal/models"
	"github.com/carpenike/repcal/internal/storage"
)

// Reader is the read side of the store used by completion and suggestions.
type Reader interface {
	Get(week, day, exerciseIndex int) (*models.ProgressRecord, bool)
}

// Store keeps every record in memory and writes the whole map to
// storage.KeyProgress after each mutation. Last write wins.
type Store struct {
	kv storage.KV

	mu      sync.RWMutex
	records map[models.SlotKey]*models.ProgressRecord

	// now stamps record timestamps. Tests replace it.
	now func() time.Time
}

// New returns an empty store persisting to kv. A nil kv keeps the store
// memory-only.
func New(kv storage.KV) *Store {
	return &Store{
		kv:      kv,
		records: make(map[models.SlotKey]*models.ProgressRecord),
		now:     time.Now,
	}
}

// Load reads the persisted progress map. A missing key yields an empty
// store; a corrupt blob yields an empty store plus the decode error so the
// caller can report it.
func Load(ctx context.Context, kv storage.KV) (*Store, error) {
	s := New(kv)
	var records map[models.SlotKey]*models.ProgressRecord
	err := storage.GetJSON(ctx, kv, storage.KeyProgress, &records)
	if storage.IsNotFound(err) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("progress: load: %w", err)
	}
	for k, r := range records {
		if r == nil {
			continue
		}
		// The key is authoritative; the embedded copy may be stale.
		r.Week, r.Day, r.ExerciseIndex = k.Week, k.Day, k.Exercise
		s.records[k] = r
	}
	return s, nil
}

// SetClock overrides the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Upsert replaces the record at (week, day, exerciseIndex) with data,
// recomputes Completed and stamps Timestamp. The in-memory record is kept
// even when persisting fails; the failure is returned as *models.PersistError.
func (s *Store) Upsert(ctx context.Context, week, day, exerciseIndex int, data models.ProgressData) (*models.ProgressRecord, error) {
	if week < 1 || day < 1 || exerciseIndex < 0 {
		return nil, &models.ValidationError{
			Message: fmt.Sprintf("invalid slot w%d-d%d-e%d", week, day, exerciseIndex),
		}
	}

	s.mu.Lock()
	rec := &models.ProgressRecord{
		Week:          week,
		Day:           day,
		ExerciseIndex: exerciseIndex,
		Data:          data.Clone(),
		Completed:     models.IsComplete(data),
		Timestamp:     s.now().UTC(),
	}
	if rec.Data == nil {
		rec.Data = models.ProgressData{}
	}
	s.records[rec.Key()] = rec
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	metrics.RecordProgressWrite("upsert", err)
	return rec.Clone(), err
}

// Get returns a copy of the record, or false when none exists.
func (s *Store) Get(week, day, exerciseIndex int) (*models.ProgressRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[models.SlotKey{Week: week, Day: day, Exercise: exerciseIndex}]
	if !ok {
		return nil, false
	}
	return r.Clone(), true
}

// ClearWhere removes every record whose key matches pred and returns how
// many were removed. Nothing is written when nothing matched.
func (s *Store) ClearWhere(ctx context.Context, pred func(models.SlotKey) bool) (int, error) {
	s.mu.Lock()
	removed := 0
	for k := range s.records {
		if pred(k) {
			delete(s.records, k)
			removed++
		}
	}
	var err error
	if removed > 0 {
		err = s.persistLocked(ctx)
		metrics.RecordProgressWrite("clear", err)
	}
	s.mu.Unlock()
	return removed, err
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Snapshot returns a deep copy of every record.
func (s *Store) Snapshot() map[models.SlotKey]*models.ProgressRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[models.SlotKey]*models.ProgressRecord, len(s.records))
	for k, r := range s.records {
		out[k] = r.Clone()
	}
	return out
}

// Replace swaps the whole store for a copy of records and persists it.
// Used when switching programs.
func (s *Store) Replace(ctx context.Context, records map[models.SlotKey]*models.ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[models.SlotKey]*models.ProgressRecord, len(records))
	for k, r := range records {
		if r == nil {
			continue
		}
		s.records[k] = r.Clone()
	}
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.kv == nil {
		return nil
	}
	return storage.SetJSON(ctx, s.kv, storage.KeyProgress, s.records)
}

// ForDay matches every exercise index of one day.
func ForDay(week, day int) func(models.SlotKey) bool {
	return func(k models.SlotKey) bool {
		return k.Week == week && k.Day == day
	}
}

// All matches every key.
func All(models.SlotKey) bool { return true }
