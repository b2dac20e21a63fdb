package completion

import (
	"context"
	"testing"

	"github.com/carpenike/repcal/internal/models"
	"github.com/carpenike/repcal/internal/progress"
)

// dayWith builds a single-section day of n strength exercises.
func dayWith(n int) *models.DayPlan {
	ex := make([]models.Exercise, n)
	for i := range ex {
		ex[i] = models.Exercise{Name: "Lift", Category: models.CategoryStrength}
	}
	return &models.DayPlan{Type: "gym", Sections: []models.Section{{Name: "Main", Exercises: ex}}}
}

func testProgram() *models.Program {
	return &models.Program{
		ID:          "test",
		Weeks:       2,
		DaysPerWeek: 7,
		Exercises: map[int]map[int]*models.DayPlan{
			1: {1: dayWith(5), 2: dayWith(5), 3: dayWith(5), 4: nil},
			2: {1: dayWith(3)},
		},
	}
}

func complete(t *testing.T, s *progress.Store, week, day int, indices ...int) {
	t.Helper()
	for _, i := range indices {
		if _, err := s.Upsert(context.Background(), week, day, i, models.ProgressData{"set1_reps": "5"}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
}

func TestDay(t *testing.T) {
	p := testProgram()
	s := progress.New(nil)

	if got := Day(p, s, 1, 1); got != 0 {
		t.Errorf("expected 0 with no progress, got %d", got)
	}
	if got := Day(p, s, 1, 4); got != 0 {
		t.Errorf("expected 0 for rest day, got %d", got)
	}
	if got := Day(p, s, 9, 1); got != 0 {
		t.Errorf("expected 0 outside the program, got %d", got)
	}

	complete(t, s, 2, 1, 0)
	if got := Day(p, s, 2, 1); got != 33 {
		t.Errorf("expected 1/3 = 33, got %d", got)
	}
	complete(t, s, 2, 1, 1)
	if got := Day(p, s, 2, 1); got != 67 {
		t.Errorf("expected 2/3 rounds up to 67, got %d", got)
	}

	// A record that is not completed does not count.
	if _, err := s.Upsert(context.Background(), 2, 1, 2, models.ProgressData{"notes": ""}); err != nil {
		t.Fatal(err)
	}
	if got := Day(p, s, 2, 1); got != 67 {
		t.Errorf("expected incomplete record ignored, got %d", got)
	}
}

func TestWeek_ThresholdScenario(t *testing.T) {
	p := testProgram()
	s := progress.New(nil)

	complete(t, s, 1, 1, 0, 1, 2, 3, 4) // 100
	complete(t, s, 1, 2, 0, 1, 2, 3)    // 80
	// day 3: 0

	if got := Day(p, s, 1, 2); got != DayDoneThreshold {
		t.Fatalf("expected day 2 at threshold, got %d", got)
	}
	if got := Week(p, s, 1); got != 67 {
		t.Errorf("expected round(100*2/3) = 67, got %d", got)
	}

	if _, err := s.ClearWhere(context.Background(), func(k models.SlotKey) bool {
		return k.Week == 1 && k.Day == 2 && k.Exercise == 3
	}); err != nil {
		t.Fatal(err)
	}
	if got := Week(p, s, 1); got != 33 {
		t.Errorf("expected day at 60%% not done, week 33, got %d", got)
	}
}

func TestBounds(t *testing.T) {
	empty := &models.Program{ID: "empty", Weeks: 1, DaysPerWeek: 7, Exercises: map[int]map[int]*models.DayPlan{1: {}}}
	s := progress.New(nil)

	if got := Week(empty, s, 1); got != 0 {
		t.Errorf("expected 0 for a week without exercises, got %d", got)
	}
	if got := Program(empty, s); got != 0 {
		t.Errorf("expected 0 for a program without exercises, got %d", got)
	}
	if got := Week(nil, s, 1); got != 0 {
		t.Errorf("expected 0 for nil program, got %d", got)
	}

	p := testProgram()
	for w := 1; w <= 2; w++ {
		for d := 1; d <= 7; d++ {
			for i := 0; i < 5; i++ {
				complete(t, s, w, d, i)
			}
		}
	}
	for w := 0; w <= 3; w++ {
		if got := Week(p, s, w); got < 0 || got > 100 {
			t.Errorf("week %d completion %d out of range", w, got)
		}
		for d := 0; d <= 8; d++ {
			if got := Day(p, s, w, d); got < 0 || got > 100 {
				t.Errorf("day %d/%d completion %d out of range", w, d, got)
			}
		}
	}
	if got := Program(p, s); got != 100 {
		t.Errorf("expected full program completion, got %d", got)
	}
}

func TestProgram(t *testing.T) {
	p := testProgram() // 18 exercises
	s := progress.New(nil)
	complete(t, s, 1, 1, 0, 1, 2)
	if got := Program(p, s); got != 17 {
		t.Errorf("expected round(100*3/18) = 17, got %d", got)
	}
}

func TestSummarize(t *testing.T) {
	p := testProgram()
	s := progress.New(nil)
	complete(t, s, 2, 1, 0, 1, 2)

	sum := Summarize(p, s, 2)
	if sum.Completion != 100 {
		t.Errorf("expected week 2 complete, got %d", sum.Completion)
	}
	if len(sum.Days) != 7 || sum.Days[1] != 100 || sum.Days[2] != 0 {
		t.Errorf("unexpected day completions: %v", sum.Days)
	}
}
