package normalize

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/carpenike/repcal/internal/models"
)

func modularConfig() *ModularConfig {
	return &ModularConfig{
		Metadata: &ProgramMetadata{ID: "mod", Name: "Modular", Weeks: 4},
		Phases: []Phase{
			{ID: "base", Name: "Base", StartWeek: 1, EndWeek: 2, Progression: PhaseProgression{RepTarget: "12", Sets: 3}},
			{ID: "build", Name: "Build", StartWeek: 3, EndWeek: 4, Progression: PhaseProgression{RepTarget: "8", Sets: 4, TimeTarget: "0:45"}},
		},
		DayTemplates: map[int]*ModularDay{
			1: {Type: "gym", Focus: "Full Body ({{phase}})", Sections: []string{"warmup", "main"}},
			3: {Type: "home", Sections: []string{"core", "ghost"}},
		},
		Library: []LibraryExercise{
			{ID: "row", Name: "Row Erg", Category: models.CategoryCardio, Time: "5:00"},
			{ID: "squat", Name: "Squat", Category: models.CategoryStrength},
			{ID: "bench", Name: "Bench Press", Category: models.CategoryStrength},
			{ID: "deadlift", Name: "Deadlift", Category: models.CategoryStrength},
			{ID: "plank", Name: "Plank", Category: models.CategoryTime},
			{ID: "pushup", Name: "Push-up", Category: models.CategoryBodyweight},
		},
		Sections: map[string]SectionDefinition{
			"warmup": {Name: "Warm-up", Categories: []models.Category{models.CategoryCardio}},
			"main":   {Name: "Strength", Categories: []models.Category{models.CategoryStrength}, Count: 2},
			"core":   {Name: "Core", Exercises: []string{"plank", "missing", "pushup"}},
		},
	}
}

func TestNormalizeModular_Generated(t *testing.T) {
	p, err := NormalizeModular(modularConfig())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	day1 := p.Day(1, 1)
	if day1 == nil || len(day1.Sections) != 2 {
		t.Fatalf("expected 2 sections on week 1 day 1, got %+v", day1)
	}
	if day1.Focus != "Full Body (Base)" {
		t.Errorf("expected phase placeholder filled, got %q", day1.Focus)
	}

	ex := p.ExercisesForDay(1, 1)
	names := []string{"Row Erg", "Squat", "Bench Press"}
	if len(ex) != len(names) {
		t.Fatalf("expected %d exercises (count limit 2), got %d", len(names), len(ex))
	}
	for i, n := range names {
		if ex[i].Name != n {
			t.Errorf("exercise %d = %q, want %q", i, ex[i].Name, n)
		}
	}
	if ex[1].Reps != "12" || ex[1].Sets != 3 {
		t.Errorf("expected base phase 3x12, got %dx%s", ex[1].Sets, ex[1].Reps)
	}

	week3 := p.ExercisesForDay(3, 1)
	if week3[1].Reps != "8" || week3[1].Sets != 4 {
		t.Errorf("expected build phase 4x8, got %dx%s", week3[1].Sets, week3[1].Reps)
	}

	core := p.Day(3, 3)
	if core == nil || len(core.Sections) != 1 {
		t.Fatalf("expected unknown section skipped, got %+v", core)
	}
	if got := len(core.Sections[0].Exercises); got != 2 {
		t.Errorf("expected unknown exercise skipped, got %d exercises", got)
	}
	if core.Sections[0].Exercises[0].Time != "0:45" {
		t.Errorf("expected build phase time target on plank, got %q", core.Sections[0].Exercises[0].Time)
	}

	if p.Day(1, 2) != nil {
		t.Error("expected day without template to be a rest day")
	}
}

func TestNormalizeModular_Idempotent(t *testing.T) {
	a, err := NormalizeModular(modularConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		b, err := NormalizeModular(modularConfig())
		if err != nil {
			t.Fatal(err)
		}
		if models.Fingerprint(a) != models.Fingerprint(b) {
			t.Fatalf("run %d produced a different structure", i)
		}
	}
}

func TestNormalizeModular_Sessions(t *testing.T) {
	c := modularConfig()
	c.Sessions = []Session{
		{Day: 1, Sections: []SessionSection{
			{SectionID: "main", Exercises: []SessionExercise{
				{ExerciseID: "deadlift", Sets: 5, Reps: "5"},
				{ExerciseID: "nope"},
			}},
			{SectionID: "unknown-section", Exercises: []SessionExercise{{ExerciseID: "squat"}}},
		}},
		{Weeks: []int{2, 4}, Day: 5, Type: "gym", Focus: "Extra", Sections: []SessionSection{
			{SectionID: "core", Name: "Abs", Exercises: []SessionExercise{{ExerciseID: "plank", Time: "1:00"}}},
		}},
	}

	p, err := NormalizeModular(c)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	day := p.Day(1, 1)
	if day == nil {
		t.Fatal("expected session on day 1")
	}
	if day.Type != "gym" {
		t.Errorf("expected type from day template, got %q", day.Type)
	}
	if len(day.Sections) != 1 || day.Sections[0].Name != "Strength" {
		t.Fatalf("expected single resolved section, got %+v", day.Sections)
	}
	ex := day.Sections[0].Exercises
	if len(ex) != 1 || ex[0].Name != "Deadlift" || ex[0].Sets != 5 || ex[0].Reps != "5" {
		t.Errorf("unexpected session exercises: %+v", ex)
	}

	if p.Day(1, 3) != nil {
		t.Error("sessions replace generation: day 3 should be rest")
	}
	if p.Day(1, 5) != nil {
		t.Error("week-limited session should not appear in week 1")
	}
	if plan := p.Day(4, 5); plan == nil || plan.Sections[0].Name != "Abs" {
		t.Errorf("expected week 4 day 5 session with overridden name, got %+v", plan)
	}
}

func TestNormalizeModular_MissingRequired(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ModularConfig)
	}{
		{"metadata", func(c *ModularConfig) { c.Metadata = nil }},
		{"library", func(c *ModularConfig) { c.Library = nil }},
		{"sections", func(c *ModularConfig) { c.Sections = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := modularConfig()
			tt.mutate(c)
			if _, err := NormalizeModular(c); !errors.Is(err, ErrIncompleteConfig) {
				t.Errorf("expected ErrIncompleteConfig, got %v", err)
			}
		})
	}

	if _, err := NormalizeModular(nil); !errors.Is(err, ErrIncompleteConfig) {
		t.Errorf("expected ErrIncompleteConfig for nil config, got %v", err)
	}
}

func TestFSLoader_YAMLTemplate(t *testing.T) {
	fsys := fstest.MapFS{
		"programs/simple.yaml": {Data: []byte(`
name: YAML Program
weeks: 2
workoutTemplate:
  1:
    type: gym
    exercises:
      - name: Goblet Squat
        category: strength
        sets: 3
        reps: "{{reps}}"
weeklyProgression:
  reps:
    weeks1-2: 12
`)},
	}

	p, err := LoadTemplate(context.Background(), FSLoader{FS: fsys}, "programs/simple.yaml")
	if err != nil {
		t.Fatalf("load yaml template: %v", err)
	}
	if p.ID != "yaml-program" {
		t.Errorf("expected slug id, got %q", p.ID)
	}
	ex := p.ExercisesForDay(2, 1)
	if len(ex) != 1 || ex[0].Reps != "12" {
		t.Errorf("unexpected exercises: %+v", ex)
	}
}

func TestLoadModular_Directory(t *testing.T) {
	fsys := fstest.MapFS{
		"cfg/program-metadata.json":    {Data: []byte(`{"id":"dir","name":"Dir Program","weeks":1}`)},
		"cfg/exercise-library.yaml":    {Data: []byte("- id: pushup\n  name: Push-up\n  category: bodyweight\n")},
		"cfg/section-definitions.json": {Data: []byte(`{"main":{"name":"Main","categories":["bodyweight"]}}`)},
		"cfg/day-templates.json":       {Data: []byte(`{"2":{"type":"home","sections":["main"]}}`)},
	}

	p, err := LoadModular(context.Background(), FSLoader{FS: fsys}, "cfg")
	if err != nil {
		t.Fatalf("load modular: %v", err)
	}
	ex := p.ExercisesForDay(1, 2)
	if len(ex) != 1 || ex[0].Name != "Push-up" {
		t.Errorf("unexpected exercises: %+v", ex)
	}

	delete(fsys, "cfg/exercise-library.yaml")
	if _, err := LoadModular(context.Background(), FSLoader{FS: fsys}, "cfg"); !errors.Is(err, ErrIncompleteConfig) {
		t.Errorf("expected ErrIncompleteConfig without library, got %v", err)
	}
}
