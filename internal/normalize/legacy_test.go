package normalize

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/carpenike/repcal/internal/database"
	"github.com/carpenike/repcal/internal/models"
)

const legacyJSON = `{
  "id": "test",
  "name": "Test Program",
  "weeks": 8,
  "workoutTemplate": {
    "1": {
      "type": "gym",
      "focus": "Push",
      "sections": [
        {"name": "Warm-up", "exercises": [{"name": "Row", "category": "cardio", "time": "5:00"}]},
        {"name": "Main", "exercises": [
          {"name": "Bench Press", "category": "strength", "sets": 3, "reps": "{{strengthReps}}"},
          {"name": "Dips", "category": "bodyweight", "reps": "{{dipReps}}", "notes": "{{missingVar}} tempo"}
        ]}
      ]
    },
    "3": {
      "type": "home",
      "exercises": [{"name": "Plank", "category": "time", "time": 30}]
    },
    "7": null
  },
  "weeklyProgression": {
    "strengthReps": {"weeks1-2": "10", "weeks3-4": "8", "weeks5-6": "6"},
    "dipReps": {"weeks1-2": 8, "weeks3-4": 10}
  }
}`

func mustNormalize(t testing.TB, raw string) *models.Program {
	t.Helper()
	p, err := NormalizeJSON([]byte(raw))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return p
}

func TestProgressionBucket(t *testing.T) {
	tests := map[int]string{
		1: BucketWeeks1to2, 2: BucketWeeks1to2,
		3: BucketWeeks3to4, 4: BucketWeeks3to4,
		5: BucketWeeks5to6, 6: BucketWeeks5to6,
		7: BucketWeeks1to2, 12: BucketWeeks1to2,
	}
	for week, want := range tests {
		if got := ProgressionBucket(week); got != want {
			t.Errorf("ProgressionBucket(%d) = %q, want %q", week, got, want)
		}
	}
}

func TestNormalizeTemplate_Substitution(t *testing.T) {
	p := mustNormalize(t, legacyJSON)

	if p.Weeks != 8 || p.DaysPerWeek != 7 {
		t.Fatalf("expected 8 weeks x 7 days, got %d x %d", p.Weeks, p.DaysPerWeek)
	}

	tests := []struct {
		week     int
		wantReps string
		wantDips string
	}{
		{1, "10", "8"},
		{2, "10", "8"},
		{3, "8", "10"},
		{4, "8", "10"},
		{5, "6", "8"}, // dipReps has no weeks5-6 bucket: falls back to weeks1-2
		{6, "6", "8"},
		{7, "10", "8"},
		{8, "10", "8"},
	}
	for _, tt := range tests {
		ex := p.ExercisesForDay(tt.week, 1)
		if len(ex) != 3 {
			t.Fatalf("week %d: expected 3 exercises, got %d", tt.week, len(ex))
		}
		if ex[1].Reps.String() != tt.wantReps {
			t.Errorf("week %d: bench reps = %q, want %q", tt.week, ex[1].Reps, tt.wantReps)
		}
		if ex[2].Reps.String() != tt.wantDips {
			t.Errorf("week %d: dip reps = %q, want %q", tt.week, ex[2].Reps, tt.wantDips)
		}
		if ex[2].Notes != "{{missingVar}} tempo" {
			t.Errorf("week %d: expected unresolved placeholder left verbatim, got %q", tt.week, ex[2].Notes)
		}
	}
}

func TestNormalizeTemplate_FlatAndRestDays(t *testing.T) {
	p := mustNormalize(t, legacyJSON)

	plan := p.Day(2, 3)
	if plan == nil || len(plan.Sections) != 1 {
		t.Fatalf("expected flat exercises wrapped in one section, got %+v", plan)
	}
	if plan.Sections[0].Name != flatSectionName {
		t.Errorf("expected section %q, got %q", flatSectionName, plan.Sections[0].Name)
	}
	if plan.Sections[0].Exercises[0].Time != "30" {
		t.Errorf("expected numeric time to decode as \"30\", got %q", plan.Sections[0].Exercises[0].Time)
	}

	if p.Day(1, 7) != nil {
		t.Error("expected null day template to be a rest day")
	}
	if p.Day(1, 2) != nil {
		t.Error("expected missing day template to be a rest day")
	}
}

func TestNormalizeTemplate_WeeksAreIndependent(t *testing.T) {
	p := mustNormalize(t, legacyJSON)

	p.Exercises[1][1].Sections[1].Exercises[0].Name = "Changed"
	if p.ExercisesForDay(2, 1)[1].Name != "Bench Press" {
		t.Error("weeks share exercise storage")
	}
}

func TestNormalizeTemplate_Idempotent(t *testing.T) {
	a := mustNormalize(t, legacyJSON)
	b := mustNormalize(t, legacyJSON)

	if models.Fingerprint(a) != models.Fingerprint(b) {
		t.Fatal("expected identical structure from identical input")
	}
	for _, week := range a.WeekNumbers() {
		for _, day := range a.DayNumbers() {
			ea, eb := a.ExercisesForDay(week, day), b.ExercisesForDay(week, day)
			if len(ea) != len(eb) {
				t.Fatalf("week %d day %d: %d vs %d exercises", week, day, len(ea), len(eb))
			}
			for i := range ea {
				if ea[i].Name != eb[i].Name || ea[i].Category != eb[i].Category {
					t.Errorf("week %d day %d idx %d differs: %+v vs %+v", week, day, i, ea[i], eb[i])
				}
			}
		}
	}
}

func TestNormalizeTemplate_Errors(t *testing.T) {
	t.Run("no workoutTemplate", func(t *testing.T) {
		_, err := NormalizeTemplate(&Template{Name: "x", Weeks: 2})
		if !errors.Is(err, ErrIncompleteConfig) {
			t.Errorf("expected ErrIncompleteConfig, got %v", err)
		}
	})

	t.Run("zero weeks", func(t *testing.T) {
		_, err := NormalizeTemplate(&Template{
			Name:            "x",
			WorkoutTemplate: map[int]*DayTemplate{1: {Type: "gym"}},
		})
		var ve *models.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := NormalizeJSON([]byte(`{"name":"x"}`)); !errors.Is(err, ErrIncompleteConfig) {
			t.Errorf("expected ErrIncompleteConfig, got %v", err)
		}
	})

	t.Run("corrupt json", func(t *testing.T) {
		if _, err := NormalizeJSON([]byte(`{`)); err == nil {
			t.Error("expected error for corrupt json")
		}
	})
}

func TestHasUnresolvedPlaceholders(t *testing.T) {
	p := mustNormalize(t, legacyJSON)
	if !HasUnresolvedPlaceholders(p) {
		t.Error("expected {{missingVar}} to be detected")
	}

	if HasUnresolvedPlaceholders(FallbackProgram()) {
		t.Error("fallback program should have no placeholders")
	}
}

func TestSubstitute(t *testing.T) {
	vars := Vars{"a": "1", "b": "two"}
	tests := map[string]string{
		"{{a}}x{{b}}": "1xtwo",
		"{{c}}":       "{{c}}",
		"no vars":     "no vars",
		"{{ a }}":     "{{ a }}",
		"{{a}}-{{a}}": "1-1",
	}
	for in, want := range tests {
		if got := Substitute(in, vars); got != want {
			t.Errorf("Substitute(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSeedProgramNormalizes(t *testing.T) {
	p, err := NormalizeJSON(database.SeedProgram())
	if err != nil {
		t.Fatalf("normalize seed program: %v", err)
	}
	if HasUnresolvedPlaceholders(p) {
		t.Error("seed program left placeholders unresolved")
	}
	if got := p.ExercisesForDay(3, 1)[2].Reps; got != "8" {
		t.Errorf("expected week 3 bench reps 8, got %q", got)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back models.Program
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if models.Fingerprint(&back) != models.Fingerprint(p) {
		t.Error("expected persisted program to keep its structure")
	}
}

func TestFallbackProgram(t *testing.T) {
	p := FallbackProgram()
	ex := p.ExercisesForDay(1, 1)
	if len(ex) != 1 {
		t.Fatalf("expected one exercise, got %d", len(ex))
	}
	if ex[0].Category != models.CategoryBodyweight || p.Day(1, 1).Type != "gym" {
		t.Errorf("unexpected fallback content: %+v", p.Day(1, 1))
	}

	if got := OrFallback(nil, errors.New("boom")); got.ID != FallbackProgramID {
		t.Errorf("expected fallback on error, got %q", got.ID)
	}
	if got := OrFallback(p, nil); got != p {
		t.Error("expected program passed through without error")
	}
}
