package suggest

import (
	"context"
	"math"
	"strconv"
	"testing"

	"github.com/carpenike/repcal/internal/models"
	"github.com/carpenike/repcal/internal/progress"
)

const (
	idxBench = iota
	idxPushups
	idxPlank
	idxRun
	idxAMRAP
	idxStretch
)

func testProgram() *models.Program {
	day := func() *models.DayPlan {
		return &models.DayPlan{
			Type: "gym",
			Sections: []models.Section{
				{Name: "Strength Block", Exercises: []models.Exercise{
					{Name: "Bench Press", Category: models.CategoryStrength, Sets: 3, Reps: "8"},
					{Name: "Push-ups", Category: models.CategoryBodyweight, Sets: 3},
				}},
				{Name: "Conditioning", Exercises: []models.Exercise{
					{Name: "Plank", Category: models.CategoryTime, Sets: 1},
					{Name: "Run", Category: models.CategoryCardio},
					{Name: "Burner", Category: models.CategoryAMRAP},
					{Name: "Hamstrings", Category: models.CategoryFlexibility},
				}},
			},
		}
	}
	p := &models.Program{ID: "test", Weeks: 6, DaysPerWeek: 7, Exercises: map[int]map[int]*models.DayPlan{}}
	for w := 1; w <= 6; w++ {
		p.Exercises[w] = map[int]*models.DayPlan{1: day()}
	}
	return p
}

func record(t *testing.T, s *progress.Store, week, index int, data models.ProgressData) {
	t.Helper()
	if _, err := s.Upsert(context.Background(), week, 1, index, data); err != nil {
		t.Fatalf("upsert: %v", err)
	}
}

func TestSuggest_BenchPressWeekTwo(t *testing.T) {
	p := testProgram()
	s := progress.New(nil)
	record(t, s, 1, idxBench, models.ProgressData{"set1_weight": "95", "set1_reps": "8"})

	got, ok := Suggest(p, s, 2, 1, idxBench)
	if !ok {
		t.Fatal("expected a suggestion")
	}
	if got.SourceWeek != 1 {
		t.Errorf("expected source week 1, got %d", got.SourceWeek)
	}
	if got.Fields["set1_weight"] != "100" {
		t.Errorf("expected set1_weight 100, got %q", got.Fields["set1_weight"])
	}
	if got.Fields["set1_reps"] != "8" {
		t.Errorf("expected strength reps held at 8, got %q", got.Fields["set1_reps"])
	}
	if len(got.Fields) != 2 {
		t.Errorf("expected only recorded fields, got %v", got.Fields)
	}
}

func TestSuggest_LightStrengthLiftEarlyStep(t *testing.T) {
	p := testProgram()
	s := progress.New(nil)
	record(t, s, 1, idxBench, models.ProgressData{"set1_weight": "20"})

	got, ok := Suggest(p, s, 2, 1, idxBench)
	if !ok {
		t.Fatal("expected a suggestion")
	}
	if got.Fields["set1_weight"] != "25" {
		t.Errorf("expected early step regardless of load, got %q", got.Fields["set1_weight"])
	}

	got, ok = Suggest(p, s, 4, 1, idxBench)
	if !ok {
		t.Fatal("expected a suggestion")
	}
	// Weeks 2, 3 and 4: +5, +2.5, +2.5.
	if got.Fields["set1_weight"] != "30" {
		t.Errorf("expected 30 after three weeks, got %q", got.Fields["set1_weight"])
	}
}

func TestSuggest_NoPriorWeek(t *testing.T) {
	p := testProgram()
	s := progress.New(nil)
	for w := 1; w <= 3; w++ {
		record(t, s, w, idxBench, models.ProgressData{"set1_weight": "135"})
	}
	for _, week := range []int{1, 0, -2} {
		if _, ok := Suggest(p, s, week, 1, idxBench); ok {
			t.Errorf("expected no suggestion for week %d", week)
		}
	}
	if _, ok := Suggest(p, s, 5, 2, idxBench); ok {
		t.Error("expected no suggestion on a day without data")
	}
	if _, ok := Suggest(p, s, 5, 1, 42); ok {
		t.Error("expected no suggestion for an index outside the day")
	}
}

func TestSuggest_StrengthWeightMonotone(t *testing.T) {
	p := testProgram()
	for src := 1; src <= 5; src++ {
		for _, w := range []float64{0, 2.5, 45, 95, 97, 99.9, 100, 225, 312.5} {
			s := progress.New(nil)
			raw := strconv.FormatFloat(w, 'f', -1, 64)
			record(t, s, src, idxBench, models.ProgressData{"set1_weight": raw})
			for target := src + 1; target <= 6; target++ {
				got, ok := Suggest(p, s, target, 1, idxBench)
				if !ok {
					t.Fatalf("src %d weight %s target %d: expected suggestion", src, raw, target)
				}
				v, err := strconv.ParseFloat(got.Fields["set1_weight"], 64)
				if err != nil {
					t.Fatalf("unparseable suggestion %q", got.Fields["set1_weight"])
				}
				if v < w {
					t.Errorf("src %d weight %s target %d: suggested %v below source", src, raw, target, v)
				}
				if math.Mod(v, PlateIncrement) != 0 {
					t.Errorf("src %d weight %s target %d: %v not a multiple of %v", src, raw, target, v, PlateIncrement)
				}
			}
		}
	}
}

func TestSuggest_WalksBackOverEmptyWeeks(t *testing.T) {
	p := testProgram()
	s := progress.New(nil)
	record(t, s, 1, idxBench, models.ProgressData{"set1_weight": "95"})
	record(t, s, 3, idxBench, models.ProgressData{
		models.FieldNameManualComplete: true,
		models.FieldNameNotes:          "felt great",
		"set1_weight":                  "  ",
	})

	got, ok := Suggest(p, s, 4, 1, idxBench)
	if !ok {
		t.Fatal("expected a suggestion")
	}
	if got.SourceWeek != 1 {
		t.Errorf("expected source week 1, got %d", got.SourceWeek)
	}
	// 95 +5 (wk2) +2.5 (wk3) +2.5 (wk4)
	if got.Fields["set1_weight"] != "105" {
		t.Errorf("expected 105, got %q", got.Fields["set1_weight"])
	}
	if _, ok := got.Fields[models.FieldNameNotes]; ok {
		t.Error("notes must never be suggested")
	}
}

func TestSuggest_MostRecentWeekWins(t *testing.T) {
	p := testProgram()
	s := progress.New(nil)
	record(t, s, 1, idxBench, models.ProgressData{"set1_weight": "95"})
	record(t, s, 3, idxBench, models.ProgressData{"set1_weight": "120"})

	got, _ := Suggest(p, s, 4, 1, idxBench)
	if got.SourceWeek != 3 || got.Fields["set1_weight"] != "122.5" {
		t.Errorf("expected 122.5 from week 3, got %+v", got)
	}
}

func TestSuggest_Categories(t *testing.T) {
	tests := []struct {
		name   string
		index  int
		source int
		target int
		data   models.ProgressData
		want   map[string]string
	}{
		{
			name: "bodyweight reps bucket recomputed", index: idxPushups, source: 1, target: 4,
			data: models.ProgressData{"set1_reps": "9", "set2_reps": "19"},
			want: map[string]string{"set1_reps": "14", "set2_reps": "27"},
		},
		{
			name: "time seconds", index: idxPlank, source: 1, target: 3,
			data: models.ProgressData{"set1_time": "25"},
			want: map[string]string{"set1_time": "40"},
		},
		{
			name: "time keeps MM:SS", index: idxPlank, source: 1, target: 2,
			data: models.ProgressData{"set1_time": "0:55"},
			want: map[string]string{"set1_time": "1:05"},
		},
		{
			name: "cardio duration and measures", index: idxRun, source: 1, target: 3,
			data: models.ProgressData{"duration": "1:50", "distance": "3.1", "pace": "8:30"},
			want: map[string]string{"duration": "2:35", "distance": "3.1", "pace": "8:30"},
		},
		{
			name: "amrap early weeks", index: idxAMRAP, source: 1, target: 3,
			data: models.ProgressData{"rounds": "4", "partial_reps": "5"},
			want: map[string]string{"rounds": "4", "partial_reps": "7"},
		},
		{
			name: "amrap late weeks", index: idxAMRAP, source: 3, target: 5,
			data: models.ProgressData{"partial_reps": "5"},
			want: map[string]string{"partial_reps": "9"},
		},
		{
			name: "flexibility duration", index: idxStretch, source: 2, target: 3,
			data: models.ProgressData{"duration": "60", "notes": "tight"},
			want: map[string]string{"duration": "75"},
		},
		{
			name: "numeric json values", index: idxBench, source: 1, target: 2,
			data: models.ProgressData{"set1_weight": 95.0, "set1_reps": 8.0},
			want: map[string]string{"set1_weight": "100", "set1_reps": "8"},
		},
		{
			name: "invalid values pass through", index: idxBench, source: 1, target: 2,
			data: models.ProgressData{"set1_weight": "heavy", "set2_weight": "100"},
			want: map[string]string{"set1_weight": "heavy", "set2_weight": "105"},
		},
		{
			name: "invalid time passes through", index: idxPlank, source: 1, target: 2,
			data: models.ProgressData{"set1_time": "1:75"},
			want: map[string]string{"set1_time": "1:75"},
		},
	}

	p := testProgram()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := progress.New(nil)
			record(t, s, tt.source, tt.index, tt.data)

			got, ok := Suggest(p, s, tt.target, 1, tt.index)
			if !ok {
				t.Fatal("expected a suggestion")
			}
			if len(got.Fields) != len(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got.Fields)
			}
			for k, v := range tt.want {
				if got.Fields[k] != v {
					t.Errorf("%s: expected %q, got %q", k, v, got.Fields[k])
				}
			}
		})
	}
}

func TestSuggest_SetsChanged(t *testing.T) {
	p := testProgram()
	s := progress.New(nil)
	// Two sets recorded; the program now asks for three.
	record(t, s, 1, idxBench, models.ProgressData{
		"set1_weight": "100", "set1_reps": "8",
		"set2_weight": "100", "set2_reps": "8",
	})

	got, ok := Suggest(p, s, 2, 1, idxBench)
	if !ok {
		t.Fatal("expected a suggestion")
	}
	if _, ok := got.Fields["set3_weight"]; ok {
		t.Error("fields missing from the source record must not be suggested")
	}
	if len(got.Fields) != 4 {
		t.Errorf("expected 4 fields, got %v", got.Fields)
	}
}

func TestSuggest_SkipsEnteredValues(t *testing.T) {
	p := testProgram()
	s := progress.New(nil)
	record(t, s, 1, idxBench, models.ProgressData{"set1_weight": "95", "set1_reps": "8"})
	record(t, s, 2, idxBench, models.ProgressData{"set1_weight": "110", "set1_reps": ""})

	got, ok := Suggest(p, s, 2, 1, idxBench)
	if !ok {
		t.Fatal("expected a suggestion for the blank field")
	}
	if _, ok := got.Fields["set1_weight"]; ok {
		t.Error("entered values must not get a suggestion")
	}
	if got.Fields["set1_reps"] != "8" {
		t.Errorf("expected set1_reps 8, got %q", got.Fields["set1_reps"])
	}

	record(t, s, 2, idxBench, models.ProgressData{"set1_weight": "110", "set1_reps": "6"})
	if _, ok := Suggest(p, s, 2, 1, idxBench); ok {
		t.Error("expected no suggestion once every field is entered")
	}
}

func TestSuggestion_Merge(t *testing.T) {
	sg := Suggestion{SourceWeek: 1, Fields: map[string]string{"set1_weight": "100", "set1_reps": "8"}}
	data := models.ProgressData{"set1_weight": "105", "notes": "x"}

	merged := sg.Merge(data)
	if merged.String("set1_weight") != "105" {
		t.Errorf("entered weight overwritten: %v", merged)
	}
	if merged.String("set1_reps") != "8" || merged.String("notes") != "x" {
		t.Errorf("unexpected merge result: %v", merged)
	}
	if _, ok := data["set1_reps"]; ok {
		t.Error("Merge must not mutate its input")
	}

	if got := sg.Merge(nil); len(got) != 2 {
		t.Errorf("expected suggestion fields on nil data, got %v", got)
	}
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in    string
		secs  int
		colon bool
		ok    bool
	}{
		{"45", 45, false, true},
		{" 90 ", 90, false, true},
		{"1:30", 90, true, true},
		{"10:05", 605, true, true},
		{"1:5", 0, true, false},
		{"1:60", 0, true, false},
		{"abc", 0, false, false},
		{"-5", 0, false, false},
		{"", 0, false, false},
	}
	for _, tt := range tests {
		secs, colon, ok := parseSeconds(tt.in)
		if ok != tt.ok || (ok && (secs != tt.secs || colon != tt.colon)) {
			t.Errorf("parseSeconds(%q) = %d, %v, %v; want %d, %v, %v", tt.in, secs, colon, ok, tt.secs, tt.colon, tt.ok)
		}
	}
}
