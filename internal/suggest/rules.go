package suggest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/carpenike/repcal/internal/models"
)

// Progression constants. Product-tuned values; keep them named.
const (
	// PlateIncrement is the granularity suggested weights are rounded to.
	PlateIncrement = 2.5

	// StrengthEarlyWeeks is the last notional week that gets the larger
	// strength weight step.
	StrengthEarlyWeeks = 2

	// StrengthEarlyStep applies to every strength weight in the early weeks,
	// light or heavy: 95 must progress to 100. The cost is a steep relative
	// jump on light lifts (20 becomes 25).
	StrengthEarlyStep = 5.0
	StrengthLateStep  = 2.5
	DefaultWeightStep  = 2.5

	// IntervalEarlyWeeks is the last notional week that gets the smaller
	// emom/amrap reps step.
	IntervalEarlyWeeks = 3
)

// Strategy is the progression behavior of a category. A nil step leaves
// that kind of field unchanged. Each step receives the running value and
// the notional week the increment lands in.
type Strategy struct {
	WeightStep func(current float64, notionalWeek int) float64
	RepsStep   func(current, notionalWeek int) int
	TimeStep   func(seconds, notionalWeek int) int
}

var (
	strengthStrategy = Strategy{
		WeightStep: func(_ float64, week int) float64 {
			if week <= StrengthEarlyWeeks {
				return StrengthEarlyStep
			}
			return StrengthLateStep
		},
		// Reps hold constant; overload goes to weight.
		RepsStep: nil,
		TimeStep: flatTimeStep,
	}

	bodyweightStrategy = Strategy{
		WeightStep: flatWeightStep,
		RepsStep: func(current, _ int) int {
			switch {
			case current < 10:
				return 1
			case current < 20:
				return 2
			}
			return 3
		},
		TimeStep: flatTimeStep,
	}

	intervalStrategy = Strategy{
		WeightStep: flatWeightStep,
		RepsStep: func(_, week int) int {
			if week <= IntervalEarlyWeeks {
				return 1
			}
			return 2
		},
		TimeStep: flatTimeStep,
	}

	holdStrategy = Strategy{
		WeightStep: flatWeightStep,
		RepsStep:   flatRepsStep,
		TimeStep: func(seconds, _ int) int {
			switch {
			case seconds < 30:
				return 5
			case seconds < 60:
				return 10
			}
			return 15
		},
	}

	cardioStrategy = Strategy{
		WeightStep: flatWeightStep,
		RepsStep:   flatRepsStep,
		TimeStep: func(seconds, _ int) int {
			if seconds < 120 {
				return 15
			}
			return 30
		},
	}

	defaultStrategy = Strategy{
		WeightStep: flatWeightStep,
		RepsStep:   flatRepsStep,
		TimeStep:   flatTimeStep,
	}
)

func flatWeightStep(float64, int) float64 { return DefaultWeightStep }
func flatRepsStep(int, int) int           { return 1 }
func flatTimeStep(int, int) int           { return 5 }

// strategies maps every known category to its progression behavior.
var strategies = map[models.Category]Strategy{
	models.CategoryStrength:    strengthStrategy,
	models.CategoryBodyweight:  bodyweightStrategy,
	models.CategoryEMOM:        intervalStrategy,
	models.CategoryAMRAP:       intervalStrategy,
	models.CategoryTime:        holdStrategy,
	models.CategoryFlexibility: holdStrategy,
	models.CategoryCardio:      cardioStrategy,
	models.CategoryMobility:    defaultStrategy,
	models.CategoryCircuit:     defaultStrategy,
	models.CategoryLifestyle:   defaultStrategy,
	models.CategoryRest:        defaultStrategy,
	models.CategoryOther:       defaultStrategy,
}

// StrategyFor returns the progression strategy of a category.
func StrategyFor(c models.Category) Strategy {
	if s, ok := strategies[c.Normalize()]; ok {
		return s
	}
	return defaultStrategy
}

// progressWeight applies the weight rule. Unparseable values pass through.
func progressWeight(raw string, st Strategy, sourceWeek, weeks int) string {
	w, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || st.WeightStep == nil {
		return raw
	}
	for i := 0; i < weeks; i++ {
		w += st.WeightStep(w, sourceWeek+i+1)
	}
	w = math.Round(w/PlateIncrement) * PlateIncrement
	return strconv.FormatFloat(w, 'f', -1, 64)
}

// progressReps applies the reps rule. The result never drops below the
// original.
func progressReps(raw string, st Strategy, sourceWeek, weeks int) string {
	orig, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || st.RepsStep == nil {
		return raw
	}
	total := 0
	for i := 0; i < weeks; i++ {
		total += st.RepsStep(orig+total, sourceWeek+i+1)
	}
	return strconv.Itoa(max(orig+total, orig))
}

// progressTime applies the time rule, keeping MM:SS when the source used it.
func progressTime(raw string, st Strategy, sourceWeek, weeks int) string {
	secs, colon, ok := parseSeconds(raw)
	if !ok || st.TimeStep == nil {
		return raw
	}
	for i := 0; i < weeks; i++ {
		secs += st.TimeStep(secs, sourceWeek+i+1)
	}
	if colon {
		return fmt.Sprintf("%d:%02d", secs/60, secs%60)
	}
	return strconv.Itoa(secs)
}

// parseSeconds accepts plain seconds ("45") or MM:SS ("1:30").
func parseSeconds(raw string) (secs int, colon bool, ok bool) {
	s := strings.TrimSpace(raw)
	if m, sec, found := strings.Cut(s, ":"); found {
		mins, err1 := strconv.Atoi(m)
		ss, err2 := strconv.Atoi(sec)
		if err1 != nil || err2 != nil || mins < 0 || ss < 0 || ss > 59 || len(sec) != 2 {
			return 0, true, false
		}
		return mins*60 + ss, true, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false, false
	}
	return n, false, true
}
