package nutrition

import "math"

// Macros are the four dimensions compared by Match.
type Macros struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}

// Tolerance is the allowed deviation per dimension, in percent of the target.
type Tolerance struct {
	Calories float64
	Carbs    float64
	Fat      float64
	Protein  float64
}

// DefaultTolerance is used when the caller passes no tolerance.
var DefaultTolerance = Tolerance{Calories: 15, Carbs: 15, Fat: 15, Protein: 10}

// proteinWeight makes protein deviation count 25% more in the score.
const proteinWeight = 1.25

// Diffs are percent deviations from the target, rounded to one decimal.
type Diffs struct {
	Calories float64
	Carbs    float64
	Fat      float64
	Protein  float64
}

// MatchResult reports whether a candidate fits a target. Lower Score is better.
type MatchResult struct {
	IsMatch bool
	Score   float64
	Diffs   Diffs
}

func percentDiff(target, candidate float64) float64 {
	if target <= 0 {
		if candidate <= 0 {
			return 0
		}
		return 100
	}
	return Round1(math.Abs(candidate-target) / target * 100)
}

// Match scores candidate against target. A nil tolerance means DefaultTolerance.
// All four dimensions must be within tolerance for IsMatch.
func Match(target, candidate Macros, tol *Tolerance) MatchResult {
	t := DefaultTolerance
	if tol != nil {
		t = *tol
	}
	d := Diffs{
		Calories: percentDiff(target.Calories, candidate.Calories),
		Carbs:    percentDiff(target.Carbs, candidate.Carbs),
		Fat:      percentDiff(target.Fat, candidate.Fat),
		Protein:  percentDiff(target.Protein, candidate.Protein),
	}
	return MatchResult{
		IsMatch: d.Calories <= t.Calories &&
			d.Carbs <= t.Carbs &&
			d.Fat <= t.Fat &&
			d.Protein <= t.Protein,
		Score: Round1(d.Calories + d.Carbs + d.Fat + d.Protein*proteinWeight),
		Diffs: d,
	}
}
