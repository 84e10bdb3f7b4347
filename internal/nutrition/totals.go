package nutrition

import "math"

// Nutrients is a set of the seven tracked nutrition values.
type Nutrients struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    float64
	Sugar    float64
	Salt     float64
}

// Per100g holds an ingredient's nutrition per 100 g. Nil fields count as 0.
type Per100g struct {
	Calories *float64
	Protein  *float64
	Carbs    *float64
	Fat      *float64
	Fiber    *float64
	Sugar    *float64
	Salt     *float64
}

// Entry is one quantity of an ingredient to aggregate.
type Entry struct {
	Amount    float64
	Unit      string
	Per100g   Per100g
	Overrides *Overrides
}

// Totals is the aggregate over a list of entries. Values are unrounded.
type Totals struct {
	Nutrients
	TotalGrams              float64
	Warnings                []Warning
	WarningCount            int
	HasEstimatedConversions bool
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Scale returns the nutrients contained in grams of the ingredient.
func (p Per100g) Scale(grams float64) Nutrients {
	f := grams / 100
	return Nutrients{
		Calories: val(p.Calories) * f,
		Protein:  val(p.Protein) * f,
		Carbs:    val(p.Carbs) * f,
		Fat:      val(p.Fat) * f,
		Fiber:    val(p.Fiber) * f,
		Sugar:    val(p.Sugar) * f,
		Salt:     val(p.Salt) * f,
	}
}

// Add returns the field-wise sum.
func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Carbs:    n.Carbs + o.Carbs,
		Fat:      n.Fat + o.Fat,
		Fiber:    n.Fiber + o.Fiber,
		Sugar:    n.Sugar + o.Sugar,
		Salt:     n.Salt + o.Salt,
	}
}

// Rounded rounds every field to one decimal.
func (n Nutrients) Rounded() Nutrients {
	return Nutrients{
		Calories: Round1(n.Calories),
		Protein:  Round1(n.Protein),
		Carbs:    Round1(n.Carbs),
		Fat:      Round1(n.Fat),
		Fiber:    Round1(n.Fiber),
		Sugar:    Round1(n.Sugar),
		Salt:     Round1(n.Salt),
	}
}

// Macros projects the four matching dimensions.
func (n Nutrients) Macros() Macros {
	return Macros{Calories: n.Calories, Protein: n.Protein, Carbs: n.Carbs, Fat: n.Fat}
}

// Round1 rounds half up to one decimal place.
func Round1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

// ComputeTotals converts every entry to grams and sums the scaled nutrition.
// Unresolved entries contribute nothing but keep their warnings.
func ComputeTotals(entries []Entry) Totals {
	var t Totals
	for _, e := range entries {
		c := ConvertToGrams(e.Amount, e.Unit, e.Overrides)
		t.Warnings = append(t.Warnings, c.Warnings...)
		t.WarningCount += len(c.Warnings)
		if c.IsEstimated {
			t.HasEstimatedConversions = true
		}
		if !c.Resolved {
			continue
		}
		t.TotalGrams += c.Grams
		t.Nutrients = t.Nutrients.Add(e.Per100g.Scale(c.Grams))
	}
	return t
}

// Rounded returns a copy with nutrients and total grams rounded to one decimal.
func (t Totals) Rounded() Totals {
	r := t
	r.Nutrients = t.Nutrients.Rounded()
	r.TotalGrams = Round1(t.TotalGrams)
	return r
}
