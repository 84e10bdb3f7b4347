// Package assistant builds the nutrition context handed to an external text
// generator and validates the JSON suggestion it returns.
package assistant

import (
	"fmt"
	"strings"

	"github.com/fubl84/peakly-sub001/internal/nutrition"
)

// BuildContext renders a deterministic plain-text block describing a slot
// target and its ranked recipe matches.
func BuildContext(slot string, target nutrition.SlotTarget, matches []nutrition.SlotMatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meal slot: %s\n", slot)
	fmt.Fprintf(&b, "Target: %.1f kcal, protein %.1f g, carbs %.1f g, fat %.1f g\n",
		target.Calories, target.Protein, target.Carbs, target.Fat)
	if target.HasEstimatedConversions {
		fmt.Fprintf(&b, "Note: target uses estimated unit conversions (%d warnings)\n", target.WarningCount)
	}

	if len(matches) == 0 {
		b.WriteString("Matching recipes: none\n")
		return b.String()
	}
	b.WriteString("Matching recipes (best first):\n")
	for i, m := range matches {
		c, d := m.Candidate, m.Result.Diffs
		fmt.Fprintf(&b, "%d. %s [%s] %.1f kcal, P %.1f, C %.1f, F %.1f; score %.1f (kcal %.1f%%, P %.1f%%, C %.1f%%, F %.1f%%)\n",
			i+1, c.Name, c.ID, c.Macros.Calories, c.Macros.Protein, c.Macros.Carbs, c.Macros.Fat,
			m.Result.Score, d.Calories, d.Protein, d.Carbs, d.Fat)
	}
	return b.String()
}

// Prompt wraps the context with the reply format the generator must follow.
func Prompt(slotContext string) string {
	var b strings.Builder
	b.WriteString(slotContext)
	b.WriteString("\nPick recipes from the list above for this meal slot.\n")
	b.WriteString(`Reply with JSON only: {"title": string, "recipe_ids": [string], "notes": string (optional)}.`)
	b.WriteString("\n")
	return b.String()
}
