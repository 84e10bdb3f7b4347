package convert

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/fubl84/peakly-sub001/internal/assistant"
	"github.com/fubl84/peakly-sub001/internal/model"
	"github.com/fubl84/peakly-sub001/internal/nutrition"
)

// Object is a JSON-like map accepted by structpb.NewStruct.
type Object = map[string]any

// ToStruct builds a Struct from an Object.
func ToStruct(o Object) (*structpb.Struct, error) { return structpb.NewStruct(o) }

func list[T any](in []T, fn func(T) Object) []any {
	out := make([]any, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

func ts(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func warnings(ws []nutrition.Warning) []any {
	return list(ws, func(w nutrition.Warning) Object {
		return Object{"kind": string(w.Kind), "unit": w.Unit, "message": w.Message}
	})
}

func nutrients(n nutrition.Nutrients) Object {
	return Object{
		"calories": n.Calories, "protein": n.Protein, "carbs": n.Carbs, "fat": n.Fat,
		"fiber": n.Fiber, "sugar": n.Sugar, "salt": n.Salt,
	}
}

func macros(m nutrition.Macros) Object {
	return Object{"calories": m.Calories, "protein": m.Protein, "carbs": m.Carbs, "fat": m.Fat}
}

// Conversion encodes a unit conversion; grams is null when unresolved.
func Conversion(c nutrition.Conversion) Object {
	var grams any
	if c.Resolved {
		grams = c.Grams
	}
	return Object{"grams": grams, "warnings": warnings(c.Warnings), "is_estimated": c.IsEstimated}
}

// Snapshot encodes a recipe nutrition snapshot.
func Snapshot(s model.NutritionSnapshot) Object {
	o := nutrients(s.Nutrients)
	o["recipe_id"] = s.RecipeID.String()
	o["total_grams"] = s.TotalGrams
	o["warning_count"] = s.WarningCount
	o["has_estimated_conversions"] = s.HasEstimatedConversions
	o["computed_at"] = ts(s.ComputedAt)
	return o
}

// SlotTarget encodes a meal slot target.
func SlotTarget(t nutrition.SlotTarget) Object {
	o := macros(t.Macros)
	o["warnings"] = warnings(t.Warnings)
	o["warning_count"] = t.WarningCount
	o["has_estimated_conversions"] = t.HasEstimatedConversions
	return o
}

// SlotMatch encodes a ranked candidate.
func SlotMatch(m nutrition.SlotMatch) Object {
	d := m.Result.Diffs
	return Object{
		"recipe_id": m.Candidate.ID.String(),
		"name":      m.Candidate.Name,
		"macros":    macros(m.Candidate.Macros),
		"score":     m.Result.Score,
		"diffs":     Object{"calories": d.Calories, "protein": d.Protein, "carbs": d.Carbs, "fat": d.Fat},
	}
}

// SlotMatches encodes ranked candidates in order.
func SlotMatches(ms []nutrition.SlotMatch) []any { return list(ms, SlotMatch) }

// Assignment encodes a path assignment.
func Assignment(a model.PathAssignment) Object {
	var gate any
	if a.VariantOptionID != nil {
		gate = a.VariantOptionID.String()
	}
	return Object{
		"id":                a.ID.String(),
		"kind":              string(a.Kind),
		"content_id":        a.ContentID.String(),
		"week_start":        a.WeekStart,
		"week_end":          a.WeekEnd,
		"variant_option_id": gate,
	}
}

// Assignments encodes assignments in order.
func Assignments(as []model.PathAssignment) []any { return list(as, Assignment) }

// AssignmentsByKind encodes grouped assignments with one list per kind,
// empty kinds included.
func AssignmentsByKind(g map[model.ContentKind][]model.PathAssignment) Object {
	o := make(Object, len(model.KindOrder))
	for _, k := range model.KindOrder {
		o[string(k)] = Assignments(g[k])
	}
	return o
}

// Enrollment encodes an enrollment with its variants.
func Enrollment(e model.Enrollment) Object {
	return Object{
		"id":         e.ID.String(),
		"user_id":    e.UserID.String(),
		"path_id":    e.PathID.String(),
		"start_date": e.StartDate.Format(time.DateOnly),
		"active":     e.Active,
		"created_at": ts(e.CreatedAt),
		"variants": list(e.Variants, func(v model.VariantSelection) Object {
			return Object{"variant_type_id": v.VariantTypeID.String(), "variant_option_id": v.VariantOptionID.String()}
		}),
	}
}

// ShoppingItems encodes a weekly list.
func ShoppingItems(items []model.ShoppingListItem) []any {
	return list(items, func(it model.ShoppingListItem) Object {
		return Object{
			"ingredient_id": it.IngredientID.String(),
			"name":          it.Name,
			"unit":          it.Unit,
			"amount":        it.Amount,
		}
	})
}

// IDs encodes a list of UUIDs as strings.
func IDs(ids []uuid.UUID) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

// AssistantResult encodes a validated assistant reply.
func AssistantResult(r assistant.Result) Object {
	o := Object{"status": r.Status.String()}
	if r.Suggestion == nil {
		o["field"] = r.Field
		o["reason"] = r.Reason
		return o
	}
	o["title"] = r.Suggestion.Title
	o["recipe_ids"] = IDs(r.Suggestion.RecipeIDs)
	o["notes"] = r.Suggestion.Notes
	return o
}
