// Package convert maps google.protobuf.Struct messages to domain values and back.
package convert

import (
	"fmt"
	"math"
	"time"

	"github.com/gofrs/uuid/v5"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/fubl84/peakly-sub001/internal/errs"
	"github.com/fubl84/peakly-sub001/internal/model"
	"github.com/fubl84/peakly-sub001/internal/nutrition"
)

// Fields reads typed values from a request Struct. Every error wraps
// errs.ErrInvalidArgument.
type Fields struct{ s *structpb.Struct }

// Read wraps s; a nil Struct reads as empty.
func Read(s *structpb.Struct) Fields { return Fields{s: s} }

func invalid(key, format string, a ...any) error {
	return fmt.Errorf("%s: %s: %w", key, fmt.Sprintf(format, a...), errs.ErrInvalidArgument)
}

func (f Fields) value(key string) (*structpb.Value, bool) {
	if f.s == nil {
		return nil, false
	}
	v, ok := f.s.GetFields()[key]
	if !ok {
		return nil, false
	}
	if _, null := v.GetKind().(*structpb.Value_NullValue); null {
		return nil, false
	}
	return v, true
}

// Has reports whether key is present and not null.
func (f Fields) Has(key string) bool {
	_, ok := f.value(key)
	return ok
}

// String returns a string field or "" when absent.
func (f Fields) String(key string) (string, error) {
	v, ok := f.value(key)
	if !ok {
		return "", nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", invalid(key, "want string")
	}
	return sv.StringValue, nil
}

// Bool returns a boolean field or false when absent.
func (f Fields) Bool(key string) (bool, error) {
	v, ok := f.value(key)
	if !ok {
		return false, nil
	}
	bv, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, invalid(key, "want bool")
	}
	return bv.BoolValue, nil
}

// Float returns a required finite number.
func (f Fields) Float(key string) (float64, error) {
	v, ok := f.value(key)
	if !ok {
		return 0, invalid(key, "required")
	}
	nv, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || math.IsNaN(nv.NumberValue) || math.IsInf(nv.NumberValue, 0) {
		return 0, invalid(key, "want number")
	}
	return nv.NumberValue, nil
}

// Int returns an integral number or def when absent.
func (f Fields) Int(key string, def int) (int, error) {
	if !f.Has(key) {
		return def, nil
	}
	n, err := f.Float(key)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
		return 0, invalid(key, "want integer")
	}
	return int(n), nil
}

// UUID returns a required non-nil UUID.
func (f Fields) UUID(key string) (uuid.UUID, error) {
	s, err := f.String(key)
	if err != nil {
		return uuid.Nil, err
	}
	if s == "" {
		return uuid.Nil, invalid(key, "required")
	}
	id, err := uuid.FromString(s)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, invalid(key, "bad uuid %q", s)
	}
	return id, nil
}

// UUIDs returns a list of UUIDs; absent means empty.
func (f Fields) UUIDs(key string) ([]uuid.UUID, error) {
	v, ok := f.value(key)
	if !ok {
		return nil, nil
	}
	lv, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, invalid(key, "want list")
	}
	out := make([]uuid.UUID, 0, len(lv.ListValue.GetValues()))
	for i, item := range lv.ListValue.GetValues() {
		id, err := uuid.FromString(item.GetStringValue())
		if err != nil || id == uuid.Nil {
			return nil, invalid(fmt.Sprintf("%s[%d]", key, i), "bad uuid")
		}
		out = append(out, id)
	}
	return out, nil
}

// Date parses YYYY-MM-DD or RFC 3339. ok is false when absent.
func (f Fields) Date(key string) (t time.Time, ok bool, err error) {
	s, err := f.String(key)
	if err != nil || s == "" {
		return time.Time{}, false, err
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, invalid(key, "bad date %q", s)
	}
	return t, true, nil
}

// Kind returns an optional content kind filter.
func (f Fields) Kind(key string) (*model.ContentKind, error) {
	s, err := f.String(key)
	if err != nil || s == "" {
		return nil, err
	}
	k, ok := model.ParseContentKind(s)
	if !ok {
		return nil, invalid(key, "unknown kind %q", s)
	}
	return &k, nil
}

// VariantSelections reads a list of {variant_type_id, variant_option_id} objects.
func (f Fields) VariantSelections(key string) ([]model.VariantSelection, error) {
	v, ok := f.value(key)
	if !ok {
		return nil, nil
	}
	lv, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, invalid(key, "want list")
	}
	out := make([]model.VariantSelection, 0, len(lv.ListValue.GetValues()))
	for i, item := range lv.ListValue.GetValues() {
		obj := Read(item.GetStructValue())
		vt, err := obj.UUID("variant_type_id")
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		vo, err := obj.UUID("variant_option_id")
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		out = append(out, model.VariantSelection{VariantTypeID: vt, VariantOptionID: vo})
	}
	return out, nil
}

var overrideKeys = []string{
	"density_g_per_ml", "grams_per_piece", "grams_per_hand", "grams_per_teaspoon", "grams_per_tablespoon",
	"grams_per_pinch", "grams_per_cup", "grams_per_slice", "grams_per_bunch", "grams_per_can",
}

func overrideField(o *nutrition.Overrides, key string) **float64 {
	switch key {
	case "density_g_per_ml":
		return &o.DensityGPerML
	case "grams_per_piece":
		return &o.GramsPerPiece
	case "grams_per_hand":
		return &o.GramsPerHand
	case "grams_per_teaspoon":
		return &o.GramsPerTeaspoon
	case "grams_per_tablespoon":
		return &o.GramsPerTablespoon
	case "grams_per_pinch":
		return &o.GramsPerPinch
	case "grams_per_cup":
		return &o.GramsPerCup
	case "grams_per_slice":
		return &o.GramsPerSlice
	case "grams_per_bunch":
		return &o.GramsPerBunch
	default:
		return &o.GramsPerCan
	}
}

// Overrides reads an optional object of per-unit conversion overrides.
func (f Fields) Overrides(key string) (*nutrition.Overrides, error) {
	v, ok := f.value(key)
	if !ok {
		return nil, nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StructValue)
	if !ok {
		return nil, invalid(key, "want object")
	}
	obj := Read(sv.StructValue)
	var o nutrition.Overrides
	for _, k := range overrideKeys {
		if !obj.Has(k) {
			continue
		}
		n, err := obj.Float(k)
		if err != nil {
			return nil, fmt.Errorf("%s.%w", key, err)
		}
		*overrideField(&o, k) = &n
	}
	return &o, nil
}

var nutrientKeys = []string{"calories", "protein", "carbs", "fat", "fiber", "sugar", "salt"}

func nutrientField(n *nutrition.Per100g, key string) **float64 {
	switch key {
	case "calories":
		return &n.Calories
	case "protein":
		return &n.Protein
	case "carbs":
		return &n.Carbs
	case "fat":
		return &n.Fat
	case "fiber":
		return &n.Fiber
	case "sugar":
		return &n.Sugar
	default:
		return &n.Salt
	}
}

// Per100g reads an optional object of per-100 g nutrient values. Absent
// nutrients stay nil.
func (f Fields) Per100g(key string) (nutrition.Per100g, error) {
	var n nutrition.Per100g
	v, ok := f.value(key)
	if !ok {
		return n, nil
	}
	sv, ok := v.GetKind().(*structpb.Value_StructValue)
	if !ok {
		return n, invalid(key, "want object")
	}
	obj := Read(sv.StructValue)
	for _, k := range nutrientKeys {
		if !obj.Has(k) {
			continue
		}
		x, err := obj.Float(k)
		if err != nil {
			return n, fmt.Errorf("%s.%w", key, err)
		}
		*nutrientField(&n, k) = &x
	}
	return n, nil
}

// RecipeItems reads a list of {ingredient_id, amount, unit, id?} objects.
func (f Fields) RecipeItems(key string) ([]model.RecipeIngredient, error) {
	v, ok := f.value(key)
	if !ok {
		return nil, nil
	}
	lv, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, invalid(key, "want list")
	}
	out := make([]model.RecipeIngredient, 0, len(lv.ListValue.GetValues()))
	for i, item := range lv.ListValue.GetValues() {
		if item.GetStructValue() == nil {
			return nil, invalid(key, "item %d: want object", i)
		}
		obj := Read(item.GetStructValue())
		var it model.RecipeIngredient
		var err error
		if obj.Has("id") {
			if it.ID, err = obj.UUID("id"); err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
			}
		}
		if it.IngredientID, err = obj.UUID("ingredient_id"); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		if it.Amount, err = obj.Float("amount"); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		if it.Unit, err = obj.String("unit"); err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		out = append(out, it)
	}
	return out, nil
}
