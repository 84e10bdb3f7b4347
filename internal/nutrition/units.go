// Package nutrition converts ingredient quantities to grams, aggregates
// per-100g nutrition values and scores candidates against a target.
// It has no storage dependencies.
package nutrition

import (
	"fmt"
	"math"
	"strings"

	"github.com/fubl84/peakly-sub001/internal/errs"
)

// UnitKind classifies how a unit maps to grams.
type UnitKind string

const (
	UnitKindWeight UnitKind = "weight"
	UnitKindVolume UnitKind = "volume"
	UnitKindPiece  UnitKind = "piece"
)

// WarningKind identifies a conversion warning.
type WarningKind string

const (
	// WarningUnknownUnit marks a unit token that could not be converted.
	WarningUnknownUnit WarningKind = "UNKNOWN_UNIT"
	// WarningUsedDefault marks a system default substituted for a missing ingredient value.
	WarningUsedDefault WarningKind = "USED_DEFAULT"
)

// Warning is a non-fatal conversion signal returned to the caller.
type Warning struct {
	Kind    WarningKind
	Unit    string
	Message string
}

// Overrides holds per-ingredient conversion values. Nil means "not provided".
type Overrides struct {
	DensityGPerML      *float64
	GramsPerPiece      *float64
	GramsPerHand       *float64
	GramsPerTeaspoon   *float64
	GramsPerTablespoon *float64
	GramsPerPinch      *float64
	GramsPerCup        *float64
	GramsPerSlice      *float64
	GramsPerBunch      *float64
	GramsPerCan        *float64
}

// DefaultDensityGPerML is used for volume units when the ingredient has no density.
const DefaultDensityGPerML = 1.0

// PieceUnit names a piece-like unit and its override field.
type PieceUnit string

const (
	PieceTeaspoon   PieceUnit = "teaspoon"
	PieceTablespoon PieceUnit = "tablespoon"
	PiecePinch      PieceUnit = "pinch"
	PieceCup        PieceUnit = "cup"
	PieceSlice      PieceUnit = "slice"
	PieceBunch      PieceUnit = "bunch"
	PieceCan        PieceUnit = "can"
	PieceHand       PieceUnit = "hand"
	PieceGeneric    PieceUnit = "piece"
)

// DefaultPieceGrams are the system fallbacks for piece-like units.
var DefaultPieceGrams = map[PieceUnit]float64{
	PieceTeaspoon:   5,
	PieceTablespoon: 15,
	PiecePinch:      0.5,
	PieceCup:        240,
	PieceSlice:      25,
	PieceBunch:      50,
	PieceCan:        400,
	PieceHand:       30,
	PieceGeneric:    100,
}

// Unit describes a recognised unit token.
type Unit struct {
	Kind UnitKind
	// Ratio is grams per unit for weight and millilitres per unit for volume.
	Ratio float64
	Piece PieceUnit
}

func weight(r float64) Unit  { return Unit{Kind: UnitKindWeight, Ratio: r} }
func volume(r float64) Unit  { return Unit{Kind: UnitKindVolume, Ratio: r} }
func piece(p PieceUnit) Unit { return Unit{Kind: UnitKindPiece, Piece: p} }

var unitTable = map[string]Unit{
	// weight (base = g)
	"mg":         weight(0.001),
	"milligramm": weight(0.001),
	"g":          weight(1),
	"gr":         weight(1),
	"gramm":      weight(1),
	"gram":       weight(1),
	"grams":      weight(1),
	"kg":         weight(1000),
	"kilogramm":  weight(1000),
	"kilogram":   weight(1000),
	"oz":         weight(28.349523125),
	"lb":         weight(453.59237),
	"lbs":        weight(453.59237),

	// volume (base = ml)
	"ml":         volume(1),
	"milliliter": volume(1),
	"cl":         volume(10),
	"dl":         volume(100),
	"l":          volume(1000),
	"liter":      volume(1000),
	"litre":      volume(1000),

	// piece-like
	"tl":         piece(PieceTeaspoon),
	"teelöffel":  piece(PieceTeaspoon),
	"tsp":        piece(PieceTeaspoon),
	"teaspoon":   piece(PieceTeaspoon),
	"el":         piece(PieceTablespoon),
	"esslöffel":  piece(PieceTablespoon),
	"tbsp":       piece(PieceTablespoon),
	"tablespoon": piece(PieceTablespoon),
	"prise":      piece(PiecePinch),
	"pinch":      piece(PiecePinch),
	"tasse":      piece(PieceCup),
	"cup":        piece(PieceCup),
	"scheibe":    piece(PieceSlice),
	"scheiben":   piece(PieceSlice),
	"slice":      piece(PieceSlice),
	"bund":       piece(PieceBunch),
	"bunch":      piece(PieceBunch),
	"dose":       piece(PieceCan),
	"dosen":      piece(PieceCan),
	"can":        piece(PieceCan),
	"hand":       piece(PieceHand),
	"handvoll":   piece(PieceHand),
	"handful":    piece(PieceHand),
	"stück":      piece(PieceGeneric),
	"stk":        piece(PieceGeneric),
	"st":         piece(PieceGeneric),
	"piece":      piece(PieceGeneric),
	"pcs":        piece(PieceGeneric),
}

// NormalizeUnit trims, lower-cases and strips a trailing dot ("Stk." -> "stk").
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	return strings.TrimSuffix(u, ".")
}

// LookupUnit resolves a unit token.
func LookupUnit(unit string) (Unit, bool) {
	u, ok := unitTable[NormalizeUnit(unit)]
	return u, ok
}

// lookupOverride is the only place a system default replaces an ingredient value.
func lookupOverride(override *float64, def float64) (value float64, wasDefaulted bool) {
	if override != nil && *override > 0 {
		return *override, false
	}
	return def, true
}

func (o *Overrides) pieceGrams(p PieceUnit) *float64 {
	if o == nil {
		return nil
	}
	switch p {
	case PieceTeaspoon:
		return o.GramsPerTeaspoon
	case PieceTablespoon:
		return o.GramsPerTablespoon
	case PiecePinch:
		return o.GramsPerPinch
	case PieceCup:
		return o.GramsPerCup
	case PieceSlice:
		return o.GramsPerSlice
	case PieceBunch:
		return o.GramsPerBunch
	case PieceCan:
		return o.GramsPerCan
	case PieceHand:
		return o.GramsPerHand
	default:
		return o.GramsPerPiece
	}
}

func (o *Overrides) density() *float64 {
	if o == nil {
		return nil
	}
	return o.DensityGPerML
}

// Conversion is the result of converting a quantity to grams.
// Resolved is false when the unit is unknown; Grams is then 0.
type Conversion struct {
	Grams       float64
	Resolved    bool
	Warnings    []Warning
	IsEstimated bool
}

// ConvertToGrams converts amount of unit to grams using the ingredient's
// overrides (may be nil). Unknown units are reported, not dropped.
func ConvertToGrams(amount float64, unit string, ov *Overrides) Conversion {
	u, ok := LookupUnit(unit)
	if !ok {
		return Conversion{
			Warnings: []Warning{{
				Kind:    WarningUnknownUnit,
				Unit:    unit,
				Message: fmt.Sprintf("unknown unit %q, amount %g not counted", unit, amount),
			}},
		}
	}

	switch u.Kind {
	case UnitKindWeight:
		return Conversion{Grams: amount * u.Ratio, Resolved: true}
	case UnitKindVolume:
		density, defaulted := lookupOverride(ov.density(), DefaultDensityGPerML)
		c := Conversion{Grams: amount * u.Ratio * density, Resolved: true}
		if defaulted {
			c.IsEstimated = true
			c.Warnings = []Warning{{
				Kind:    WarningUsedDefault,
				Unit:    unit,
				Message: fmt.Sprintf("no density, assumed %g g/ml", density),
			}}
		}
		return c
	default:
		grams, defaulted := lookupOverride(ov.pieceGrams(u.Piece), DefaultPieceGrams[u.Piece])
		c := Conversion{Grams: amount * grams, Resolved: true}
		if defaulted {
			c.IsEstimated = true
			c.Warnings = []Warning{{
				Kind:    WarningUsedDefault,
				Unit:    unit,
				Message: fmt.Sprintf("no grams per %s, assumed %g g", u.Piece, grams),
			}}
		}
		return c
	}
}

// ConvertToGramsStrict is ConvertToGrams for callers that cannot degrade:
// unknown units and invalid amounts are errors.
func ConvertToGramsStrict(amount float64, unit string, ov *Overrides) (Conversion, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return Conversion{}, fmt.Errorf("%w: amount %v", errs.ErrInvalidArgument, amount)
	}
	c := ConvertToGrams(amount, unit, ov)
	if !c.Resolved {
		return Conversion{}, fmt.Errorf("%w: %q", errs.ErrUnsupportedUnit, unit)
	}
	return c, nil
}
