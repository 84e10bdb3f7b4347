// Package grpcserver exposes the Peakly core operations over gRPC.
package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/fubl84/peakly-sub001/internal/assistant"
	"github.com/fubl84/peakly-sub001/internal/convert"
	"github.com/fubl84/peakly-sub001/internal/errs"
	"github.com/fubl84/peakly-sub001/internal/model"
	"github.com/fubl84/peakly-sub001/internal/nutrition"
	"github.com/fubl84/peakly-sub001/internal/program"
	"github.com/fubl84/peakly-sub001/internal/service"
)

// Services are the domain services behind the Core API.
// Assistant is optional; without it SuggestSlot ignores "assist".
type Services struct {
	Nutrition   service.NutritionCache
	Slots       service.SlotService
	Content     service.ContentService
	Enrollments service.EnrollmentService
	Shopping    service.ShoppingService
	Assistant   *assistant.Assistant
}

// Server wires services into gRPC handlers.
type Server struct {
	svc     Services
	signKey []byte
	now     service.Clock
}

var _ CoreServer = (*Server)(nil)

// New constructs a gRPC server with injected services. A nil clock uses time.Now.
func New(svc Services, signKey []byte, now service.Clock) *Server {
	if now == nil {
		now = time.Now
	}
	return &Server{svc: svc, signKey: signKey, now: now}
}

// toStatus maps domain errors onto gRPC codes.
func toStatus(op string, err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, errs.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, errs.ErrVariantsLocked):
		code = codes.FailedPrecondition
	case errors.Is(err, errs.ErrInvalidArgument), errors.Is(err, errs.ErrUnsupportedUnit):
		code = codes.InvalidArgument
	case errors.Is(err, errs.ErrAlreadyExists):
		code = codes.AlreadyExists
	case errors.Is(err, errs.ErrUnauthorized):
		code = codes.Unauthenticated
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	default:
		code = codes.Internal
	}
	return status.Errorf(code, "%s: %v", op, err)
}

func reply(op string, o convert.Object) (*structpb.Struct, error) {
	s, err := convert.ToStruct(o)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "%s: encode: %v", op, err)
	}
	return s, nil
}

// day reads an optional date field, defaulting to the server clock.
func (s *Server) day(f convert.Fields, key string) (time.Time, error) {
	d, ok, err := f.Date(key)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return s.now(), nil
	}
	return d, nil
}

// --- Nutrition ---

// ConvertToGrams converts {amount, unit, overrides?, strict?}. Unknown units
// come back as warnings with a null grams value unless strict is set.
func (s *Server) ConvertToGrams(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "convert"
	f := convert.Read(req)
	amount, err := f.Float("amount")
	if err != nil {
		return nil, toStatus(op, err)
	}
	unit, err := f.String("unit")
	if err != nil {
		return nil, toStatus(op, err)
	}
	ov, err := f.Overrides("overrides")
	if err != nil {
		return nil, toStatus(op, err)
	}
	strict, err := f.Bool("strict")
	if err != nil {
		return nil, toStatus(op, err)
	}

	var c nutrition.Conversion
	if strict {
		if c, err = nutrition.ConvertToGramsStrict(amount, unit, ov); err != nil {
			return nil, toStatus(op, err)
		}
	} else {
		c = nutrition.ConvertToGrams(amount, unit, ov)
	}
	o := convert.Conversion(c)
	o["unit"] = nutrition.NormalizeUnit(unit)
	return reply(op, o)
}

// RecomputeRecipe refreshes one recipe's nutrition snapshot.
func (s *Server) RecomputeRecipe(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "recompute recipe"
	id, err := convert.Read(req).UUID("recipe_id")
	if err != nil {
		return nil, toStatus(op, err)
	}
	snap, err := s.svc.Nutrition.RecomputeRecipe(ctx, id)
	if err != nil {
		return nil, toStatus(op, err)
	}
	return reply(op, convert.Snapshot(snap))
}

// RecomputeByIngredient refreshes every recipe using an ingredient. Per-recipe
// failures are reported in "failed" and do not fail the call.
func (s *Server) RecomputeByIngredient(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "recompute by ingredient"
	id, err := convert.Read(req).UUID("ingredient_id")
	if err != nil {
		return nil, toStatus(op, err)
	}
	done, err := s.svc.Nutrition.RecomputeByIngredient(ctx, id)
	return recomputed(op, done, err)
}

// recomputed shapes the reply of operations that refresh dependent recipes.
// A failure with nothing written is an error; partial failures are listed.
func recomputed(op string, done []uuid.UUID, err error) (*structpb.Struct, error) {
	if err != nil && len(done) == 0 {
		return nil, toStatus(op, err)
	}
	failed := []any{}
	if err != nil {
		for _, e := range unjoin(err) {
			failed = append(failed, e.Error())
		}
	}
	return reply(op, convert.Object{"recipe_ids": convert.IDs(done), "failed": failed})
}

// UpdateIngredient stores {id, name, nutrition, conversions} and refreshes
// every recipe using the ingredient.
func (s *Server) UpdateIngredient(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "update ingredient"
	f := convert.Read(req)
	var ing model.Ingredient
	var err error
	if ing.ID, err = f.UUID("id"); err != nil {
		return nil, toStatus(op, err)
	}
	if ing.Name, err = f.String("name"); err != nil {
		return nil, toStatus(op, err)
	}
	if ing.Nutrition, err = f.Per100g("nutrition"); err != nil {
		return nil, toStatus(op, err)
	}
	ov, err := f.Overrides("conversions")
	if err != nil {
		return nil, toStatus(op, err)
	}
	if ov != nil {
		ing.Conversions = *ov
	}
	done, err := s.svc.Nutrition.UpdateIngredient(ctx, &ing)
	return recomputed(op, done, err)
}

// DeleteIngredient removes an ingredient and refreshes recipes that used it.
func (s *Server) DeleteIngredient(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "delete ingredient"
	id, err := convert.Read(req).UUID("ingredient_id")
	if err != nil {
		return nil, toStatus(op, err)
	}
	done, err := s.svc.Nutrition.DeleteIngredient(ctx, id)
	return recomputed(op, done, err)
}

// SetRecipeIngredients replaces {recipe_id, items} and returns the new snapshot.
func (s *Server) SetRecipeIngredients(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "set recipe ingredients"
	f := convert.Read(req)
	id, err := f.UUID("recipe_id")
	if err != nil {
		return nil, toStatus(op, err)
	}
	items, err := f.RecipeItems("items")
	if err != nil {
		return nil, toStatus(op, err)
	}
	snap, err := s.svc.Nutrition.SetRecipeIngredients(ctx, id, items)
	if err != nil {
		return nil, toStatus(op, err)
	}
	return reply(op, convert.Snapshot(snap))
}

// GetRecipeNutrition returns the cached snapshot of a recipe.
func (s *Server) GetRecipeNutrition(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "get recipe nutrition"
	id, err := convert.Read(req).UUID("recipe_id")
	if err != nil {
		return nil, toStatus(op, err)
	}
	snap, err := s.svc.Nutrition.GetSnapshot(ctx, id)
	if err != nil {
		return nil, toStatus(op, err)
	}
	return reply(op, convert.Snapshot(*snap))
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// SuggestSlot ranks cached recipes against one slot, or every slot of the
// plan when "slot" is empty. "assist" asks the assistant for a pick per slot
// that has matches.
func (s *Server) SuggestSlot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "suggest slot"
	f := convert.Read(req)
	planID, err := f.UUID("plan_id")
	if err != nil {
		return nil, toStatus(op, err)
	}
	slot, err := f.String("slot")
	if err != nil {
		return nil, toStatus(op, err)
	}
	limit, err := f.Int("limit", 0)
	if err != nil {
		return nil, toStatus(op, err)
	}
	assist, err := f.Bool("assist")
	if err != nil {
		return nil, toStatus(op, err)
	}

	var suggestions []service.SlotSuggestion
	if slot != "" {
		one, err := s.svc.Slots.SuggestForSlot(ctx, planID, slot, limit)
		if err != nil {
			return nil, toStatus(op, err)
		}
		suggestions = []service.SlotSuggestion{one}
	} else if suggestions, err = s.svc.Slots.SuggestForPlan(ctx, planID, limit); err != nil {
		return nil, toStatus(op, err)
	}

	out := make([]any, 0, len(suggestions))
	for _, sg := range suggestions {
		o := convert.Object{
			"slot":    sg.Slot,
			"target":  convert.SlotTarget(sg.Target),
			"matches": convert.SlotMatches(sg.Matches),
			"context": assistant.BuildContext(sg.Slot, sg.Target, sg.Matches),
		}
		if assist && s.svc.Assistant != nil && len(sg.Matches) > 0 {
			res, err := s.svc.Assistant.Suggest(ctx, sg.Slot, sg.Target, sg.Matches)
			if err != nil {
				return nil, status.Errorf(codes.Unavailable, "%s: %v", op, err)
			}
			o["assistant"] = convert.AssistantResult(res)
		}
		out = append(out, o)
	}
	return reply(op, convert.Object{"plan_id": planID.String(), "slots": out})
}

// --- Content ---

// ResolveAssignments lists the assignments of a path active in a given week
// for a set of selected variant options.
func (s *Server) ResolveAssignments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "resolve assignments"
	f := convert.Read(req)
	pathID, err := f.UUID("path_id")
	if err != nil {
		return nil, toStatus(op, err)
	}
	week, err := f.Int("week", 0)
	if err != nil {
		return nil, toStatus(op, err)
	}
	selected, err := f.UUIDs("selected_option_ids")
	if err != nil {
		return nil, toStatus(op, err)
	}
	kind, err := f.Kind("kind")
	if err != nil {
		return nil, toStatus(op, err)
	}
	as, err := s.svc.Content.ResolveAssignments(ctx, pathID, week, selected, kind)
	if err != nil {
		return nil, toStatus(op, err)
	}
	return reply(op, convert.Object{"week": week, "assignments": convert.Assignments(as)})
}

// MyContent resolves the caller's current week and content.
func (s *Server) MyContent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "my content"
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	kind, err := convert.Read(req).Kind("kind")
	if err != nil {
		return nil, toStatus(op, err)
	}
	uc, err := s.svc.Content.ContentForUser(ctx, userID, kind)
	if err != nil {
		return nil, toStatus(op, err)
	}
	return reply(op, convert.Object{
		"week":        uc.Week,
		"enrollment":  convert.Enrollment(uc.Enrollment),
		"assignments": convert.Assignments(uc.Assignments),
		"by_kind":     convert.AssignmentsByKind(program.GroupByKind(uc.Assignments)),
	})
}

// --- Enrollment ---

// CreateEnrollment enrolls the caller into a path, replacing any active enrollment.
func (s *Server) CreateEnrollment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "create enrollment"
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	f := convert.Read(req)
	pathID, err := f.UUID("path_id")
	if err != nil {
		return nil, toStatus(op, err)
	}
	start, err := s.day(f, "start_date")
	if err != nil {
		return nil, toStatus(op, err)
	}
	variants, err := f.VariantSelections("variants")
	if err != nil {
		return nil, toStatus(op, err)
	}
	e, err := s.svc.Enrollments.CreateEnrollment(ctx, userID, pathID, start, variants)
	if err != nil {
		return nil, toStatus(op, err)
	}
	return reply(op, convert.Enrollment(*e))
}

// UpdateEnrollmentVariants changes variant picks of one of the caller's
// enrollments before it starts.
func (s *Server) UpdateEnrollmentVariants(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "update variants"
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	f := convert.Read(req)
	id, err := f.UUID("enrollment_id")
	if err != nil {
		return nil, toStatus(op, err)
	}
	updates, err := f.VariantSelections("variants")
	if err != nil {
		return nil, toStatus(op, err)
	}
	cur, err := s.svc.Enrollments.GetEnrollment(ctx, id)
	if err != nil {
		return nil, toStatus(op, err)
	}
	if cur.UserID != userID {
		return nil, toStatus(op, fmt.Errorf("enrollment %s: %w", id, errs.ErrNotFound))
	}
	e, err := s.svc.Enrollments.UpdateEnrollmentVariants(ctx, id, updates)
	if err != nil {
		return nil, toStatus(op, err)
	}
	return reply(op, convert.Enrollment(*e))
}

// --- Shopping ---

func shoppingReply(op string, day time.Time, items []any) (*structpb.Struct, error) {
	return reply(op, convert.Object{
		"week_start": program.WeekStart(day).Format(time.DateOnly),
		"items":      items,
	})
}

// AddRecipeToShopping imports a recipe's ingredients into the caller's weekly list.
func (s *Server) AddRecipeToShopping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "add to shopping"
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	f := convert.Read(req)
	recipeID, err := f.UUID("recipe_id")
	if err != nil {
		return nil, toStatus(op, err)
	}
	day, err := s.day(f, "day")
	if err != nil {
		return nil, toStatus(op, err)
	}
	items, err := s.svc.Shopping.AddRecipe(ctx, userID, day, recipeID)
	if err != nil {
		return nil, toStatus(op, err)
	}
	return shoppingReply(op, day, convert.ShoppingItems(items))
}

// ListShopping returns the caller's list for the week containing "day".
func (s *Server) ListShopping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "list shopping"
	userID, err := s.caller(ctx)
	if err != nil {
		return nil, err
	}
	day, err := s.day(convert.Read(req), "day")
	if err != nil {
		return nil, toStatus(op, err)
	}
	items, err := s.svc.Shopping.List(ctx, userID, day)
	if err != nil {
		return nil, toStatus(op, err)
	}
	return shoppingReply(op, day, convert.ShoppingItems(items))
}
