package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/fubl84/peakly-sub001/internal/errs"
	"github.com/fubl84/peakly-sub001/internal/model"
	"github.com/fubl84/peakly-sub001/internal/nutrition"
	"github.com/fubl84/peakly-sub001/internal/repository"
)

// SlotSuggestion is a slot's target with its ranked recipe matches.
type SlotSuggestion struct {
	Slot    string
	Target  nutrition.SlotTarget
	Matches []nutrition.SlotMatch
}

// SlotService suggests cached recipes for nutrition plan meal slots.
type SlotService interface {
	// SuggestForSlot ranks every cached recipe against one slot's base entries.
	SuggestForSlot(ctx context.Context, planID uuid.UUID, slot string, limit int) (SlotSuggestion, error)
	// SuggestForPlan does SuggestForSlot for each slot of a plan.
	SuggestForPlan(ctx context.Context, planID uuid.UUID, limit int) ([]SlotSuggestion, error)
}

type SlotServiceImpl struct {
	plans        repository.MealPlanRepository
	recipes      repository.RecipeRepository
	defaultLimit int
	tol          *nutrition.Tolerance
	log          *zap.Logger
}

// NewSlotService constructs SlotService. defaultLimit <= 0 uses the package default;
// a nil tolerance uses nutrition.DefaultTolerance.
func NewSlotService(plans repository.MealPlanRepository, recipes repository.RecipeRepository, defaultLimit int, tol *nutrition.Tolerance, log *zap.Logger) *SlotServiceImpl {
	if defaultLimit <= 0 {
		defaultLimit = nutrition.DefaultSuggestionLimit
	}
	return &SlotServiceImpl{plans: plans, recipes: recipes, defaultLimit: defaultLimit, tol: tol, log: loggerOrNop(log)}
}

func (s *SlotServiceImpl) candidates(ctx context.Context) ([]nutrition.Candidate, error) {
	rs, err := s.recipes.ListNutrition(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]nutrition.Candidate, 0, len(rs))
	for _, r := range rs {
		out = append(out, nutrition.Candidate{ID: r.Snapshot.RecipeID, Name: r.Name, Macros: r.Snapshot.Macros()})
	}
	return out, nil
}

func (s *SlotServiceImpl) suggest(ctx context.Context, planID uuid.UUID, slot string, limit int, cands []nutrition.Candidate) (SlotSuggestion, error) {
	lines, err := s.plans.ListSlotLines(ctx, planID, slot)
	if err != nil {
		return SlotSuggestion{}, err
	}
	if len(lines) == 0 {
		return SlotSuggestion{}, fmt.Errorf("plan %s slot %q: %w", planID, slot, errs.ErrNotFound)
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	target := nutrition.BuildSlotTarget(model.Entries(lines))
	matches := nutrition.RankCandidates(target.Macros, cands, limit, s.tol)
	s.log.Debug("slot matched",
		zap.String("plan_id", planID.String()),
		zap.String("slot", slot),
		zap.Int("candidates", len(cands)),
		zap.Int("matches", len(matches)))
	return SlotSuggestion{Slot: slot, Target: target, Matches: matches}, nil
}

// SuggestForSlot builds the slot target and ranks all cached recipes against it.
func (s *SlotServiceImpl) SuggestForSlot(ctx context.Context, planID uuid.UUID, slot string, limit int) (SlotSuggestion, error) {
	if planID == uuid.Nil || slot == "" {
		return SlotSuggestion{}, fmt.Errorf("plan id/slot: %w", errs.ErrInvalidArgument)
	}
	cands, err := s.candidates(ctx)
	if err != nil {
		return SlotSuggestion{}, err
	}
	return s.suggest(ctx, planID, slot, limit, cands)
}

// SuggestForPlan returns one suggestion per slot, in slot order.
func (s *SlotServiceImpl) SuggestForPlan(ctx context.Context, planID uuid.UUID, limit int) ([]SlotSuggestion, error) {
	if planID == uuid.Nil {
		return nil, fmt.Errorf("plan id: %w", errs.ErrInvalidArgument)
	}
	slots, err := s.plans.ListSlots(ctx, planID)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("plan %s: %w", planID, errs.ErrNotFound)
	}
	cands, err := s.candidates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SlotSuggestion, 0, len(slots))
	for _, slot := range slots {
		sg, err := s.suggest(ctx, planID, slot, limit, cands)
		if err != nil {
			return nil, err
		}
		out = append(out, sg)
	}
	return out, nil
}
