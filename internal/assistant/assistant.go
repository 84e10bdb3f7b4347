package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/fubl84/peakly-sub001/internal/nutrition"
)

// ErrNoCandidates is returned when there are no recipes to pick from.
var ErrNoCandidates = errors.New("no candidate recipes")

// Generator is the external text-generation provider.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Assistant asks a Generator for a slot suggestion and validates the reply.
type Assistant struct {
	gen Generator
	log *zap.Logger
}

// New constructs an Assistant. A nil logger discards output.
func New(gen Generator, log *zap.Logger) *Assistant {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assistant{gen: gen, log: log}
}

// Suggest calls the generator with the slot context. A valid reply that
// references recipes outside matches is a schema violation. The error is
// only set when the generator itself fails or there are no matches.
func (a *Assistant) Suggest(ctx context.Context, slot string, target nutrition.SlotTarget, matches []nutrition.SlotMatch) (Result, error) {
	if len(matches) == 0 {
		return Result{}, ErrNoCandidates
	}
	reply, err := a.gen.Generate(ctx, Prompt(BuildContext(slot, target, matches)))
	if err != nil {
		return Result{}, fmt.Errorf("generate: %w", err)
	}
	res := ParseSuggestion([]byte(reply))
	if res.Status == StatusOK {
		offered := make(map[uuid.UUID]bool, len(matches))
		for _, m := range matches {
			offered[m.Candidate.ID] = true
		}
		for i, id := range res.Suggestion.RecipeIDs {
			if !offered[id] {
				res = violation(fmt.Sprintf("recipe_ids[%d]", i), "not among offered recipes")
				break
			}
		}
	}
	if res.Status != StatusOK {
		a.log.Warn("assistant reply rejected",
			zap.String("slot", slot),
			zap.Stringer("status", res.Status),
			zap.String("field", res.Field),
			zap.String("reason", res.Reason))
	}
	return res, nil
}
