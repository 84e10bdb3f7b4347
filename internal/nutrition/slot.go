package nutrition

import (
	"sort"

	"github.com/gofrs/uuid/v5"
)

// DefaultSuggestionLimit caps RankCandidates when no limit is given.
const DefaultSuggestionLimit = 5

// SlotTarget is the rounded nutrition goal of one meal slot.
type SlotTarget struct {
	Macros
	Warnings                []Warning
	WarningCount            int
	HasEstimatedConversions bool
}

// BuildSlotTarget aggregates a slot's base entries into a target.
func BuildSlotTarget(entries []Entry) SlotTarget {
	t := ComputeTotals(entries).Rounded()
	return SlotTarget{
		Macros:                  t.Nutrients.Macros(),
		Warnings:                t.Warnings,
		WarningCount:            t.WarningCount,
		HasEstimatedConversions: t.HasEstimatedConversions,
	}
}

// Candidate is a recipe considered for a slot.
type Candidate struct {
	ID     uuid.UUID
	Name   string
	Macros Macros
}

// SlotMatch is a matching candidate with its score.
type SlotMatch struct {
	Candidate Candidate
	Result    MatchResult
}

// RankCandidates keeps matching candidates, best score first, at most limit.
// Equal scores keep input order.
func RankCandidates(target Macros, candidates []Candidate, limit int, tol *Tolerance) []SlotMatch {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	out := make([]SlotMatch, 0, len(candidates))
	for _, c := range candidates {
		r := Match(target, c.Macros, tol)
		if !r.IsMatch {
			continue
		}
		out = append(out, SlotMatch{Candidate: c, Result: r})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Result.Score < out[j].Result.Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
