package program

import (
	"sort"

	"github.com/gofrs/uuid/v5"

	"github.com/fubl84/peakly-sub001/internal/model"
)

// Eligible reports whether a is active in week for a user holding selected options.
func Eligible(a model.PathAssignment, week int, selected map[uuid.UUID]struct{}) bool {
	if week < a.WeekStart || week > a.WeekEnd {
		return false
	}
	if a.VariantOptionID == nil {
		return true
	}
	_, ok := selected[*a.VariantOptionID]
	return ok
}

func kindRank(k model.ContentKind) int {
	for i, kk := range model.KindOrder {
		if kk == k {
			return i
		}
	}
	return len(model.KindOrder)
}

// FilterAssignments returns the assignments eligible in week, optionally of a
// single kind, ordered by kind then WeekStart. Ties keep input order.
func FilterAssignments(as []model.PathAssignment, week int, selected []uuid.UUID, kind *model.ContentKind) []model.PathAssignment {
	set := make(map[uuid.UUID]struct{}, len(selected))
	for _, id := range selected {
		set[id] = struct{}{}
	}
	out := make([]model.PathAssignment, 0, len(as))
	for _, a := range as {
		if kind != nil && a.Kind != *kind {
			continue
		}
		if Eligible(a, week, set) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := kindRank(out[i].Kind), kindRank(out[j].Kind)
		if ri != rj {
			return ri < rj
		}
		return out[i].WeekStart < out[j].WeekStart
	})
	return out
}

// GroupByKind splits ordered assignments by kind, preserving order.
func GroupByKind(as []model.PathAssignment) map[model.ContentKind][]model.PathAssignment {
	out := make(map[model.ContentKind][]model.PathAssignment)
	for _, a := range as {
		out[a.Kind] = append(out[a.Kind], a)
	}
	return out
}
