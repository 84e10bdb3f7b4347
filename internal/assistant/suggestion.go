package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gofrs/uuid/v5"
)

// Status classifies a generator reply.
type Status int

const (
	StatusOK Status = iota
	StatusParseError
	StatusSchemaViolation
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusParseError:
		return "PARSE_ERROR"
	case StatusSchemaViolation:
		return "SCHEMA_VIOLATION"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Suggestion is a validated generator reply.
type Suggestion struct {
	Title     string
	RecipeIDs []uuid.UUID
	Notes     string
}

// Result is the outcome of ParseSuggestion. Suggestion is set only for StatusOK;
// Field names the offending field for StatusSchemaViolation.
type Result struct {
	Status     Status
	Field      string
	Reason     string
	Suggestion *Suggestion
}

func violation(field, reason string) Result {
	return Result{Status: StatusSchemaViolation, Field: field, Reason: reason}
}

var knownFields = map[string]bool{"title": true, "recipe_ids": true, "notes": true}

// ParseSuggestion validates raw field by field. Unknown fields, wrong types,
// empty titles, malformed or repeated ids are schema violations.
func ParseSuggestion(raw []byte) Result {
	raw = bytes.TrimSpace(raw)
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		reason := "not a JSON object"
		if err != nil {
			reason = err.Error()
		}
		return Result{Status: StatusParseError, Reason: reason}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !knownFields[k] {
			return violation(k, "unknown field")
		}
	}

	var s Suggestion
	rawTitle, ok := obj["title"]
	if !ok {
		return violation("title", "missing")
	}
	if err := json.Unmarshal(rawTitle, &s.Title); err != nil || isNull(rawTitle) {
		return violation("title", "must be a string")
	}
	s.Title = strings.TrimSpace(s.Title)
	if s.Title == "" {
		return violation("title", "empty")
	}

	rawIDs, ok := obj["recipe_ids"]
	if !ok {
		return violation("recipe_ids", "missing")
	}
	var ids []json.RawMessage
	if err := json.Unmarshal(rawIDs, &ids); err != nil || isNull(rawIDs) {
		return violation("recipe_ids", "must be an array")
	}
	if len(ids) == 0 {
		return violation("recipe_ids", "empty")
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	for i, rawID := range ids {
		field := fmt.Sprintf("recipe_ids[%d]", i)
		var str string
		if err := json.Unmarshal(rawID, &str); err != nil || isNull(rawID) {
			return violation(field, "must be a string")
		}
		id, err := uuid.FromString(str)
		if err != nil || id == uuid.Nil {
			return violation(field, "not a uuid")
		}
		if seen[id] {
			return violation(field, "duplicate")
		}
		seen[id] = true
		s.RecipeIDs = append(s.RecipeIDs, id)
	}

	if rawNotes, ok := obj["notes"]; ok && !isNull(rawNotes) {
		if err := json.Unmarshal(rawNotes, &s.Notes); err != nil {
			return violation("notes", "must be a string")
		}
	}
	return Result{Status: StatusOK, Suggestion: &s}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
