package assistant

import (
	"context"
	"encoding/json"
	"regexp"
)

// matchLine picks "N. <name> [<id>] ..." entries out of BuildContext output.
var matchLine = regexp.MustCompile(`(?m)^\d+\. (.+?) \[([0-9a-f-]{36})\] `)

// TopPick is a local Generator that answers with the best ranked recipe of
// the prompt. It needs no external provider.
type TopPick struct{}

// Generate returns a suggestion for the first listed recipe. A prompt
// without recipes yields ErrNoCandidates.
func (TopPick) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	reply := struct {
		Title     string   `json:"title"`
		RecipeIDs []string `json:"recipe_ids"`
		Notes     string   `json:"notes,omitempty"`
	}{Notes: "closest macro match"}
	m := matchLine.FindStringSubmatch(prompt)
	if m == nil {
		return "", ErrNoCandidates
	}
	reply.Title, reply.RecipeIDs = m[1], []string{m[2]}
	b, err := json.Marshal(reply)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
