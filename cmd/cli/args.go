package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/fubl84/peakly-sub001/internal/convert"
)

func parseDate(name, value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q (want YYYY-MM-DD)", name, value)
	}
	return t, nil
}

func parseID(name, value string) (string, error) {
	id, err := uuid.FromString(strings.TrimSpace(value))
	if err != nil || id == uuid.Nil {
		return "", fmt.Errorf("invalid %s %q", name, value)
	}
	return id.String(), nil
}

// parseVariants reads "type=option" pairs into wire objects.
func parseVariants(pairs []string) ([]any, error) {
	out := make([]any, 0, len(pairs))
	for _, p := range pairs {
		typ, opt, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid variant %q (want type=option)", p)
		}
		t, err := parseID("variant type", typ)
		if err != nil {
			return nil, err
		}
		o, err := parseID("variant option", opt)
		if err != nil {
			return nil, err
		}
		out = append(out, convert.Object{"variant_type_id": t, "variant_option_id": o})
	}
	return out, nil
}

// withDay copies a validated date flag into req under key.
func withDay(req convert.Object, key, value string) (convert.Object, error) {
	if value == "" {
		return req, nil
	}
	if _, err := parseDate(key, value); err != nil {
		return nil, err
	}
	req[key] = value
	return req, nil
}
