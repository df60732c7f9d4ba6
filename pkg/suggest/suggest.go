// Package suggest asks a hosted generative model which entries of an agent
// directory should be left out of a deployment package. Suggestions are a
// best-effort addition to a fixed baseline, so callers treat every error as
// an empty suggestion set.
package suggest

import (
	"context"
	"strings"
)

// Suggester proposes exclusion patterns for a directory listing.
type Suggester interface {
	Suggest(ctx context.Context, entries []string) ([]string, error)
}

// Noop never suggests anything.
type Noop struct{}

// Suggest returns no patterns.
func (Noop) Suggest(context.Context, []string) ([]string, error) {
	return nil, nil
}

// ParseSuggestions turns a model reply into patterns: one per non-blank
// line, trimmed, with markdown code fences dropped. Duplicates are removed
// and first-seen order kept.
func ParseSuggestions(text string) []string {
	seen := map[string]bool{}
	var patterns []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") || seen[line] {
			continue
		}
		seen[line] = true
		patterns = append(patterns, line)
	}
	return patterns
}
