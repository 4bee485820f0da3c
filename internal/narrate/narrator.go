// Package narrate turns finished run reports into prose summaries using an
// LLM provider.
package narrate

import (
	"context"
	"strings"

	"archlens/internal/report"
)

// Narrator writes a prose summary of a run report.
type Narrator interface {
	NarrateReport(ctx context.Context, r *report.RunReport) (string, error)
}

type Options struct {
	Provider string
	APIKey   string
	Model    string
}

// NewNarrator builds a narrator for the configured provider. Narration is
// optional: an unknown provider or a missing API key returns nil without an
// error, and the run proceeds without a narrative.
func NewNarrator(ctx context.Context, opts Options) (Narrator, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = "gemini"
	}
	if provider != "gemini" || opts.APIKey == "" {
		return nil, nil
	}
	return NewGeminiNarrator(ctx, opts.APIKey, opts.Model)
}
