package narrate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"archlens/internal/report"
)

// GeminiNarrator implements Narrator using Gemini text generation.
type GeminiNarrator struct {
	client        *genai.Client
	model         string
	promptBuilder *PromptBuilder
}

func NewGeminiNarrator(ctx context.Context, apiKey string, modelName string) (*GeminiNarrator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiNarrator{
		client:        client,
		model:         modelName,
		promptBuilder: &PromptBuilder{},
	}, nil
}

func (n *GeminiNarrator) NarrateReport(ctx context.Context, r *report.RunReport) (string, error) {
	prompt := n.promptBuilder.BuildNarrativePrompt(r)
	contents := genai.Text(prompt)
	resp, err := n.client.Models.GenerateContent(ctx, n.model, contents, nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "No narrative available.", nil
	}
	return cleanMarkdownOutput(text), nil
}

func cleanMarkdownOutput(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```markdown") {
		text = strings.TrimPrefix(text, "```markdown")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
