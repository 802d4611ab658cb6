package caption

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

type geminiBackend struct {
	model *genai.GenerativeModel
}

// NewGeminiBackend binds a Gemini model to caption generation with a
// JSON response MIME type. No schema is enforced; an off-format answer
// simply triggers the fallback.
func NewGeminiBackend(client *genai.Client, model string) TextGenerator {
	m := client.GenerativeModel(model)
	m.ResponseMIMEType = "application/json"
	return &geminiBackend{model: m}
}

func (b *geminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := b.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("gemini returned a non-text part")
	}
	return string(text), nil
}
