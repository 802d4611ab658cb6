package story

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

const systemInstruction = `You are a storyboard artist. Output ONLY a single JSON object that strictly conforms to the provided schema.`

// storyboardSchema is the response schema enforced on the model. The
// top-level key is always 'storyboard'.
func storyboardSchema() *genai.Schema {
	sceneSchema := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"scene_title":       {Type: genai.TypeString},
			"scene_description": {Type: genai.TypeString},
			"character_prompt":  {Type: genai.TypeString},
			"setting_prompt":    {Type: genai.TypeString},
			"motion_prompt":     {Type: genai.TypeString},
		},
		Required: []string{"scene_title", "scene_description", "character_prompt", "setting_prompt", "motion_prompt"},
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {Type: genai.TypeString},
			"storyboard": {
				Type:        genai.TypeArray,
				Description: "A list of the video scenes.",
				Items:       sceneSchema,
			},
		},
		Required: []string{"title", "storyboard"},
	}
}

type geminiBackend struct {
	model *genai.GenerativeModel
}

// NewGeminiBackend binds a Gemini model to structured storyboard
// generation with the response schema enforced.
func NewGeminiBackend(client *genai.Client, model string) TextGenerator {
	m := client.GenerativeModel(model)
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = storyboardSchema()
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}
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
