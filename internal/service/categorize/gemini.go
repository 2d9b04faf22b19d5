package categorize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"transmittal/internal/domain/services"
)

// GeminiGenerator sends schema-constrained requests to the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	schema *genai.Schema
}

// NewGeminiFactory returns a GeneratorFactory bound to one model.
func NewGeminiFactory(model string, prompts *PromptConfig) services.GeneratorFactory {
	schema := itemsSchema(prompts.Output.ItemFields)
	return func(ctx context.Context, apiKey string) (services.ContentGenerator, error) {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return &GeminiGenerator{client: client, model: model, schema: schema}, nil
	}
}

// itemsSchema builds {items: [{<field>: string, ...}]} with every field required.
func itemsSchema(fields []string) *genai.Schema {
	props := make(map[string]*genai.Schema, len(fields))
	for _, f := range fields {
		props[f] = &genai.Schema{Type: genai.TypeString}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"items": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: props,
					Required:   append([]string(nil), fields...),
				},
			},
		},
		Required: []string{"items"},
	}
}

// GenerateItems sends one request and decodes the items array from the reply.
func (g *GeminiGenerator) GenerateItems(ctx context.Context, parts []services.Part) ([]services.GeneratedItem, error) {
	content := genai.NewContentFromParts(toGenaiParts(parts), genai.RoleUser)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{content}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   g.schema,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	return decodeItems(resp.Text())
}

func toGenaiParts(parts []services.Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsInline() {
			out = append(out, genai.NewPartFromBytes(p.Data, p.MimeType))
			continue
		}
		out = append(out, genai.NewPartFromText(p.Text))
	}
	return out
}

// decodeItems parses the model's JSON reply. An empty reply yields no items.
func decodeItems(text string) ([]services.GeneratedItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []services.GeneratedItem{}, nil
	}

	var payload struct {
		Items []services.GeneratedItem `json:"items"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	if payload.Items == nil {
		payload.Items = []services.GeneratedItem{}
	}
	return payload.Items, nil
}
