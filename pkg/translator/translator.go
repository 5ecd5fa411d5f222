// Package translator converts natural-language procurement questions into
// MongoDB query payloads using Anthropic's Claude API. Raw model output is
// parsed and repaired through the queryshape normalizer before it is handed
// to any caller; a Translator never returns an unvalidated payload.
package translator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dtnitsch/procurement-nlq/pkg/queryshape"
	"github.com/dtnitsch/procurement-nlq/pkg/schema"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-3-sonnet-20240229"

	// maxTokens bounds the query response. Pipelines are small; 4096 is generous.
	maxTokens = 4096
)

// Config holds the translator settings. APIKey falls back to
// ANTHROPIC_API_KEY when empty.
type Config struct {
	APIKey string
	Model  string
}

// Translator holds the Claude client and the query normalizer.
type Translator struct {
	client     anthropic.Client
	normalizer *queryshape.Normalizer
	model      string
}

// New builds a Translator. Returns an error when no API key is available.
func New(cfg Config) (*Translator, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("no API key provided: set ANTHROPIC_API_KEY or pass --api-key")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Translator{
		client:     anthropic.NewClient(option.WithAPIKey(apiKey)),
		normalizer: queryshape.NewNormalizer(schema.FieldAliases),
		model:      model,
	}, nil
}

// GenerateQuery asks Claude for a query answering the question, parses the
// response as JSON, and normalizes it. The few-shot examples ride along in the
// user message; the schema lives in the system prompt.
func (t *Translator) GenerateQuery(ctx context.Context, question string) (map[string]any, error) {
	content := fmt.Sprintf(
		"%s\n\nGenerate a MongoDB query for this question:\n%s\n\nReturn only the JSON query.",
		schema.TranslatorExamples, question,
	)

	message, err := t.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(t.model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(0),
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: schema.TranslatorSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(content)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error generating query: %w", err)
	}
	if len(message.Content) == 0 {
		return nil, errors.New("error generating query: empty response")
	}

	var raw any
	if err := json.Unmarshal([]byte(message.Content[0].Text), &raw); err != nil {
		return nil, fmt.Errorf("error generating query: response is not valid JSON: %w", err)
	}

	query, err := t.normalizer.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("error generating query: %w", err)
	}
	return query, nil
}
