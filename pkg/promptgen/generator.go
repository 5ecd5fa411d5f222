// Package promptgen generates natural-language questions about the procurement
// dataset with GPT-4o. The questions feed the translate command, which turns
// them into query/question pairs for fine-tuning.
package promptgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pemistahl/lingua-go"
	openai "github.com/sashabaranov/go-openai"

	"github.com/dtnitsch/procurement-nlq/pkg/schema"
)

// DefaultModel is the question-generating model.
const DefaultModel = "gpt-4o"

// Generator calls OpenAI in small batches with backoff and filters the output.
type Generator struct {
	client     *openai.Client
	detector   lingua.LanguageDetector
	logger     *slog.Logger
	model      string
	maxRetries uint
}

// NewGenerator builds a Generator. The API key falls back to OPENAI_API_KEY.
// The language detector is built once here; constructing it per call is
// expensive.
func NewGenerator(apiKey string, maxRetries int, logger *slog.Logger) (*Generator, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("OpenAI API key not found: set OPENAI_API_KEY")
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}

	// The detector needs at least two candidate languages to discriminate.
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Spanish, lingua.French, lingua.German, lingua.Portuguese).
		Build()

	return &Generator{
		client:     openai.NewClient(apiKey),
		detector:   detector,
		logger:     logger,
		model:      DefaultModel,
		maxRetries: uint(maxRetries),
	}, nil
}

// callWithRetry makes one chat-completion call, retrying transient failures
// with exponential backoff.
func (g *Generator) callWithRetry(ctx context.Context, prompt string, maxTokens int) (string, error) {
	var content string

	err := retry.Do(
		func() error {
			resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model: g.model,
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleSystem, Content: schema.PromptGenContext},
					{Role: openai.ChatMessageRoleUser, Content: prompt},
				},
				MaxTokens: maxTokens,
			})
			if err != nil {
				return err
			}
			if len(resp.Choices) == 0 {
				return errors.New("empty completion response")
			}
			content = resp.Choices[0].Message.Content
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(g.maxRetries),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(attempt uint, err error) {
			g.logger.Warn("completion attempt failed, retrying", "attempt", attempt+1, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("completion failed after %d attempts: %w", g.maxRetries, err)
	}
	return content, nil
}

// isEnglish reports whether a generated question is usable. Lines the detector
// cannot classify (very short ones, mostly) are kept; only confident
// non-English detections are dropped.
func (g *Generator) isEnglish(line string) bool {
	lang, ok := g.detector.DetectLanguageOf(line)
	if !ok {
		return true
	}
	return lang == lingua.English
}

// GeneratePrompts produces exactly n questions. Requests go out 1-2 questions
// at a time with a short pause between batches, which keeps each completion
// focused and the output varied.
func (g *Generator) GeneratePrompts(ctx context.Context, n int) ([]string, error) {
	prompts := make([]string, 0, n)

	for len(prompts) < n {
		batchSize := rand.Intn(2) + 1
		if remaining := n - len(prompts); batchSize > remaining {
			batchSize = remaining
		}

		prompt := fmt.Sprintf(
			"Generate %d unique, natural language queries that could be used to analyze this procurement database. Make the queries specific and varied in complexity.",
			batchSize,
		)

		content, err := g.callWithRetry(ctx, prompt, 150*batchSize)
		if err != nil {
			return prompts, err
		}

		var batch []string
		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !g.isEnglish(line) {
				g.logger.Warn("dropping non-English question", "question", line)
				continue
			}
			batch = append(batch, line)
		}
		if len(batch) > batchSize {
			batch = batch[:batchSize]
		}
		prompts = append(prompts, batch...)

		g.logger.Info("generated questions", "new", len(batch), "total", len(prompts))

		if len(prompts) < n {
			// Brief pause between batches to stay clear of rate limits.
			select {
			case <-ctx.Done():
				return prompts, ctx.Err()
			case <-time.After(time.Duration(1000+rand.Intn(1000)) * time.Millisecond):
			}
		}
	}

	return prompts[:n], nil
}
