// Package training prepares fine-tuning data and manages fine-tuning jobs.
// The formatter turns translated question/query pairs into OpenAI chat-format
// JSONL, the analyzer reports token statistics and cost estimates, and the
// fine-tuner uploads files and drives jobs.
package training

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/dtnitsch/procurement-nlq/models"
	"github.com/dtnitsch/procurement-nlq/pkg/schema"
)

// DefaultTrainRatio is the train/validation split used when none is given.
const DefaultTrainRatio = 0.8

// Message is one turn in a chat-format training example.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Example is a single fine-tuning example in OpenAI's chat format.
type Example struct {
	Messages []Message `json:"messages"`
}

// FormatRecords converts query records into chat-format examples. The query is
// re-serialized as compact JSON so the assistant target is stable regardless
// of how the record file was formatted.
func FormatRecords(records []models.QueryRecord) ([]Example, error) {
	examples := make([]Example, 0, len(records))
	for _, rec := range records {
		queryJSON, err := json.Marshal(rec.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize query for %q: %w", rec.Question, err)
		}
		examples = append(examples, Example{
			Messages: []Message{
				{Role: "system", Content: schema.TrainingSystemPrompt},
				{Role: "user", Content: rec.Question},
				{Role: "assistant", Content: string(queryJSON)},
			},
		})
	}
	return examples, nil
}

// SplitExamples shuffles the examples and splits them by ratio into training
// and validation sets.
func SplitExamples(examples []Example, trainRatio float64, rng *rand.Rand) (train, validation []Example) {
	shuffled := make([]Example, len(examples))
	copy(shuffled, examples)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	splitIdx := int(float64(len(shuffled)) * trainRatio)
	return shuffled[:splitIdx], shuffled[splitIdx:]
}

// WriteJSONL writes examples one JSON object per line.
func WriteJSONL(path string, examples []Example) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, ex := range examples {
		line, err := json.Marshal(ex)
		if err != nil {
			return fmt.Errorf("failed to marshal example: %w", err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return w.Flush()
}

// ReadJSONL loads a JSONL example file, skipping blank lines.
func ReadJSONL(path string) ([]Example, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var examples []Example
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ex Example
		if err := json.Unmarshal(line, &ex); err != nil {
			return nil, fmt.Errorf("invalid example on line %d of %s: %w", lineNum, path, err)
		}
		examples = append(examples, ex)
	}
	return examples, scanner.Err()
}
