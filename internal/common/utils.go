package common

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// NewLogger builds the shared JSON logger. All structured output goes to
// stderr so stdout stays clean for piping results.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadEnv loads .env if present. A missing file is fine; real environments set
// variables directly.
func LoadEnv(logger *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to load .env file", "error", err)
		}
		return
	}
	logger.Info("loaded environment from .env")
}

// Timestamp returns the filename-safe timestamp used across output artifacts.
func Timestamp() string {
	return time.Now().Format("20060102_150405")
}

// ReadLines loads a text file as trimmed, non-empty lines. Used for question
// files: one question per line.
func ReadLines(path string) ([]string, error) {
	questions, err := ReadQuestions(path)
	if err != nil {
		return nil, err
	}
	lines := make([]string, len(questions))
	for i, q := range questions {
		lines[i] = q.Text
	}
	return lines, nil
}

// Question is one non-blank line of a questions file. Line is the 1-based
// line number in the file itself, so error logs point back at the input even
// when blank lines were skipped.
type Question struct {
	Line int
	Text string
}

// ReadQuestions loads a questions file, skipping blank lines but keeping each
// question's original file line number.
func ReadQuestions(path string) ([]Question, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var questions []Question
	lineNum := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lineNum++
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			questions = append(questions, Question{Line: lineNum, Text: line})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return questions, nil
}

// WriteJSON writes v as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// PrintYAML marshals v as YAML to stdout. Summaries go through here so they
// are both human-readable and yq-filterable.
func PrintYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
