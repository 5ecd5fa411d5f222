package prompts

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/procurement-nlq/internal/common"
	"github.com/dtnitsch/procurement-nlq/pkg/promptgen"
)

// GenerateAction produces natural-language questions with GPT-4o and writes
// them to the prompts directory, optionally split into train/test files.
func GenerateAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	common.LoadEnv(logger)

	count := c.Int("count")
	if count <= 0 {
		fmt.Fprintln(os.Stderr, "Error: --count must be positive")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  procurement-nlq prompts --count 100`)
		fmt.Fprintln(os.Stderr, `  procurement-nlq prompts --count 100 --split 0.8`)
		os.Exit(1)
	}

	generator, err := promptgen.NewGenerator("", c.Int("max-retries"), logger)
	if err != nil {
		logger.Error("failed to initialize generator", "error", err)
		os.Exit(2)
	}
	handler, err := promptgen.NewFileHandler(c.String("output-dir"))
	if err != nil {
		logger.Error("failed to initialize output directory", "error", err)
		os.Exit(2)
	}

	logger.Info("generating questions", "count", count)
	generated, genErr := generator.GeneratePrompts(c.Context, count)
	// Keep whatever was generated before a failure; partial batches are still
	// useful and the API calls are paid for.
	if len(generated) == 0 && genErr != nil {
		logger.Error("question generation failed", "error", genErr)
		os.Exit(2)
	}
	if genErr != nil {
		logger.Warn("question generation incomplete", "generated", len(generated), "requested", count, "error", genErr)
	}

	filename := fmt.Sprintf("prompts_%s.txt", common.Timestamp())
	path, err := handler.WritePrompts(generated, filename)
	if err != nil {
		logger.Error("failed to write prompts", "error", err)
		os.Exit(2)
	}
	fmt.Printf("Wrote %d questions to: %s\n", len(generated), path)

	if ratio := c.Float64("split"); ratio > 0 {
		if ratio >= 1 {
			return fmt.Errorf("invalid --split ratio %v: must be between 0 and 1", ratio)
		}
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		trainFile, testFile, err := handler.SplitPrompts(filename, ratio, rng)
		if err != nil {
			return fmt.Errorf("failed to split prompts: %w", err)
		}
		fmt.Printf("Split into: %s / %s\n", trainFile, testFile)
	}

	if genErr != nil {
		os.Exit(1)
	}
	return nil
}
