package training

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/procurement-nlq/internal/common"
	"github.com/dtnitsch/procurement-nlq/models"
	"github.com/dtnitsch/procurement-nlq/pkg/training"
)

// FormatAction converts a successful-queries JSON file into train and
// validation JSONL files in OpenAI chat format.
func FormatAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	inputPath := c.String("input")
	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "Error: No input file provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  procurement-nlq format --input successful_queries_20260825_120000.json`)
		os.Exit(1)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		logger.Error("failed to read input file", "error", err)
		os.Exit(2)
	}
	var records []models.QueryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Error("input is not a query-record file", "error", err)
		os.Exit(2)
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "Error: input file has no records")
		os.Exit(1)
	}

	examples, err := training.FormatRecords(records)
	if err != nil {
		logger.Error("failed to format records", "error", err)
		os.Exit(2)
	}

	ratio := c.Float64("split")
	if ratio <= 0 || ratio >= 1 {
		ratio = training.DefaultTrainRatio
	}
	// Fixed seed so reformatting the same input reproduces the same split.
	rng := rand.New(rand.NewSource(c.Int64("seed")))
	train, validation := training.SplitExamples(examples, ratio, rng)

	trainPath := derivePath(inputPath, "_train.jsonl")
	validationPath := derivePath(inputPath, "_validation.jsonl")
	if err := training.WriteJSONL(trainPath, train); err != nil {
		logger.Error("failed to write training file", "error", err)
		os.Exit(2)
	}
	if err := training.WriteJSONL(validationPath, validation); err != nil {
		logger.Error("failed to write validation file", "error", err)
		os.Exit(2)
	}

	fmt.Printf("Formatted %d examples: %d train, %d validation\n", len(examples), len(train), len(validation))
	fmt.Printf("  %s\n  %s\n", trainPath, validationPath)
	return nil
}

// AnalyzeAction reports token statistics and cost estimates for a JSONL
// training file.
func AnalyzeAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	inputPath := c.String("input")
	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "Error: No input file provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  procurement-nlq analyze --input successful_queries_train.jsonl`)
		os.Exit(1)
	}

	examples, err := training.ReadJSONL(inputPath)
	if err != nil {
		logger.Error("failed to read training file", "error", err)
		os.Exit(2)
	}

	analyzer, err := training.NewAnalyzer()
	if err != nil {
		logger.Error("failed to load tokenizer", "error", err)
		os.Exit(2)
	}
	report, err := analyzer.Analyze(examples)
	if err != nil {
		logger.Error("analysis failed", "error", err)
		os.Exit(2)
	}
	return common.PrintYAML(report)
}

// FinetuneAction uploads training files and starts a fine-tuning job, or
// checks on an existing job with --job.
func FinetuneAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	common.LoadEnv(logger)

	tuner, err := training.NewFineTuner("", c.String("base-model"), logger)
	if err != nil {
		logger.Error("failed to initialize fine-tuner", "error", err)
		os.Exit(2)
	}

	if jobID := c.String("job"); jobID != "" {
		status, model, err := tuner.JobStatus(c.Context, jobID)
		if err != nil {
			logger.Error("failed to check job status", "error", err)
			os.Exit(2)
		}
		fmt.Printf("Job %s: %s\n", jobID, status)
		if model != "" {
			fmt.Printf("Fine-tuned model: %s\n", model)
			fmt.Printf("\nNext: export MODEL_NAME=%s and run 'procurement-nlq evaluate'\n", model)
		}
		return nil
	}

	trainPath := c.String("train")
	if trainPath == "" {
		fmt.Fprintln(os.Stderr, "Error: No training file provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  procurement-nlq finetune --train data_train.jsonl --validation data_validation.jsonl`)
		fmt.Fprintln(os.Stderr, `  procurement-nlq finetune --job ftjob-abc123    # Check job status`)
		os.Exit(1)
	}

	trainFileID, err := tuner.UploadFile(c.Context, trainPath)
	if err != nil {
		logger.Error("failed to upload training file", "error", err)
		os.Exit(2)
	}

	var validationFileID string
	if validationPath := c.String("validation"); validationPath != "" {
		validationFileID, err = tuner.UploadFile(c.Context, validationPath)
		if err != nil {
			logger.Error("failed to upload validation file", "error", err)
			os.Exit(2)
		}
	}

	jobID, err := tuner.CreateJob(c.Context, trainFileID, validationFileID, c.Int("epochs"))
	if err != nil {
		logger.Error("failed to create fine-tuning job", "error", err)
		os.Exit(2)
	}

	fmt.Printf("Fine-tuning job started: %s\n", jobID)
	fmt.Printf("Check progress: procurement-nlq finetune --job %s\n", jobID)
	return nil
}

// derivePath swaps a .json suffix for the given one, appending when the input
// has no .json extension.
func derivePath(path, suffix string) string {
	if strings.HasSuffix(path, ".json") {
		return strings.TrimSuffix(path, ".json") + suffix
	}
	return path + suffix
}
