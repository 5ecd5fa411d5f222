package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	dbactions "github.com/dtnitsch/procurement-nlq/internal/db"
	"github.com/dtnitsch/procurement-nlq/internal/evaluate"
	"github.com/dtnitsch/procurement-nlq/internal/ingest"
	"github.com/dtnitsch/procurement-nlq/internal/prompts"
	"github.com/dtnitsch/procurement-nlq/internal/training"
	"github.com/dtnitsch/procurement-nlq/internal/translate"
	"github.com/dtnitsch/procurement-nlq/pkg/evaluator"
	"github.com/dtnitsch/procurement-nlq/pkg/help"
	"github.com/dtnitsch/procurement-nlq/pkg/promptgen"
)

func main() {
	app := &cli.App{
		Name:  "procurement-nlq",
		Usage: "Natural-language queries over California procurement data: load, translate, fine-tune, evaluate",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Only log errors",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "coldstart",
				Usage:  "Print quick-start reference",
				Action: coldstartAction,
			},
			{
				Name:   "profile",
				Usage:  "Summarize a procurement CSV (rows, missing values, numeric ranges, top values)",
				Action: ingest.ProfileAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "csv", Usage: "Path to the procurement CSV file"},
					&cli.IntFlag{Name: "top-values", Value: 10, Usage: "Frequent values to report per column"},
					&cli.StringFlag{Name: "output", Usage: "Write the YAML report to a file instead of stdout"},
					&cli.BoolFlag{Name: "quiet", Usage: "Only log errors"},
				},
			},
			{
				Name:   "load",
				Usage:  "Drop and reload the MongoDB collection from a CSV file",
				Action: ingest.LoadAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "csv", Usage: "Path to the procurement CSV file"},
					&cli.IntFlag{Name: "max-rows", Value: 200000, Usage: "Maximum rows to load"},
					&cli.IntFlag{Name: "batch-size", Value: 10000, Usage: "Documents per insert batch"},
					&cli.BoolFlag{Name: "quiet", Usage: "Only log errors"},
				},
			},
			{
				Name:   "prompts",
				Usage:  "Generate natural-language questions with GPT-4o",
				Action: prompts.GenerateAction,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "count", Value: 100, Usage: "Number of questions to generate"},
					&cli.Float64Flag{Name: "split", Usage: "Train ratio for an immediate train/test split (e.g. 0.8)"},
					&cli.StringFlag{Name: "output-dir", Value: promptgen.DefaultOutputDir, Usage: "Directory for prompt files"},
					&cli.IntFlag{Name: "max-retries", Value: 3, Usage: "Retries per API call"},
					&cli.BoolFlag{Name: "quiet", Usage: "Only log errors"},
				},
			},
			{
				Name:   "translate",
				Usage:  "Translate questions into validated MongoDB queries with Claude",
				Action: translate.TranslateAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "questions", Usage: "File with one question per line"},
					&cli.StringFlag{Name: "model", Usage: "Claude model (default claude-3-sonnet)"},
					&cli.StringFlag{Name: "api-key", Usage: "Anthropic API key (default: ANTHROPIC_API_KEY)"},
					&cli.StringFlag{Name: "output-dir", Usage: "Directory for result files (default: current directory)"},
					&cli.IntFlag{Name: "limit", Usage: "Only process the first N questions"},
					&cli.BoolFlag{Name: "quiet", Usage: "Only log errors"},
				},
			},
			{
				Name:   "format",
				Usage:  "Convert successful queries into fine-tuning JSONL (train + validation)",
				Action: training.FormatAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Usage: "A successful_queries_*.json file"},
					&cli.Float64Flag{Name: "split", Value: 0.8, Usage: "Train ratio"},
					&cli.Int64Flag{Name: "seed", Value: 42, Usage: "Shuffle seed (fixed for reproducible splits)"},
					&cli.BoolFlag{Name: "quiet", Usage: "Only log errors"},
				},
			},
			{
				Name:   "analyze",
				Usage:  "Token statistics and cost estimate for a training JSONL file",
				Action: training.AnalyzeAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Usage: "A *_train.jsonl file"},
					&cli.BoolFlag{Name: "quiet", Usage: "Only log errors"},
				},
			},
			{
				Name:   "finetune",
				Usage:  "Upload training data and manage fine-tuning jobs",
				Action: training.FinetuneAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "train", Usage: "Training JSONL file"},
					&cli.StringFlag{Name: "validation", Usage: "Validation JSONL file"},
					&cli.StringFlag{Name: "base-model", Usage: "Base model to fine-tune"},
					&cli.IntFlag{Name: "epochs", Usage: "Training epochs (default 3)"},
					&cli.StringFlag{Name: "job", Usage: "Check status of an existing job instead of starting one"},
					&cli.BoolFlag{Name: "quiet", Usage: "Only log errors"},
				},
			},
			{
				Name:   "evaluate",
				Usage:  "Evaluate the fine-tuned model: generate, execute, and score queries",
				Action: evaluate.EvaluateAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "questions", Usage: "File with one test question per line"},
					&cli.StringFlag{Name: "model", Usage: "Fine-tuned model name (default: MODEL_NAME env)"},
					&cli.IntFlag{Name: "limit", Usage: "Only evaluate the first N questions"},
					&cli.StringFlag{Name: "results-dir", Value: evaluator.DefaultResultsDir, Usage: "Directory for aggregate results"},
					&cli.StringFlag{Name: "queries-dir", Value: evaluator.DefaultQueriesDir, Usage: "Directory for per-question artifacts"},
					&cli.BoolFlag{Name: "quiet", Usage: "Only log errors"},
				},
			},
			{
				Name:  "runs",
				Usage: "Inspect recorded translate and evaluate runs",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List runs with stats",
						Action: dbactions.RunsAction,
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum runs to list"},
						},
					},
					{
						Name:      "show",
						Usage:     "Show per-question details for a run (latest if no ID given)",
						ArgsUsage: "[run_id]",
						Action:    dbactions.RunAction,
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "failed-only", Usage: "Only show failed questions"},
						},
					},
					{
						Name:   "init",
						Usage:  "Initialize the run-tracking database",
						Action: dbactions.InitAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func coldstartAction(c *cli.Context) error {
	fmt.Print(help.ColdstartYAML)
	return nil
}
