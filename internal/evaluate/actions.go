package evaluate

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/procurement-nlq/internal/common"
	"github.com/dtnitsch/procurement-nlq/pkg/db"
	"github.com/dtnitsch/procurement-nlq/pkg/evaluator"
	"github.com/dtnitsch/procurement-nlq/pkg/mongostore"
)

// EvaluateAction runs the fine-tuned model against a file of test questions,
// executing each generated query and having Claude score it.
func EvaluateAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	common.LoadEnv(logger)

	questionsFile := c.String("questions")
	if questionsFile == "" {
		fmt.Fprintln(os.Stderr, "Error: No questions file provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  procurement-nlq evaluate --questions query_prompts/prompts_test.txt`)
		fmt.Fprintln(os.Stderr, `  procurement-nlq evaluate --questions prompts_test.txt --model ft:gpt-4o-mini:...`)
		os.Exit(1)
	}

	questions, err := common.ReadLines(questionsFile)
	if err != nil {
		logger.Error("failed to read questions file", "error", err)
		os.Exit(2)
	}
	if limit := c.Int("limit"); limit > 0 && len(questions) > limit {
		questions = questions[:limit]
	}
	if len(questions) == 0 {
		fmt.Fprintln(os.Stderr, "Error: questions file is empty")
		os.Exit(1)
	}

	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	mongoCfg, err := mongostore.ConfigFromEnv()
	if err != nil {
		logger.Error("missing MongoDB configuration", "error", err)
		os.Exit(2)
	}
	store, err := mongostore.Connect(c.Context, mongoCfg)
	if err != nil {
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(2)
	}
	defer store.Close(c.Context)

	eval, err := evaluator.New(evaluator.Config{
		Model:      c.String("model"),
		ResultsDir: c.String("results-dir"),
		QueriesDir: c.String("queries-dir"),
	}, store, logger)
	if err != nil {
		logger.Error("failed to initialize evaluator", "error", err)
		os.Exit(2)
	}

	runID, err := database.CreateRun("evaluate", questionsFile, c.String("model"))
	if err != nil {
		logger.Error("failed to create run record", "error", err)
		os.Exit(2)
	}

	timestamp := common.Timestamp()
	aggregate, err := eval.Run(c.Context, questions, timestamp)
	if err != nil {
		logger.Error("evaluation failed", "error", err)
		os.Exit(2)
	}

	for i, result := range aggregate.Results {
		q := db.RunQuestion{
			RunID:      runID,
			LineNumber: i + 1,
			Question:   result.Question,
			QueryJSON:  result.GeneratedQuery,
		}
		if result.Error != "" {
			q.Status = "failed"
			q.ErrorMessage = result.Error
		} else {
			q.Status = "success"
			q.ResultCount = result.ExecutionResult.ResultsCount
			q.Score = result.Scores.TotalScore
		}
		if err := database.InsertRunQuestion(q); err != nil {
			logger.Warn("failed to record question", "line", i+1, "error", err)
		}
	}
	failed := aggregate.TotalQuestions - aggregate.SuccessfulExecutions
	if err := database.FinishRun(runID, aggregate.TotalQuestions, aggregate.SuccessfulExecutions, failed); err != nil {
		logger.Warn("failed to finish run record", "error", err)
	}

	fmt.Printf("Run %d: %d/%d queries executed successfully, average score %.2f/10\n",
		runID, aggregate.SuccessfulExecutions, aggregate.TotalQuestions, aggregate.AverageTotalScore)

	if aggregate.SuccessfulExecutions == 0 {
		os.Exit(2)
	}
	if failed > 0 {
		os.Exit(1)
	}
	return nil
}
