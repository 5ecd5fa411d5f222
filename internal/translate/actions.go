package translate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/procurement-nlq/internal/common"
	"github.com/dtnitsch/procurement-nlq/models"
	"github.com/dtnitsch/procurement-nlq/pkg/db"
	"github.com/dtnitsch/procurement-nlq/pkg/mongostore"
	"github.com/dtnitsch/procurement-nlq/pkg/translator"
)

// TranslateAction turns a file of questions into validated MongoDB queries.
// Each generated query is executed against the live collection before it is
// accepted; a query that Claude produces but the database rejects goes to the
// error log, not the training data.
func TranslateAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	common.LoadEnv(logger)
	startTime := time.Now()

	config := &models.TranslateConfig{
		QuestionsFile: c.String("questions"),
		Model:         c.String("model"),
		OutputDir:     c.String("output-dir"),
		Limit:         c.Int("limit"),
	}

	if config.QuestionsFile == "" {
		fmt.Fprintln(os.Stderr, "Error: No questions file provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  procurement-nlq translate --questions query_prompts/prompts_train.txt`)
		fmt.Fprintln(os.Stderr, `  procurement-nlq translate --questions prompts.txt --limit 50`)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Need help? Run: procurement-nlq translate --help")
		os.Exit(1)
	}

	questions, err := common.ReadQuestions(config.QuestionsFile)
	if err != nil {
		logger.Error("failed to read questions file", "error", err)
		os.Exit(2)
	}
	if config.Limit > 0 && len(questions) > config.Limit {
		questions = questions[:config.Limit]
	}
	if len(questions) == 0 {
		fmt.Fprintln(os.Stderr, "Error: questions file is empty")
		os.Exit(1)
	}

	if config.OutputDir != "" {
		if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
			logger.Error("failed to create output directory", "error", err)
			os.Exit(2)
		}
	}

	// Open database for run tracking
	database, err := db.Open()
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(2)
	}
	defer database.Close()

	trans, err := translator.New(translator.Config{
		APIKey: c.String("api-key"),
		Model:  config.Model,
	})
	if err != nil {
		logger.Error("failed to initialize translator", "error", err)
		os.Exit(2)
	}

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

	// Warm up the connection so the first question doesn't absorb the
	// cluster's cold-start latency.
	if err := store.WarmUp(c.Context); err != nil {
		logger.Warn("warm-up query failed", "error", err)
	}

	runID, err := database.CreateRun("translate", config.QuestionsFile, config.Model)
	if err != nil {
		logger.Error("failed to create run record", "error", err)
		os.Exit(2)
	}
	logger.Info("run started", "run_id", runID, "questions", len(questions))

	var successes []models.QueryRecord
	var failures []models.ErrorRecord

	for i, q := range questions {
		// Line numbers refer to the input file, not the position in the
		// batch, so blank lines in the file don't shift the error log.
		lineNumber := q.Line
		question := q.Text
		logger.Info("processing question", "index", i+1, "total", len(questions), "line", lineNumber, "question", question)

		query, err := trans.GenerateQuery(c.Context, question)
		if err != nil {
			logger.Error("query generation failed", "line", lineNumber, "error", err)
			failures = append(failures, models.ErrorRecord{
				LineNumber: lineNumber,
				Question:   question,
				Error:      err.Error(),
			})
			recordQuestion(database, logger, db.RunQuestion{
				RunID:        runID,
				LineNumber:   lineNumber,
				Question:     question,
				Status:       "failed",
				ErrorMessage: err.Error(),
			})
			continue
		}

		results, err := store.Run(c.Context, query)
		if err != nil {
			logger.Error("query execution failed", "line", lineNumber, "error", err)
			failures = append(failures, models.ErrorRecord{
				LineNumber: lineNumber,
				Question:   question,
				Query:      query,
				Error:      err.Error(),
			})
			recordQuestion(database, logger, db.RunQuestion{
				RunID:        runID,
				LineNumber:   lineNumber,
				Question:     question,
				Status:       "failed",
				ErrorMessage: err.Error(),
				QueryJSON:    marshalQuery(query),
			})
			continue
		}

		successes = append(successes, models.QueryRecord{
			Question:    question,
			Query:       query,
			ResultCount: len(results),
		})
		recordQuestion(database, logger, db.RunQuestion{
			RunID:       runID,
			LineNumber:  lineNumber,
			Question:    question,
			Status:      "success",
			QueryJSON:   marshalQuery(query),
			ResultCount: len(results),
		})
		logger.Info("query validated", "line", lineNumber, "results", len(results))
	}

	if err := database.FinishRun(runID, len(questions), len(successes), len(failures)); err != nil {
		logger.Warn("failed to finish run record", "error", err)
	}

	timestamp := common.Timestamp()
	summary := models.RunSummary{
		RunID:           runID,
		TotalQuestions:  len(questions),
		Successful:      len(successes),
		Failed:          len(failures),
		SuccessRate:     float64(len(successes)) / float64(len(questions)),
		DurationSeconds: time.Since(startTime).Seconds(),
	}

	if len(successes) > 0 {
		path := outputPath(config.OutputDir, fmt.Sprintf("successful_queries_%s.json", timestamp))
		if err := common.WriteJSON(path, successes); err != nil {
			logger.Error("failed to write successful queries", "error", err)
			os.Exit(2)
		}
		summary.SuccessFile = path
	}
	if len(failures) > 0 {
		path := outputPath(config.OutputDir, fmt.Sprintf("error_log_%s.json", timestamp))
		if err := common.WriteJSON(path, failures); err != nil {
			logger.Error("failed to write error log", "error", err)
			os.Exit(2)
		}
		summary.ErrorLogFile = path
	}

	if err := common.PrintYAML(summary); err != nil {
		logger.Error("failed to print summary", "error", err)
		os.Exit(2)
	}

	if len(successes) == 0 {
		os.Exit(2)
	}
	if len(failures) > 0 {
		os.Exit(1)
	}
	return nil
}

func outputPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func marshalQuery(query map[string]any) string {
	data, err := json.Marshal(query)
	if err != nil {
		return ""
	}
	return string(data)
}

// recordQuestion logs run-tracking failures without aborting the batch; the
// JSON output files are the source of truth, the database is the index.
func recordQuestion(database *db.DB, logger *slog.Logger, q db.RunQuestion) {
	if err := database.InsertRunQuestion(q); err != nil {
		logger.Warn("failed to record question", "line", q.LineNumber, "error", err)
	}
}
