package db

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/dtnitsch/procurement-nlq/pkg/db"
)

// RunsAction lists recorded translate and evaluate runs.
func RunsAction(c *cli.Context) error {
	database, err := dbpkg.Open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	limit := c.Int("limit")
	runs, err := database.ListRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	// Print table header
	fmt.Printf("%-6s %-10s %-20s %-10s %-8s %-8s %-30s\n",
		"ID", "Kind", "Started", "Questions", "Success", "Failed", "Model")
	fmt.Println(strings.Repeat("-", 100))

	// Print each run
	for _, r := range runs {
		model := r.Model
		if model == "" {
			model = "(default)"
		}
		fmt.Printf("%-6d %-10s %-20s %-10d %-8d %-8d %-30s\n",
			r.RunID,
			r.Kind,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.QuestionCount,
			r.SuccessCount,
			r.ErrorCount,
			model,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'procurement-nlq runs show <id>' to see details\n")

	return nil
}

// RunAction shows details for a specific run.
func RunAction(c *cli.Context) error {
	database, err := dbpkg.Open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runID, err := GetRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	run, err := database.GetRunByID(runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	var questions []dbpkg.RunQuestion
	if c.Bool("failed-only") {
		questions, err = database.GetFailedQuestions(runID)
	} else {
		questions, err = database.GetRunQuestions(runID)
	}
	if err != nil {
		return fmt.Errorf("failed to get run questions: %w", err)
	}

	// Print run details
	fmt.Printf("Run %d (%s)\n", run.RunID, run.Kind)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Started:     %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.FinishedAt != nil {
		fmt.Printf("Finished:    %s\n", run.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Input:       %s\n", run.InputFile)
	if run.Model != "" {
		fmt.Printf("Model:       %s\n", run.Model)
	}
	fmt.Printf("Questions:   %d total (%d success, %d failed)\n",
		run.QuestionCount, run.SuccessCount, run.ErrorCount)

	if len(questions) > 0 {
		fmt.Printf("\nQuestions (%d):\n", len(questions))
		fmt.Println(strings.Repeat("-", 60))
		for _, q := range questions {
			fmt.Printf("%3d. [%s] %s\n", q.LineNumber, q.Status, q.Question)
			if q.Status == "failed" {
				fmt.Printf("     Error: %s\n", q.ErrorMessage)
				continue
			}
			if q.Score > 0 {
				fmt.Printf("     Results: %d | Score: %.1f/10\n", q.ResultCount, q.Score)
			} else {
				fmt.Printf("     Results: %d\n", q.ResultCount)
			}
		}
	}

	return nil
}

// InitAction creates the database schema explicitly. Open auto-initializes,
// so this mostly reports where the database lives.
func InitAction(c *cli.Context) error {
	database, err := dbpkg.Open()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	fmt.Printf("Database initialized at: %s\n", database.Path())
	return nil
}
