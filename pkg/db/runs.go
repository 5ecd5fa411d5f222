package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Run is one translate or evaluate invocation.
type Run struct {
	RunID         int64
	Kind          string
	InputFile     string
	Model         string
	StartedAt     time.Time
	FinishedAt    *time.Time
	QuestionCount int
	SuccessCount  int
	ErrorCount    int
}

// RunQuestion is a single question's outcome within a run.
type RunQuestion struct {
	QuestionID   int64
	RunID        int64
	LineNumber   int
	Question     string
	Status       string
	ErrorMessage string
	QueryJSON    string
	ResultCount  int
	Score        float64
}

// CreateRun inserts a new run row and returns its ID.
func (db *DB) CreateRun(kind, inputFile, model string) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO runs (kind, input_file, model)
		VALUES (?, ?, ?)
	`, kind, inputFile, model)
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// FinishRun stamps the end time and final counters on a run.
func (db *DB) FinishRun(runID int64, questionCount, successCount, errorCount int) error {
	_, err := db.Exec(`
		UPDATE runs
		SET finished_at = CURRENT_TIMESTAMP,
		    question_count = ?,
		    success_count = ?,
		    error_count = ?
		WHERE run_id = ?
	`, questionCount, successCount, errorCount, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// InsertRunQuestion records one processed question. queryJSON may be empty when
// generation itself failed.
func (db *DB) InsertRunQuestion(q RunQuestion) error {
	_, err := db.Exec(`
		INSERT INTO run_questions (run_id, line_number, question, status, error_message, query_json, result_count, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, q.RunID, q.LineNumber, q.Question, q.Status, q.ErrorMessage, q.QueryJSON, q.ResultCount, q.Score)
	if err != nil {
		return fmt.Errorf("failed to insert run question: %w", err)
	}
	return nil
}

// GetRunByID fetches a single run.
func (db *DB) GetRunByID(runID int64) (*Run, error) {
	run := &Run{}
	var finishedAt sql.NullTime
	var model sql.NullString

	err := db.QueryRow(`
		SELECT run_id, kind, input_file, model, started_at, finished_at, question_count, success_count, error_count
		FROM runs WHERE run_id = ?
	`, runID).Scan(&run.RunID, &run.Kind, &run.InputFile, &model, &run.StartedAt,
		&finishedAt, &run.QuestionCount, &run.SuccessCount, &run.ErrorCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Model = model.String
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	return run, nil
}

// GetRunQuestions returns every question row for a run, in line order.
func (db *DB) GetRunQuestions(runID int64) ([]RunQuestion, error) {
	rows, err := db.Query(`
		SELECT question_id, run_id, line_number, question, status, error_message, query_json, result_count, score
		FROM run_questions
		WHERE run_id = ?
		ORDER BY line_number
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run questions: %w", err)
	}
	defer rows.Close()

	var questions []RunQuestion
	for rows.Next() {
		var q RunQuestion
		var errMsg, queryJSON sql.NullString
		if err := rows.Scan(&q.QuestionID, &q.RunID, &q.LineNumber, &q.Question, &q.Status,
			&errMsg, &queryJSON, &q.ResultCount, &q.Score); err != nil {
			return nil, fmt.Errorf("failed to scan run question: %w", err)
		}
		q.ErrorMessage = errMsg.String
		q.QueryJSON = queryJSON.String
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetFailedQuestions returns the failed rows of a run, for retry workflows.
func (db *DB) GetFailedQuestions(runID int64) ([]RunQuestion, error) {
	questions, err := db.GetRunQuestions(runID)
	if err != nil {
		return nil, err
	}

	var failed []RunQuestion
	for _, q := range questions {
		if q.Status == "failed" {
			failed = append(failed, q)
		}
	}
	return failed, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT run_id, kind, input_file, model, started_at, finished_at, question_count, success_count, error_count
		FROM runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var finishedAt sql.NullTime
		var model sql.NullString
		if err := rows.Scan(&run.RunID, &run.Kind, &run.InputFile, &model, &run.StartedAt,
			&finishedAt, &run.QuestionCount, &run.SuccessCount, &run.ErrorCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Model = model.String
		if finishedAt.Valid {
			run.FinishedAt = &finishedAt.Time
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
