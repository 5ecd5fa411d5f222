package db

import (
	"testing"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	database := &DB{path: ":memory:"}
	var err error
	database.DB, err = openDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return database
}

func TestCreateRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.CreateRun("translate", "questions.txt", "claude-3-sonnet-20240229")
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}
	if runID == 0 {
		t.Error("CreateRun() returned 0 run ID")
	}

	run, err := db.GetRunByID(runID)
	if err != nil {
		t.Fatalf("GetRunByID() error = %v", err)
	}
	if run.Kind != "translate" {
		t.Errorf("run.Kind = %q, want %q", run.Kind, "translate")
	}
	if run.InputFile != "questions.txt" {
		t.Errorf("run.InputFile = %q, want %q", run.InputFile, "questions.txt")
	}
	if run.FinishedAt != nil {
		t.Error("new run should not have a finish time")
	}
}

func TestFinishRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.CreateRun("translate", "questions.txt", "")
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	if err := db.FinishRun(runID, 10, 8, 2); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	run, err := db.GetRunByID(runID)
	if err != nil {
		t.Fatalf("GetRunByID() error = %v", err)
	}
	if run.QuestionCount != 10 || run.SuccessCount != 8 || run.ErrorCount != 2 {
		t.Errorf("counters = %d/%d/%d, want 10/8/2",
			run.QuestionCount, run.SuccessCount, run.ErrorCount)
	}
	if run.FinishedAt == nil {
		t.Error("finished run should have a finish time")
	}
}

func TestRunQuestions(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	runID, err := db.CreateRun("translate", "questions.txt", "")
	if err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	questions := []RunQuestion{
		{RunID: runID, LineNumber: 1, Question: "total spend by department", Status: "success",
			QueryJSON: `{"aggregate":true,"pipeline":[]}`, ResultCount: 12},
		{RunID: runID, LineNumber: 2, Question: "nonsense question", Status: "failed",
			ErrorMessage: "query format not recognized"},
	}
	for _, q := range questions {
		if err := db.InsertRunQuestion(q); err != nil {
			t.Fatalf("InsertRunQuestion() error = %v", err)
		}
	}

	got, err := db.GetRunQuestions(runID)
	if err != nil {
		t.Fatalf("GetRunQuestions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetRunQuestions() returned %d rows, want 2", len(got))
	}
	if got[0].LineNumber != 1 || got[1].LineNumber != 2 {
		t.Errorf("questions out of line order: %d, %d", got[0].LineNumber, got[1].LineNumber)
	}
	if got[0].ResultCount != 12 {
		t.Errorf("ResultCount = %d, want 12", got[0].ResultCount)
	}

	failed, err := db.GetFailedQuestions(runID)
	if err != nil {
		t.Fatalf("GetFailedQuestions() error = %v", err)
	}
	if len(failed) != 1 || failed[0].Question != "nonsense question" {
		t.Errorf("GetFailedQuestions() = %#v, want the one failed row", failed)
	}
}

func TestListRuns(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	for i := 0; i < 3; i++ {
		if _, err := db.CreateRun("evaluate", "test_questions.txt", "ft:gpt-4o-mini"); err != nil {
			t.Fatalf("CreateRun() error = %v", err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListRuns(2) returned %d runs, want 2", len(runs))
	}
	if runs[0].RunID < runs[1].RunID {
		t.Errorf("runs not newest-first: %d before %d", runs[0].RunID, runs[1].RunID)
	}
}
