package evaluator

import (
	"math"
	"strings"
	"testing"
)

func TestParseScores(t *testing.T) {
	text := `{
		"syntax_score": 5,
		"syntax_comments": "Valid MongoDB syntax",
		"schema_score": 4,
		"schema_comments": "Uses schema fields",
		"logic_score": 5,
		"logic_comments": "Matches the question",
		"completeness_score": 3,
		"completeness_comments": "Missing a sort",
		"efficiency_score": 4,
		"efficiency_comments": "Fine",
		"average_score": 1.0
	}`

	scores, err := parseScores(text)
	if err != nil {
		t.Fatalf("parseScores() error = %v", err)
	}

	// (5+4+5+3+4)/5; the model-supplied average_score must be overwritten.
	if math.Abs(scores.AverageScore-4.2) > 1e-9 {
		t.Errorf("AverageScore = %v, want 4.2", scores.AverageScore)
	}
	if scores.CompletenessComments != "Missing a sort" {
		t.Errorf("CompletenessComments = %q", scores.CompletenessComments)
	}
}

func TestParseScores_RejectsNonJSON(t *testing.T) {
	if _, err := parseScores("I would rate this query highly."); err == nil {
		t.Error("parseScores() accepted prose, want error")
	}
}

func TestEvaluationPrompt(t *testing.T) {
	e := &Evaluator{}
	exec := ExecutionResult{Success: true, Message: "Query executed successfully. Found 12 results.", ResultsCount: 12}

	prompt := e.evaluationPrompt(
		"What is the total spend per department?",
		`{"aggregate": true, "pipeline": [{"$group": {"_id": "$department_name"}}]}`,
		exec,
	)

	for _, want := range []string{
		"What is the total spend per department?",
		`"$department_name"`,
		"Results Count: 12",
		"supplier_zip_code",
		"syntax_score",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("evaluation prompt missing %q", want)
		}
	}
}
