package common

import (
	"os"
	"path/filepath"
	"testing"
)

func writeQuestionsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write questions file: %v", err)
	}
	return path
}

func TestReadQuestions_KeepsFileLineNumbers(t *testing.T) {
	path := writeQuestionsFile(t, "first question\n\n  third question  \nfourth question\n")

	questions, err := ReadQuestions(path)
	if err != nil {
		t.Fatalf("ReadQuestions() error = %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(questions))
	}

	// Blank lines are skipped but must not shift the recorded line numbers.
	want := []Question{
		{Line: 1, Text: "first question"},
		{Line: 3, Text: "third question"},
		{Line: 4, Text: "fourth question"},
	}
	for i, q := range questions {
		if q != want[i] {
			t.Errorf("questions[%d] = %+v, want %+v", i, q, want[i])
		}
	}
}

func TestReadLines(t *testing.T) {
	path := writeQuestionsFile(t, "one\n\ntwo\n")

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines() error = %v", err)
	}
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Errorf("ReadLines() = %#v", lines)
	}
}
