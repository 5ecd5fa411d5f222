package promptgen

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndReadPrompts(t *testing.T) {
	h, err := NewFileHandler(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileHandler() error = %v", err)
	}

	prompts := []string{
		"What is the total spend per department?",
		"List all purchases above $50,000 in fiscal year 2013-2014.",
	}

	if _, err := h.WritePrompts(prompts, "prompts.txt"); err != nil {
		t.Fatalf("WritePrompts() error = %v", err)
	}

	got, err := h.ReadPrompts("prompts.txt")
	if err != nil {
		t.Fatalf("ReadPrompts() error = %v", err)
	}
	if len(got) != 2 || got[0] != prompts[0] || got[1] != prompts[1] {
		t.Errorf("ReadPrompts() = %#v, want %#v", got, prompts)
	}
}

func TestSplitPrompts(t *testing.T) {
	dir := t.TempDir()
	h, err := NewFileHandler(dir)
	if err != nil {
		t.Fatalf("NewFileHandler() error = %v", err)
	}

	prompts := make([]string, 10)
	for i := range prompts {
		prompts[i] = "question about procurement spending"
	}
	if _, err := h.WritePrompts(prompts, "prompts.txt"); err != nil {
		t.Fatalf("WritePrompts() error = %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	trainFile, testFile, err := h.SplitPrompts("prompts.txt", 0.8, rng)
	if err != nil {
		t.Fatalf("SplitPrompts() error = %v", err)
	}

	if trainFile != "prompts_train.txt" || testFile != "prompts_test.txt" {
		t.Errorf("split file names = %q, %q", trainFile, testFile)
	}

	train, err := h.ReadPrompts(trainFile)
	if err != nil {
		t.Fatalf("ReadPrompts(train) error = %v", err)
	}
	test, err := h.ReadPrompts(testFile)
	if err != nil {
		t.Fatalf("ReadPrompts(test) error = %v", err)
	}
	if len(train) != 8 || len(test) != 2 {
		t.Errorf("split sizes = %d/%d, want 8/2", len(train), len(test))
	}

	// The combined file must be gone after splitting.
	if _, err := os.Stat(filepath.Join(dir, "prompts.txt")); !os.IsNotExist(err) {
		t.Error("combined prompt file still exists after split")
	}
}
