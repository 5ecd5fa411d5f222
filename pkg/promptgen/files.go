package promptgen

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

// DefaultOutputDir is where prompt files land unless overridden.
const DefaultOutputDir = "query_prompts"

// FileHandler writes prompt files and splits them into train/test sets.
type FileHandler struct {
	outputDir string
}

// NewFileHandler creates the output directory if needed.
func NewFileHandler(outputDir string) (*FileHandler, error) {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileHandler{outputDir: outputDir}, nil
}

// WritePrompts writes prompts to a file in the output directory, one per line.
func (h *FileHandler) WritePrompts(prompts []string, filename string) (string, error) {
	path := filepath.Join(h.outputDir, filename)

	var b strings.Builder
	for _, p := range prompts {
		b.WriteString(p)
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write prompts: %w", err)
	}
	return path, nil
}

// ReadPrompts loads a prompt file, skipping blank lines.
func (h *FileHandler) ReadPrompts(filename string) ([]string, error) {
	file, err := os.Open(filepath.Join(h.outputDir, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to open prompt file: %w", err)
	}
	defer file.Close()

	var prompts []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			prompts = append(prompts, line)
		}
	}
	return prompts, scanner.Err()
}

// SplitPrompts shuffles a prompt file and splits it into _train and _test
// files by ratio, removing the combined file afterwards. Returns the two new
// file names.
func (h *FileHandler) SplitPrompts(filename string, trainRatio float64, rng *rand.Rand) (string, string, error) {
	prompts, err := h.ReadPrompts(filename)
	if err != nil {
		return "", "", err
	}

	rng.Shuffle(len(prompts), func(i, j int) {
		prompts[i], prompts[j] = prompts[j], prompts[i]
	})

	splitIdx := int(float64(len(prompts)) * trainRatio)
	trainFile := strings.Replace(filename, ".txt", "_train.txt", 1)
	testFile := strings.Replace(filename, ".txt", "_test.txt", 1)

	if _, err := h.WritePrompts(prompts[:splitIdx], trainFile); err != nil {
		return "", "", err
	}
	if _, err := h.WritePrompts(prompts[splitIdx:], testFile); err != nil {
		return "", "", err
	}

	if err := os.Remove(filepath.Join(h.outputDir, filename)); err != nil {
		return "", "", fmt.Errorf("failed to remove combined prompt file: %w", err)
	}
	return trainFile, testFile, nil
}
