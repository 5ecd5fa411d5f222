// Package models defines data structures shared across pipeline commands.
package models

// TranslateConfig holds runtime configuration for translate runs.
// All values come from CLI flags, not external config files.
type TranslateConfig struct {
	QuestionsFile string
	Model         string
	OutputDir     string
	Limit         int
}
