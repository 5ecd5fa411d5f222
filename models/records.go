// Package models defines data structures shared across pipeline stages.
package models

// QueryRecord is one successful question->query translation. The translate
// command writes these to the successful-queries JSON file, and the training
// formatter reads them back when building fine-tuning data.
type QueryRecord struct {
	Question    string         `json:"question"`
	Query       map[string]any `json:"query"`
	ResultCount int            `json:"result_count"`
}

// ErrorRecord captures a failed translation or execution with enough context
// to inspect the offending question later. Query is omitted when generation
// itself failed.
type ErrorRecord struct {
	LineNumber int            `json:"line_number"`
	Question   string         `json:"question"`
	Query      map[string]any `json:"query,omitempty"`
	Error      string         `json:"error"`
}

// RunSummary is the YAML summary printed at the end of a translate run.
type RunSummary struct {
	RunID           int64   `yaml:"run_id,omitempty"`
	TotalQuestions  int     `yaml:"total_questions"`
	Successful      int     `yaml:"successful"`
	Failed          int     `yaml:"failed"`
	SuccessRate     float64 `yaml:"success_rate"`
	SuccessFile     string  `yaml:"successful_queries_file,omitempty"`
	ErrorLogFile    string  `yaml:"error_log_file,omitempty"`
	DurationSeconds float64 `yaml:"duration_seconds"`
}
