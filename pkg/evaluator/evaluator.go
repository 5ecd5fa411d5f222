// Package evaluator scores a fine-tuned query-generation model. For each test
// question it generates a query with the fine-tuned OpenAI model, executes it
// against MongoDB, and has Claude grade the query on five axes. Execution
// success contributes 5 points and the Claude average another 5, for a total
// score out of 10.
package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"

	"github.com/dtnitsch/procurement-nlq/pkg/mongostore"
	"github.com/dtnitsch/procurement-nlq/pkg/schema"
)

const (
	// DefaultScoringModel grades the generated queries.
	DefaultScoringModel = "claude-3-sonnet-20240229"

	// DefaultResultsDir and DefaultQueriesDir hold the evaluation artifacts.
	DefaultResultsDir = "evaluation_results"
	DefaultQueriesDir = "generated_queries"
)

// ExecutionResult captures how a generated query fared against the database.
type ExecutionResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ResultsCount int    `json:"results_count"`
}

// Scores is Claude's grading of a single query. All five axes run 1-5;
// AverageScore is computed locally rather than trusted from the model.
type Scores struct {
	SyntaxScore          float64 `json:"syntax_score"`
	SyntaxComments       string  `json:"syntax_comments"`
	SchemaScore          float64 `json:"schema_score"`
	SchemaComments       string  `json:"schema_comments"`
	LogicScore           float64 `json:"logic_score"`
	LogicComments        string  `json:"logic_comments"`
	CompletenessScore    float64 `json:"completeness_score"`
	CompletenessComments string  `json:"completeness_comments"`
	EfficiencyScore      float64 `json:"efficiency_score"`
	EfficiencyComments   string  `json:"efficiency_comments"`
	Suggestions          string  `json:"suggestions,omitempty"`
	AverageScore         float64 `json:"average_score"`
	Error                string  `json:"error,omitempty"`
}

// ScoreBreakdown combines execution and semantic scoring.
type ScoreBreakdown struct {
	ExecutionScore float64 `json:"execution_score"`
	SemanticScore  float64 `json:"semantic_score"`
	TotalScore     float64 `json:"total_score"`
}

// Evaluation is the complete record for one question.
type Evaluation struct {
	Question         string           `json:"question"`
	GeneratedQuery   string           `json:"generated_query,omitempty"`
	ExecutionResult  *ExecutionResult `json:"execution_result,omitempty"`
	ClaudeEvaluation *Scores          `json:"claude_evaluation,omitempty"`
	Scores           *ScoreBreakdown  `json:"scores,omitempty"`
	Error            string           `json:"error,omitempty"`
}

// Aggregate is the batch result written at the end of a run.
type Aggregate struct {
	Timestamp            string       `json:"timestamp"`
	TotalQuestions       int          `json:"total_questions"`
	SuccessfulExecutions int          `json:"successful_executions"`
	ExecutionSuccessRate float64      `json:"execution_success_rate"`
	AverageTotalScore    float64      `json:"average_total_score"`
	Results              []Evaluation `json:"results"`
}

// Config holds the evaluator settings. Model is the fine-tuned model under
// test and falls back to MODEL_NAME; keys fall back to their usual env vars.
type Config struct {
	OpenAIKey    string
	AnthropicKey string
	Model        string
	ScoringModel string
	ResultsDir   string
	QueriesDir   string
}

// Evaluator runs the full generate/execute/score loop.
type Evaluator struct {
	openaiClient *openai.Client
	claude       anthropic.Client
	store        *mongostore.Store
	logger       *slog.Logger
	model        string
	scoringModel string
	resultsDir   string
	queriesDir   string
}

// New builds an Evaluator and creates its output directories.
func New(cfg Config, store *mongostore.Store, logger *slog.Logger) (*Evaluator, error) {
	openaiKey := cfg.OpenAIKey
	if openaiKey == "" {
		openaiKey = os.Getenv("OPENAI_API_KEY")
	}
	anthropicKey := cfg.AnthropicKey
	if anthropicKey == "" {
		anthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if openaiKey == "" || anthropicKey == "" {
		return nil, errors.New("OPENAI_API_KEY and ANTHROPIC_API_KEY must both be set")
	}

	model := cfg.Model
	if model == "" {
		model = os.Getenv("MODEL_NAME")
	}
	if model == "" {
		return nil, errors.New("no model under test: set MODEL_NAME or pass --model")
	}

	scoringModel := cfg.ScoringModel
	if scoringModel == "" {
		scoringModel = DefaultScoringModel
	}
	resultsDir := cfg.ResultsDir
	if resultsDir == "" {
		resultsDir = DefaultResultsDir
	}
	queriesDir := cfg.QueriesDir
	if queriesDir == "" {
		queriesDir = DefaultQueriesDir
	}
	for _, dir := range []string{resultsDir, queriesDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	return &Evaluator{
		openaiClient: openai.NewClient(openaiKey),
		claude:       anthropic.NewClient(option.WithAPIKey(anthropicKey)),
		store:        store,
		logger:       logger,
		model:        model,
		scoringModel: scoringModel,
		resultsDir:   resultsDir,
		queriesDir:   queriesDir,
	}, nil
}

// GenerateQuery asks the fine-tuned model for a query and verifies it parses
// as JSON. The raw string is returned so the artifact files show exactly what
// the model produced.
func (e *Evaluator) GenerateQuery(ctx context.Context, question string) (string, error) {
	resp, err := e.openaiClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: schema.EvalSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("query generation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("query generation failed: empty response")
	}

	query := resp.Choices[0].Message.Content
	var parsed any
	if err := json.Unmarshal([]byte(query), &parsed); err != nil {
		return "", fmt.Errorf("query generation failed: response is not valid JSON: %w", err)
	}
	return query, nil
}

// Execute runs a generated query and reports the outcome. Execution errors are
// data, not failures: they feed the scoring.
func (e *Evaluator) Execute(ctx context.Context, query string) ExecutionResult {
	var queryMap map[string]any
	if err := json.Unmarshal([]byte(query), &queryMap); err != nil {
		return ExecutionResult{Success: false, Message: err.Error()}
	}

	results, err := e.store.Run(ctx, queryMap)
	if err != nil {
		return ExecutionResult{Success: false, Message: err.Error()}
	}
	return ExecutionResult{
		Success:      true,
		Message:      fmt.Sprintf("Query executed successfully. Found %d results.", len(results)),
		ResultsCount: len(results),
	}
}

// evaluationPrompt builds the grading prompt for Claude.
func (e *Evaluator) evaluationPrompt(question, query string, exec ExecutionResult) string {
	return fmt.Sprintf(`Evaluate this MongoDB query based on the provided schema and execution results.
Be lenient in your scoring and provide constructive feedback.

QUESTION: %s

GENERATED QUERY: %s

EXECUTION RESULTS:
Success: %t
Message: %s
Results Count: %d

DATABASE SCHEMA:
%s

Please evaluate the query and provide scores (1-5, be lenient) in this format:
{
    "syntax_score": 5,
    "syntax_comments": "Valid MongoDB syntax",
    "schema_score": 5,
    "schema_comments": "Correctly uses schema fields",
    "logic_score": 5,
    "logic_comments": "Query logic matches question",
    "completeness_score": 5,
    "completeness_comments": "Addresses all requirements",
    "efficiency_score": 5,
    "efficiency_comments": "Well optimized query",
    "suggestions": "Optional suggestions for improvement"
}`, question, query, exec.Success, exec.Message, exec.ResultsCount, schema.FieldReference)
}

// ScoreWithClaude grades the query. Failures produce a zero score rather than
// aborting the question.
func (e *Evaluator) ScoreWithClaude(ctx context.Context, question, query string, exec ExecutionResult) Scores {
	message, err := e.claude.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(e.scoringModel),
		MaxTokens:   1000,
		Temperature: anthropic.Float(0),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(e.evaluationPrompt(question, query, exec))),
		},
	})
	if err != nil {
		e.logger.Error("claude evaluation failed", "error", err)
		return Scores{Error: err.Error()}
	}
	if len(message.Content) == 0 {
		return Scores{Error: "empty evaluation response"}
	}

	scores, err := parseScores(message.Content[0].Text)
	if err != nil {
		e.logger.Error("claude evaluation unparseable", "error", err)
		return Scores{Error: err.Error()}
	}

	e.logger.Info("claude evaluation completed", "average_score", scores.AverageScore)
	return scores
}

// parseScores decodes Claude's grading response and recomputes the average
// from the five axis scores. Models occasionally invent an average_score
// field; it is always overwritten.
func parseScores(text string) (Scores, error) {
	var scores Scores
	if err := json.Unmarshal([]byte(text), &scores); err != nil {
		return Scores{}, err
	}
	scores.AverageScore = (scores.SyntaxScore + scores.SchemaScore + scores.LogicScore +
		scores.CompletenessScore + scores.EfficiencyScore) / 5
	return scores, nil
}

// EvaluateQuestion runs the complete flow for one question and writes the
// per-question artifact file.
func (e *Evaluator) EvaluateQuestion(ctx context.Context, question, timestamp string, seq int) Evaluation {
	query, err := e.GenerateQuery(ctx, question)
	if err != nil {
		e.logger.Error("query generation failed", "question", question, "error", err)
		return Evaluation{Question: question, Error: err.Error()}
	}

	exec := e.Execute(ctx, query)
	claudeEval := e.ScoreWithClaude(ctx, question, query, exec)

	executionScore := 0.0
	if exec.Success {
		executionScore = 5
	}
	total := executionScore + claudeEval.AverageScore

	evaluation := Evaluation{
		Question:         question,
		GeneratedQuery:   query,
		ExecutionResult:  &exec,
		ClaudeEvaluation: &claudeEval,
		Scores: &ScoreBreakdown{
			ExecutionScore: executionScore,
			SemanticScore:  claudeEval.AverageScore,
			TotalScore:     total,
		},
	}

	queryFile := filepath.Join(e.queriesDir, fmt.Sprintf("query_%s_%d.json", timestamp, seq))
	if data, err := json.MarshalIndent(evaluation, "", "  "); err == nil {
		if err := os.WriteFile(queryFile, data, 0644); err != nil {
			e.logger.Error("failed to save query artifact", "path", queryFile, "error", err)
		}
	}

	e.logger.Info("question evaluated", "total_score", total)
	return evaluation
}

// Run evaluates every question and writes the aggregate results file.
// A single failing question never aborts the batch.
func (e *Evaluator) Run(ctx context.Context, questions []string, timestamp string) (*Aggregate, error) {
	var results []Evaluation
	totalScore := 0.0
	executionSuccesses := 0

	for i, question := range questions {
		e.logger.Info("processing question", "index", i+1, "total", len(questions), "question", question)

		evaluation := e.EvaluateQuestion(ctx, question, timestamp, i)
		results = append(results, evaluation)

		if evaluation.Error == "" {
			totalScore += evaluation.Scores.TotalScore
			if evaluation.ExecutionResult.Success {
				executionSuccesses++
			}
		}
	}

	n := len(results)
	aggregate := &Aggregate{
		Timestamp:            timestamp,
		TotalQuestions:       n,
		SuccessfulExecutions: executionSuccesses,
		Results:              results,
	}
	if n > 0 {
		aggregate.ExecutionSuccessRate = float64(executionSuccesses) / float64(n)
		aggregate.AverageTotalScore = totalScore / float64(n)
	}

	resultsFile := filepath.Join(e.resultsDir, fmt.Sprintf("evaluation_results_%s.json", timestamp))
	data, err := json.MarshalIndent(aggregate, "", "  ")
	if err != nil {
		return aggregate, fmt.Errorf("failed to marshal aggregate results: %w", err)
	}
	if err := os.WriteFile(resultsFile, data, 0644); err != nil {
		return aggregate, fmt.Errorf("failed to save aggregate results: %w", err)
	}

	e.logger.Info("evaluation summary",
		"total_questions", n,
		"successful_executions", executionSuccesses,
		"execution_success_rate", fmt.Sprintf("%.2f%%", aggregate.ExecutionSuccessRate*100),
		"average_total_score", fmt.Sprintf("%.2f/10", aggregate.AverageTotalScore),
		"results_file", resultsFile,
	)
	return aggregate, nil
}
