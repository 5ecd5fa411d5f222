package training

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// encodingName is the tokenizer used by the chat fine-tuning models.
	encodingName = "cl100k_base"

	// tokensPerMessage and tokensPerExample account for the chat framing
	// overhead added around each message and example.
	tokensPerMessage = 3
	tokensPerExample = 3

	// maxBillableTokens caps how many tokens of a single example are billed.
	maxBillableTokens = 16385

	// targetEpochs applies to datasets between the example bounds; smaller
	// sets scale up to minTargetExamples total, larger ones scale down to
	// maxTargetExamples, clamped to the allowed epoch range.
	targetEpochs      = 3
	minTargetExamples = 100
	maxTargetExamples = 25000
	minAllowedEpochs  = 1
	maxAllowedEpochs  = 25
)

// Distribution summarizes one token-count series.
type Distribution struct {
	Min    int     `yaml:"min"`
	Max    int     `yaml:"max"`
	Mean   float64 `yaml:"mean"`
	Median float64 `yaml:"median"`
	P5     float64 `yaml:"p5"`
	P95    float64 `yaml:"p95"`
}

// Report is the dataset analysis written after formatting.
type Report struct {
	ExampleCount   int          `yaml:"example_count"`
	PromptTokens   Distribution `yaml:"prompt_tokens"`
	ResponseTokens Distribution `yaml:"response_tokens"`
	TotalTokens    Distribution `yaml:"total_tokens"`

	QueryTypes     map[string]int `yaml:"query_types"`
	PipelineStages map[int]int    `yaml:"pipeline_stages,omitempty"`

	OverLimit         int `yaml:"examples_over_token_limit"`
	BillableTokens    int `yaml:"billable_tokens_per_epoch"`
	RecommendedEpochs int `yaml:"recommended_epochs"`
	EstimatedTotal    int `yaml:"estimated_total_billable_tokens"`
}

// Analyzer computes token statistics over a formatted dataset.
type Analyzer struct {
	encoding *tiktoken.Tiktoken
}

// NewAnalyzer loads the tokenizer. The encoding tables are fetched on first
// use and cached by the library.
func NewAnalyzer() (*Analyzer, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", encodingName, err)
	}
	return &Analyzer{encoding: enc}, nil
}

func (a *Analyzer) countTokens(text string) int {
	return len(a.encoding.Encode(text, nil, nil))
}

// exampleTokens returns prompt (system+user) and response (assistant) token
// counts for one example, including per-message framing overhead.
func (a *Analyzer) exampleTokens(ex Example) (prompt, response int) {
	for _, msg := range ex.Messages {
		n := a.countTokens(msg.Content) + a.countTokens(msg.Role) + tokensPerMessage
		if msg.Role == "assistant" {
			response += n
		} else {
			prompt += n
		}
	}
	prompt += tokensPerExample
	return prompt, response
}

// classifyQuery buckets an assistant target by shape: an aggregate pipeline,
// a find filter, or something unparseable. For aggregates the stage count is
// also returned.
func classifyQuery(content string) (kind string, stages int) {
	var query map[string]any
	if err := json.Unmarshal([]byte(content), &query); err != nil {
		return "other", 0
	}
	if _, ok := query["aggregate"]; ok {
		if pipeline, ok := query["pipeline"].([]any); ok {
			return "aggregate", len(pipeline)
		}
		return "aggregate", 0
	}
	return "find", 0
}

// Analyze computes the full dataset report.
func (a *Analyzer) Analyze(examples []Example) (*Report, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	promptCounts := make([]int, 0, len(examples))
	responseCounts := make([]int, 0, len(examples))
	totalCounts := make([]int, 0, len(examples))
	queryTypes := make(map[string]int)
	pipelineStages := make(map[int]int)

	overLimit := 0
	billable := 0

	for _, ex := range examples {
		prompt, response := a.exampleTokens(ex)
		total := prompt + response

		promptCounts = append(promptCounts, prompt)
		responseCounts = append(responseCounts, response)
		totalCounts = append(totalCounts, total)

		if total > maxBillableTokens {
			overLimit++
			billable += maxBillableTokens
		} else {
			billable += total
		}

		for _, msg := range ex.Messages {
			if msg.Role != "assistant" {
				continue
			}
			kind, stages := classifyQuery(msg.Content)
			queryTypes[kind]++
			if kind == "aggregate" {
				pipelineStages[stages]++
			}
		}
	}

	epochs := recommendEpochs(len(examples))

	return &Report{
		ExampleCount:      len(examples),
		PromptTokens:      distribution(promptCounts),
		ResponseTokens:    distribution(responseCounts),
		TotalTokens:       distribution(totalCounts),
		QueryTypes:        queryTypes,
		PipelineStages:    pipelineStages,
		OverLimit:         overLimit,
		BillableTokens:    billable,
		RecommendedEpochs: epochs,
		EstimatedTotal:    billable * epochs,
	}, nil
}

// recommendEpochs scales the epoch count for datasets outside the target
// range: small sets train more epochs so the model sees enough examples, huge
// sets train fewer to bound cost.
func recommendEpochs(n int) int {
	switch {
	case n < minTargetExamples:
		epochs := minTargetExamples / n
		if epochs > maxAllowedEpochs {
			epochs = maxAllowedEpochs
		}
		return epochs
	case n > maxTargetExamples:
		epochs := maxTargetExamples / n
		if epochs < minAllowedEpochs {
			epochs = minAllowedEpochs
		}
		return epochs
	default:
		return targetEpochs
	}
}

func distribution(counts []int) Distribution {
	sorted := make([]int, len(counts))
	copy(sorted, counts)
	sort.Ints(sorted)

	sum := 0
	for _, c := range sorted {
		sum += c
	}

	return Distribution{
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   float64(sum) / float64(len(sorted)),
		Median: quantile(sorted, 0.5),
		P5:     quantile(sorted, 0.05),
		P95:    quantile(sorted, 0.95),
	}
}

// quantile interpolates linearly between the two nearest ranks.
func quantile(sorted []int, q float64) float64 {
	if len(sorted) == 1 {
		return float64(sorted[0])
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return float64(sorted[lo])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo])*(1-frac) + float64(sorted[hi])*frac
}
