package training

import (
	"math"
	"testing"
)

func TestClassifyQuery(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantKind   string
		wantStages int
	}{
		{
			"find query",
			`{"department_name": "Department of Water Resources"}`,
			"find", 0,
		},
		{
			"aggregate with three stages",
			`{"aggregate": true, "pipeline": [{"$match": {}}, {"$group": {}}, {"$sort": {}}]}`,
			"aggregate", 3,
		},
		{
			"aggregate missing pipeline",
			`{"aggregate": true}`,
			"aggregate", 0,
		},
		{
			"not JSON",
			`the query would be db.find(...)`,
			"other", 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, stages := classifyQuery(tt.content)
			if kind != tt.wantKind || stages != tt.wantStages {
				t.Errorf("classifyQuery() = %s/%d, want %s/%d", kind, stages, tt.wantKind, tt.wantStages)
			}
		})
	}
}

func TestRecommendEpochs(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{500, 3},   // in range, default holds
		{10000, 3}, // still in range, even though 3 epochs exceeds 25000 examples
		{50, 2},    // under 100 examples, scale up to 100/50
		{10, 10},   // scale up to 100/10
		{2, 25},    // scaling up is capped at 25
		{30000, 1}, // over 25000 examples, 25000/30000 floors to the minimum
		{50000, 1}, // scaling down never goes below 1
	}

	for _, tt := range tests {
		if got := recommendEpochs(tt.n); got != tt.want {
			t.Errorf("recommendEpochs(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestDistribution(t *testing.T) {
	d := distribution([]int{10, 20, 30, 40, 50})

	if d.Min != 10 || d.Max != 50 {
		t.Errorf("min/max = %d/%d, want 10/50", d.Min, d.Max)
	}
	if d.Mean != 30 {
		t.Errorf("mean = %v, want 30", d.Mean)
	}
	if d.Median != 30 {
		t.Errorf("median = %v, want 30", d.Median)
	}
	// p95 over 5 points interpolates between the two largest values.
	if math.Abs(d.P95-48) > 1e-9 {
		t.Errorf("p95 = %v, want 48", d.P95)
	}
}
