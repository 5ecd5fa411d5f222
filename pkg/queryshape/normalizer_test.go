package queryshape

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dtnitsch/procurement-nlq/pkg/schema"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(schema.FieldAliases)
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fiscalYear", "fiscal_year"},
		{"supplierZipCode", "supplier_zip_code"},
		{"totalPrice", "total_price"},
		{"location", "location"},
		{"already_snake", "already_snake"},
		{"quantity2", "quantity2"},
	}

	for _, tt := range tests {
		if got := ToSnakeCase(tt.in); got != tt.want {
			t.Errorf("ToSnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCorrectShape_BareSequence(t *testing.T) {
	n := newTestNormalizer()

	stage := map[string]any{"$match": map[string]any{"fiscal_year": "2013-2014"}}
	got, err := n.CorrectShape([]any{stage})
	if err != nil {
		t.Fatalf("CorrectShape() error = %v", err)
	}

	if got["aggregate"] != true {
		t.Errorf("aggregate = %v, want true", got["aggregate"])
	}
	pipeline, ok := got["pipeline"].([]any)
	if !ok || len(pipeline) != 1 {
		t.Fatalf("pipeline = %#v, want one-element sequence", got["pipeline"])
	}
	if !reflect.DeepEqual(pipeline[0], stage) {
		t.Errorf("pipeline[0] = %#v, want original stage", pipeline[0])
	}
}

func TestCorrectShape_StrayStage(t *testing.T) {
	n := newTestNormalizer()

	// Each stage operator on its own must trigger the single-stage wrap.
	for _, op := range []string{"$match", "$group", "$sort"} {
		stage := map[string]any{op: map[string]any{}}
		got, err := n.CorrectShape(stage)
		if err != nil {
			t.Fatalf("CorrectShape(%s stage) error = %v", op, err)
		}

		pipeline, ok := got["pipeline"].([]any)
		if !ok {
			t.Fatalf("CorrectShape(%s stage) produced no pipeline: %#v", op, got)
		}
		if len(pipeline) != 1 || !reflect.DeepEqual(pipeline[0], stage) {
			t.Errorf("CorrectShape(%s stage) pipeline = %#v, want [stage]", op, pipeline)
		}
	}
}

func TestCorrectShape_AlreadyWrapped(t *testing.T) {
	n := newTestNormalizer()

	query := map[string]any{
		"aggregate": true,
		"pipeline":  []any{map[string]any{"$limit": float64(5)}},
	}
	got, err := n.CorrectShape(query)
	if err != nil {
		t.Fatalf("CorrectShape() error = %v", err)
	}
	if !reflect.DeepEqual(got, query) {
		t.Errorf("CorrectShape() = %#v, want unchanged input", got)
	}
}

func TestCorrectShape_FindCandidate(t *testing.T) {
	n := newTestNormalizer()

	query := map[string]any{"department_name": "Water Resources"}
	got, err := n.CorrectShape(query)
	if err != nil {
		t.Fatalf("CorrectShape() error = %v", err)
	}
	if !reflect.DeepEqual(got, query) {
		t.Errorf("CorrectShape() = %#v, want unchanged input", got)
	}
}

func TestCorrectShape_RejectsScalars(t *testing.T) {
	n := newTestNormalizer()

	for _, payload := range []any{"just a string", float64(42), true, nil} {
		if _, err := n.CorrectShape(payload); !errors.Is(err, ErrInvalidQueryFormat) {
			t.Errorf("CorrectShape(%#v) error = %v, want ErrInvalidQueryFormat", payload, err)
		}
	}
}

func TestNormalizeFieldNames_AliasTakesPrecedence(t *testing.T) {
	n := newTestNormalizer()

	got := n.NormalizeFieldNames(map[string]any{"supplierCode": float64(1)}).(map[string]any)
	if _, ok := got["supplier_code"]; !ok {
		t.Errorf("supplierCode not renamed via alias table: %#v", got)
	}
}

func TestNormalizeFieldNames_GenericFallback(t *testing.T) {
	n := newTestNormalizer()

	// notInTheTable is not a schema field; the generic conversion applies.
	got := n.NormalizeFieldNames(map[string]any{"notInTheTable": "x"}).(map[string]any)
	if _, ok := got["not_in_the_table"]; !ok {
		t.Errorf("generic conversion missing: %#v", got)
	}
}

func TestNormalizeFieldNames_OperatorKeysPreserved(t *testing.T) {
	n := newTestNormalizer()

	query := map[string]any{
		"$match": map[string]any{
			"totalPrice": map[string]any{"$gt": float64(10000)},
		},
	}
	got := n.NormalizeFieldNames(query).(map[string]any)

	match, ok := got["$match"].(map[string]any)
	if !ok {
		t.Fatalf("$match key lost: %#v", got)
	}
	cond, ok := match["total_price"].(map[string]any)
	if !ok {
		t.Fatalf("totalPrice not renamed inside $match: %#v", match)
	}
	if _, ok := cond["$gt"]; !ok {
		t.Errorf("$gt operator lost: %#v", cond)
	}
}

func TestNormalizeFieldNames_FieldReferenceValues(t *testing.T) {
	n := newTestNormalizer()

	got := n.NormalizeFieldNames("$departmentName")
	if got != "$department_name" {
		t.Errorf("field reference = %v, want $department_name", got)
	}

	// Plain strings are untouched even when they contain uppercase letters.
	if got := n.NormalizeFieldNames("Water Resources"); got != "Water Resources" {
		t.Errorf("ordinary string changed: %v", got)
	}
}

func TestNormalizeFieldNames_Idempotent(t *testing.T) {
	n := newTestNormalizer()

	query := map[string]any{
		"$group": map[string]any{
			"_id":   "$departmentName",
			"total": map[string]any{"$sum": "$totalPrice"},
		},
		"fiscalYear": "2013-2014",
		"codes":      []any{"$supplierCode", float64(7), true, nil},
	}

	once := n.NormalizeFieldNames(query)
	twice := n.NormalizeFieldNames(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second pass changed the tree:\nonce:  %#v\ntwice: %#v", once, twice)
	}
}

func TestNormalizeFieldNames_SequenceOrderPreserved(t *testing.T) {
	n := newTestNormalizer()

	seq := []any{"$unitPrice", "$totalPrice", "plain"}
	got := n.NormalizeFieldNames(seq).([]any)

	want := []any{"$unit_price", "$total_price", "plain"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sequence = %#v, want %#v", got, want)
	}
}

func TestValidateShape(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name    string
		payload any
		want    bool
	}{
		{
			name:    "find filter always valid",
			payload: map[string]any{"department_name": "Water Resources"},
			want:    true,
		},
		{
			name:    "empty find filter valid",
			payload: map[string]any{},
			want:    true,
		},
		{
			name: "well-formed aggregate",
			payload: map[string]any{
				"aggregate": true,
				"pipeline":  []any{},
			},
			want: true,
		},
		{
			name: "aggregate false with pipeline still well-formed",
			payload: map[string]any{
				"aggregate": false,
				"pipeline":  []any{},
			},
			want: true,
		},
		{
			name:    "aggregate value not boolean",
			payload: map[string]any{"aggregate": "yes", "pipeline": []any{}},
			want:    false,
		},
		{
			name:    "aggregate without pipeline",
			payload: map[string]any{"aggregate": true},
			want:    false,
		},
		{
			name:    "pipeline not a sequence",
			payload: map[string]any{"aggregate": true, "pipeline": map[string]any{}},
			want:    false,
		},
		{
			name:    "non-map payload",
			payload: []any{},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.ValidateShape(tt.payload); got != tt.want {
				t.Errorf("ValidateShape() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize_SingleStageWrapping(t *testing.T) {
	n := newTestNormalizer()

	raw := map[string]any{
		"$group": map[string]any{
			"_id":   "$departmentName",
			"total": map[string]any{"$sum": "$totalPrice"},
		},
	}
	got, err := n.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := map[string]any{
		"aggregate": true,
		"pipeline": []any{
			map[string]any{
				"$group": map[string]any{
					"_id":   "$department_name",
					"total": map[string]any{"$sum": "$total_price"},
				},
			},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %#v\nwant %#v", got, want)
	}
}

func TestNormalize_PassThroughFind(t *testing.T) {
	n := newTestNormalizer()

	got, err := n.Normalize(map[string]any{"departmentName": "Water Resources"})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := map[string]any{"department_name": "Water Resources"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %#v, want %#v", got, want)
	}
}

func TestNormalize_BareSequence(t *testing.T) {
	n := newTestNormalizer()

	raw := []any{map[string]any{"$match": map[string]any{"fiscalYear": "2014-2015"}}}
	got, err := n.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := map[string]any{
		"aggregate": true,
		"pipeline": []any{
			map[string]any{"$match": map[string]any{"fiscal_year": "2014-2015"}},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %#v, want %#v", got, want)
	}
}

func TestNormalize_RejectsMalformedAggregate(t *testing.T) {
	n := newTestNormalizer()

	_, err := n.Normalize(map[string]any{"aggregate": "yes", "pipeline": []any{}})
	if !errors.Is(err, ErrInvalidQueryStructure) {
		t.Errorf("Normalize() error = %v, want ErrInvalidQueryStructure", err)
	}
}

func TestNormalize_RejectsScalar(t *testing.T) {
	n := newTestNormalizer()

	_, err := n.Normalize("just a string")
	if !errors.Is(err, ErrInvalidQueryFormat) {
		t.Errorf("Normalize() error = %v, want ErrInvalidQueryFormat", err)
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	n := newTestNormalizer()

	raw := map[string]any{"departmentName": "Water Resources"}
	if _, err := n.Normalize(raw); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if _, ok := raw["departmentName"]; !ok {
		t.Errorf("input tree mutated: %#v", raw)
	}
}
