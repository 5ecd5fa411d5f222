// Package queryshape corrects and validates LLM-generated MongoDB query payloads.
//
// Model output is parsed JSON, but its shape is only mostly right: sometimes the
// model emits a bare pipeline array, sometimes a single pipeline stage without the
// aggregate wrapper, and field names drift into camelCase. This package repairs
// those payloads into one of the two shapes the query runner accepts:
//
//	find:      {"department_name": "Water Resources"}
//	aggregate: {"aggregate": true, "pipeline": [ ...stages... ]}
//
// All transforms are pure and all-or-nothing per call. A Normalizer holds no
// mutable state and is safe for concurrent use.
package queryshape

import (
	"errors"
	"regexp"
	"strings"
)

// operatorSigil marks MongoDB operator keys ($match, $sum, ...) and field
// reference values ("$department_name"). Operator keys are never renamed.
const operatorSigil = "$"

var (
	// ErrInvalidQueryFormat is returned when the raw payload is neither a map
	// nor a sequence (e.g. the model returned a bare string or number).
	ErrInvalidQueryFormat = errors.New("query format not recognized")

	// ErrInvalidQueryStructure is returned when a payload still fails shape
	// validation after correction and field renaming.
	ErrInvalidQueryStructure = errors.New("invalid query structure after fixes")
)

// stageOperators are the pipeline-stage keys that identify a stray single stage.
// A map containing any of these at its top level is a pipeline stage the model
// forgot to wrap, not a find filter.
var stageOperators = []string{"$match", "$group", "$sort"}

// Mirrors the two-pass camelCase split: first break "xYz" word runs, then any
// remaining lower/digit-to-upper boundary.
var (
	camelWordRun  = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// ToSnakeCase converts a camelCase identifier to snake_case. Used as the
// fallback when a field name has no entry in the alias table.
func ToSnakeCase(name string) string {
	s := camelWordRun.ReplaceAllString(name, "${1}_${2}")
	s = camelBoundary.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// Normalizer rewrites raw query payloads into schema-conformant ones.
// The alias table maps known non-canonical spellings (usually camelCase) to
// the canonical snake_case field names; it is injected so the normalizer has
// no dependency on any particular schema.
type Normalizer struct {
	aliases map[string]string
}

// NewNormalizer returns a Normalizer using the given alternate-name table.
// A nil table is allowed; every field name then falls through to the generic
// camelCase conversion.
func NewNormalizer(aliases map[string]string) *Normalizer {
	return &Normalizer{aliases: aliases}
}

// resolveName maps a field name to its canonical form: alias table first,
// generic conversion otherwise. Table entries win even when the generic
// conversion would produce a different result.
func (n *Normalizer) resolveName(name string) string {
	if canonical, ok := n.aliases[name]; ok {
		return canonical
	}
	return ToSnakeCase(name)
}

// CorrectShape coerces the top level of a raw payload into one of the two
// recognized query shapes. Checks run in order, first match wins:
//
//  1. a bare sequence becomes an aggregate wrapper around it
//  2. a map holding a pipeline-stage operator becomes a single-stage pipeline
//  3. a map already holding aggregate+pipeline passes through
//  4. any other map passes through as a find-filter candidate
//
// Anything else (scalars, null) fails with ErrInvalidQueryFormat.
func (n *Normalizer) CorrectShape(payload any) (map[string]any, error) {
	switch node := payload.(type) {
	case []any:
		return map[string]any{"aggregate": true, "pipeline": node}, nil
	case map[string]any:
		for _, op := range stageOperators {
			if _, ok := node[op]; ok {
				return map[string]any{"aggregate": true, "pipeline": []any{node}}, nil
			}
		}
		// Already wrapped, or a plain find filter. Both pass through unchanged.
		return node, nil
	default:
		return nil, ErrInvalidQueryFormat
	}
}

// NormalizeFieldNames recursively renames map keys to canonical snake_case.
// The walk is a pattern match over the four JSON node kinds:
//
//   - maps: each non-operator key is renamed, values recurse
//   - sequences: elements recurse, order preserved
//   - strings: field references ("$fooBar") have the name after the sigil
//     renamed and the sigil reattached; ordinary strings pass through
//   - other scalars: pass through untouched
//
// The input tree is never mutated; a fresh tree is returned.
func (n *Normalizer) NormalizeFieldNames(payload any) any {
	switch node := payload.(type) {
	case map[string]any:
		out := make(map[string]any, len(node))
		for key, value := range node {
			if !strings.HasPrefix(key, operatorSigil) {
				key = n.resolveName(key)
			}
			out[key] = n.NormalizeFieldNames(value)
		}
		return out
	case []any:
		out := make([]any, len(node))
		for i, elem := range node {
			out[i] = n.NormalizeFieldNames(elem)
		}
		return out
	case string:
		if ref, ok := strings.CutPrefix(node, operatorSigil); ok {
			return operatorSigil + n.resolveName(ref)
		}
		return node
	default:
		return payload
	}
}

// ValidateShape reports whether a corrected payload matches a recognized query
// shape. Aggregate payloads must carry a boolean "aggregate" and a sequence
// "pipeline". Maps without an "aggregate" key are accepted unconditionally as
// find filters: malformed operator nesting inside a find filter is only caught
// at execution time. That asymmetry is intentional; tightening it would reject
// queries the runner previously accepted.
func (n *Normalizer) ValidateShape(payload any) bool {
	query, ok := payload.(map[string]any)
	if !ok {
		return false
	}

	if agg, present := query["aggregate"]; present {
		if _, isBool := agg.(bool); !isBool {
			return false
		}
		pipeline, present := query["pipeline"]
		if !present {
			return false
		}
		_, isSeq := pipeline.([]any)
		return isSeq
	}

	return true
}

// Normalize is the sanctioned entry point: shape correction, field renaming,
// then final validation. The three steps are not independently safe to skip.
// Returns ErrInvalidQueryFormat for unrecognizable input and
// ErrInvalidQueryStructure when the repaired payload still fails validation.
func (n *Normalizer) Normalize(payload any) (map[string]any, error) {
	corrected, err := n.CorrectShape(payload)
	if err != nil {
		return nil, err
	}

	renamed := n.NormalizeFieldNames(corrected).(map[string]any)

	if !n.ValidateShape(renamed) {
		return nil, ErrInvalidQueryStructure
	}
	return renamed, nil
}
