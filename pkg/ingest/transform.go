// Package ingest loads the procurement CSV into MongoDB. Rows are transformed
// into typed documents with snake_case field names before insertion, so the
// collection matches the schema the query prompts describe.
package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the formats observed in the export. The dataset mixes
// US-style slash dates with ISO dates depending on the column.
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"01/02/2006 15:04",
	"2006-01-02 15:04:05",
}

// parseFinite parses a cell as a finite float64. ParseFloat accepts "NaN" and
// "Inf" spellings, which must not leak into documents or int conversions, so
// those count as garbage too.
func parseFinite(cleaned string) (float64, bool) {
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CleanPrice strips currency formatting ("$1,234.56") and converts to float64.
// Garbage or blank values become 0 rather than failing the row.
func CleanPrice(raw string) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(raw, "$", ""), ",", ""))
	if cleaned == "" {
		return 0
	}
	v, ok := parseFinite(cleaned)
	if !ok {
		return 0
	}
	return v
}

// ParseDate parses a date cell into a time.Time. Returns the zero value and
// false for blank or unparseable cells; the caller stores nil for those so the
// field is queryable as missing rather than as a bogus epoch date.
func ParseDate(raw string) (time.Time, bool) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SafeInt converts a cell to int, tolerating float formatting ("123.0") and
// returning 0 for blanks and garbage.
func SafeInt(raw string) int {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0
	}
	f, ok := parseFinite(cleaned)
	if !ok {
		return 0
	}
	return int(f)
}

// SafeFloat converts a cell to float64, returning 0 for blanks and garbage.
func SafeFloat(raw string) float64 {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0
	}
	f, ok := parseFinite(cleaned)
	if !ok {
		return 0
	}
	return f
}

// SplitCodes splits the newline-separated classification codes cell into a
// slice, dropping blank entries.
func SplitCodes(raw string) []string {
	codes := []string{}
	for _, code := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(code); trimmed != "" {
			codes = append(codes, trimmed)
		}
	}
	return codes
}

// nullableDate returns the parsed date or nil, so missing dates are stored as
// BSON null instead of the zero time.
func nullableDate(raw string) any {
	if t, ok := ParseDate(raw); ok {
		return t
	}
	return nil
}

// TransformRow converts a CSV row (header name -> cell value) into the typed
// snake_case document inserted into MongoDB.
func TransformRow(row map[string]string) map[string]any {
	return map[string]any{
		// Date fields
		"creation_date": nullableDate(row["Creation Date"]),
		"purchase_date": nullableDate(row["Purchase Date"]),
		"fiscal_year":   row["Fiscal Year"],

		// Reference numbers
		"lpa_number":            row["LPA Number"],
		"purchase_order_number": row["Purchase Order Number"],
		"requisition_number":    row["Requisition Number"],

		// Acquisition info
		"acquisition_type":       row["Acquisition Type"],
		"sub_acquisition_type":   row["Sub-Acquisition Type"],
		"acquisition_method":     row["Acquisition Method"],
		"sub_acquisition_method": row["Sub-Acquisition Method"],

		// Organization info
		"department_name": row["Department Name"],
		"location":        row["Location"],

		// Supplier info
		"supplier_code":           SafeInt(row["Supplier Code"]),
		"supplier_name":           row["Supplier Name"],
		"supplier_qualifications": row["Supplier Qualifications"],
		"supplier_zip_code":       row["Supplier Zip Code"],
		"calcard":                 row["CalCard"],

		// Item details
		"item_name":        row["Item Name"],
		"item_description": row["Item Description"],
		"quantity":         SafeFloat(row["Quantity"]),
		"unit_price":       CleanPrice(row["Unit Price"]),
		"total_price":      CleanPrice(row["Total Price"]),

		// Classification
		"classification_codes": SplitCodes(row["Classification Codes"]),
		"normalized_unspsc":    row["Normalized UNSPSC"],
		"class":                row["Class"],
		"class_title":          row["Class Title"],
		"commodity_title":      row["Commodity Title"],
		"family":               row["Family"],
		"family_title":         row["Family Title"],
		"segment":              row["Segment"],
		"segment_title":        row["Segment Title"],
	}
}
