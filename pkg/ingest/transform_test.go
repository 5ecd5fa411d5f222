package ingest

import (
	"reflect"
	"testing"
	"time"
)

func TestCleanPrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$1,234.56", 1234.56},
		{"1234.56", 1234.56},
		{"$0.99", 0.99},
		{" $12 ", 12},
		{"", 0},
		{"N/A", 0},
		// ParseFloat recognizes these; they are still garbage cells.
		{"NaN", 0},
		{"Inf", 0},
		{"-Inf", 0},
	}

	for _, tt := range tests {
		if got := CleanPrice(tt.in); got != tt.want {
			t.Errorf("CleanPrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("06/30/2014")
	if !ok {
		t.Fatal("ParseDate(06/30/2014) not recognized")
	}
	want := time.Date(2014, 6, 30, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate() = %v, want %v", got, want)
	}

	if _, ok := ParseDate(""); ok {
		t.Error("ParseDate(empty) should not parse")
	}
	if _, ok := ParseDate("not a date"); ok {
		t.Error("ParseDate(garbage) should not parse")
	}
}

func TestSafeInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1741", 1741},
		{"1741.0", 1741},
		{"", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"+Inf", 0},
		{"-Inf", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		if got := SafeInt(tt.in); got != tt.want {
			t.Errorf("SafeInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSafeFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"3", 3},
		{"2.5", 2.5},
		{"", 0},
		{"NaN", 0},
		{"Infinity", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		if got := SafeFloat(tt.in); got != tt.want {
			t.Errorf("SafeFloat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSplitCodes(t *testing.T) {
	got := SplitCodes("44120000\n 44121700 \n\n")
	want := []string{"44120000", "44121700"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitCodes() = %#v, want %#v", got, want)
	}

	if got := SplitCodes(""); len(got) != 0 {
		t.Errorf("SplitCodes(empty) = %#v, want empty", got)
	}
}

func TestTransformRow(t *testing.T) {
	row := map[string]string{
		"Creation Date":        "06/30/2014",
		"Purchase Date":        "",
		"Fiscal Year":          "2013-2014",
		"Department Name":      "Water Resources",
		"Supplier Code":        "1741.0",
		"Supplier Name":        "ACME SUPPLY CO",
		"Quantity":             "3",
		"Unit Price":           "$12.50",
		"Total Price":          "$37.50",
		"Classification Codes": "44120000\n44121700",
	}

	doc := TransformRow(row)

	if doc["fiscal_year"] != "2013-2014" {
		t.Errorf("fiscal_year = %v", doc["fiscal_year"])
	}
	if doc["department_name"] != "Water Resources" {
		t.Errorf("department_name = %v", doc["department_name"])
	}
	if doc["supplier_code"] != 1741 {
		t.Errorf("supplier_code = %v, want 1741", doc["supplier_code"])
	}
	if doc["unit_price"] != 12.5 {
		t.Errorf("unit_price = %v, want 12.5", doc["unit_price"])
	}
	if doc["total_price"] != 37.5 {
		t.Errorf("total_price = %v, want 37.5", doc["total_price"])
	}
	if doc["purchase_date"] != nil {
		t.Errorf("purchase_date = %v, want nil for blank cell", doc["purchase_date"])
	}
	if _, ok := doc["creation_date"].(time.Time); !ok {
		t.Errorf("creation_date = %T, want time.Time", doc["creation_date"])
	}

	codes, ok := doc["classification_codes"].([]string)
	if !ok || len(codes) != 2 {
		t.Errorf("classification_codes = %#v, want two codes", doc["classification_codes"])
	}

	// Every key must already be snake_case; the query side depends on it.
	for key := range doc {
		for _, r := range key {
			if r >= 'A' && r <= 'Z' {
				t.Errorf("document key %q is not snake_case", key)
			}
		}
	}
}
