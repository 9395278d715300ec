package ingest

import (
	"strings"

	"github.com/prospect-dedup/internal/pipeline"
)

// ClassColumn is the export column carrying the property class code
const ClassColumn = "Property class"

// classDescriptions documents the valid property class codes
var classDescriptions = map[string]string{
	"CD": "Residential Condominium",
	"B9": "Mixed Residential & Commercial",
	"B2": "Office Buildings",
	"B3": "Industrial & Manufacturing",
	"C0": "Commercial Condominium",
	"B1": "Hotels & Apartments",
	"C1": "Walk-up Apartments",
	"A9": "Luxury Residential",
	"C2": "Elevator Apartments",
}

// DefaultClasses returns the full set of accepted property class codes
func DefaultClasses() []string {
	classes := make([]string, 0, len(classDescriptions))
	for code := range classDescriptions {
		classes = append(classes, code)
	}
	return classes
}

// ClassDescription returns the human-readable name for a class code
func ClassDescription(code string) string {
	if desc, ok := classDescriptions[StandardizeClass(code)]; ok {
		return desc
	}
	return "Unknown"
}

// StandardizeClass maps alternative spellings onto the canonical code.
// The exports write Commercial Condominium as either C0 or CO.
func StandardizeClass(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "CO" {
		return "C0"
	}
	return code
}

// ClassStats summarizes a property-class filter pass
type ClassStats struct {
	Total       int            `json:"total"`
	Kept        int            `json:"kept"`
	FilteredOut int            `json:"filtered_out"`
	ValidCounts map[string]int `json:"valid_counts"`
	OtherCounts map[string]int `json:"other_counts"`
}

// ClassFilter keeps only records whose property class is in the valid set
type ClassFilter struct {
	valid map[string]bool
}

// NewClassFilter builds a filter over the given class codes. An empty set
// means every record passes.
func NewClassFilter(classes []string) *ClassFilter {
	valid := make(map[string]bool, len(classes))
	for _, c := range classes {
		valid[StandardizeClass(c)] = true
	}
	return &ClassFilter{valid: valid}
}

// Apply filters records by property class and reports per-class counts.
// Records without a class column pass through untouched.
func (f *ClassFilter) Apply(records []pipeline.RawRecord) ([]pipeline.RawRecord, ClassStats) {
	stats := ClassStats{
		Total:       len(records),
		ValidCounts: make(map[string]int),
		OtherCounts: make(map[string]int),
	}

	if len(f.valid) == 0 {
		stats.Kept = len(records)
		return records, stats
	}

	var kept []pipeline.RawRecord
	for _, rec := range records {
		code, present := rec.Fields[ClassColumn]
		if !present {
			kept = append(kept, rec)
			stats.Kept++
			continue
		}
		code = StandardizeClass(code)
		rec.Fields[ClassColumn] = code

		if f.valid[code] {
			stats.ValidCounts[code]++
			kept = append(kept, rec)
			stats.Kept++
		} else {
			stats.OtherCounts[code]++
			stats.FilteredOut++
		}
	}
	return kept, stats
}
