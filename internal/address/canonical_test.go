package address

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   ParsedAddress
		want CanonicalAddress
	}{
		{
			name: "expands street type",
			in:   ParsedAddress{HouseNumber: "123", Street: "Main St"},
			want: CanonicalAddress{HouseNumber: "123", Street: "MAIN STREET", Confidence: ConfidenceExact},
		},
		{
			name: "already expanded",
			in:   ParsedAddress{HouseNumber: "123", Street: "MAIN STREET"},
			want: CanonicalAddress{HouseNumber: "123", Street: "MAIN STREET", Confidence: ConfidenceExact},
		},
		{
			name: "avenue and directional",
			in:   ParsedAddress{HouseNumber: "456", Street: "North Oak Ave"},
			want: CanonicalAddress{HouseNumber: "456", Street: "N OAK AVENUE", Confidence: ConfidenceExact},
		},
		{
			name: "strips punctuation keeps house hyphen",
			in:   ParsedAddress{HouseNumber: "123-A", Street: "St. Mark's Pl"},
			want: CanonicalAddress{HouseNumber: "123-A", Street: "STREET MARK S PLACE", Confidence: ConfidenceExact},
		},
		{
			name: "normalizes state name",
			in:   ParsedAddress{HouseNumber: "1", Street: "Elm Dr", City: "columbus", State: "ohio"},
			want: CanonicalAddress{HouseNumber: "1", Street: "ELM DRIVE", City: "COLUMBUS", State: "OH", Confidence: ConfidenceExact},
		},
		{
			name: "folds diacritics",
			in:   ParsedAddress{HouseNumber: "9", Street: "Peña Blvd"},
			want: CanonicalAddress{HouseNumber: "9", Street: "PENA BOULEVARD", Confidence: ConfidenceExact},
		},
		{
			name: "valid zip stays exact",
			in:   ParsedAddress{HouseNumber: "123", Street: "Main St", Zip: "62704"},
			want: CanonicalAddress{HouseNumber: "123", Street: "MAIN STREET", Zip: "62704", Confidence: ConfidenceExact},
		},
		{
			name: "malformed zip is partial",
			in:   ParsedAddress{HouseNumber: "123", Street: "Main St", Zip: "627"},
			want: CanonicalAddress{HouseNumber: "123", Street: "MAIN STREET", Zip: "627", Confidence: ConfidencePartial},
		},
		{
			name: "missing street is partial",
			in:   ParsedAddress{HouseNumber: "123"},
			want: CanonicalAddress{HouseNumber: "123", Confidence: ConfidencePartial},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.in)
			if got != tt.want {
				t.Errorf("Canonicalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeDeterministic(t *testing.T) {
	inputs := []string{
		"123 Main St",
		"456 N. Oak Ave, Springfield, IL 62704",
		"789 Pine Rd Apt 2, Austin TX",
	}

	for _, input := range inputs {
		parsed, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		first := Canonicalize(parsed)
		second := Canonicalize(parsed)
		if first != second {
			t.Errorf("Canonicalize(%q) not deterministic: %+v vs %+v", input, first, second)
		}
	}
}

func TestFieldCount(t *testing.T) {
	c := CanonicalAddress{HouseNumber: "123", Street: "MAIN STREET", Unit: "4B"}
	if got := c.FieldCount(); got != 3 {
		t.Errorf("FieldCount() = %d, want 3", got)
	}
	if got := (CanonicalAddress{}).FieldCount(); got != 0 {
		t.Errorf("FieldCount() on empty = %d, want 0", got)
	}
}
