package address

import "fmt"

// Confidence classifies how an address was resolved
type Confidence int

const (
	// ConfidencePartial means normalization is incomplete and some fields keep raw values
	ConfidencePartial Confidence = iota
	// ConfidenceResolved means the address required an external lookup to normalize
	ConfidenceResolved
	// ConfidenceExact means the address was fully parsed and normalized locally
	ConfidenceExact
)

// String returns the confidence tag name
func (c Confidence) String() string {
	switch c {
	case ConfidenceExact:
		return "exact"
	case ConfidenceResolved:
		return "resolved"
	case ConfidencePartial:
		return "partial"
	}
	return "unknown"
}

// ParsedAddress holds the structured components of a raw address string.
// An empty field means the component could not be determined.
type ParsedAddress struct {
	HouseNumber string
	Street      string
	Unit        string
	City        string
	State       string
	Zip         string
}

// CanonicalAddress is a ParsedAddress after normalization rules have been applied
type CanonicalAddress struct {
	HouseNumber string     `json:"house_number,omitempty"`
	Street      string     `json:"street,omitempty"`
	Unit        string     `json:"unit,omitempty"`
	City        string     `json:"city,omitempty"`
	State       string     `json:"state,omitempty"`
	Zip         string     `json:"zip,omitempty"`
	Confidence  Confidence `json:"-"`
}

// FieldCount returns the number of populated address components.
// Used to rank completeness when selecting a dedup representative.
func (c CanonicalAddress) FieldCount() int {
	count := 0
	for _, f := range []string{c.HouseNumber, c.Street, c.Unit, c.City, c.State, c.Zip} {
		if f != "" {
			count++
		}
	}
	return count
}

// Line renders the address as a single display line
func (c CanonicalAddress) Line() string {
	s := c.HouseNumber
	if c.Street != "" {
		if s != "" {
			s += " "
		}
		s += c.Street
	}
	if c.Unit != "" {
		s += " UNIT " + c.Unit
	}
	if c.City != "" {
		s += ", " + c.City
	}
	if c.State != "" {
		s += ", " + c.State
	}
	if c.Zip != "" {
		s += " " + c.Zip
	}
	return s
}

// ReasonUnrecognized is the failure reason for inputs with no recoverable structure
const ReasonUnrecognized = "unrecognized format"

// ParseError reports an address string that could not be decomposed
type ParseError struct {
	Raw    string
	Reason string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %s", e.Raw, e.Reason)
}
