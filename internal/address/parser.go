package address

import (
	"regexp"
	"strings"
)

// Trailing 5 or 5+4 digit ZIP code
var reZip = regexp.MustCompile(`\b(\d{5}(?:-\d{4})?)\s*$`)

// Leading house number, optionally with a letter or hyphenated suffix (123, 123A, 123-A)
var reHouseNumber = regexp.MustCompile(`^(\d+[A-Za-z]?(?:-[0-9A-Za-z]+)?)\b`)

// Unit markers: Apt 4B, Unit 12, Suite 300, Ste 5, Flat 2, #4B
var reUnit = regexp.MustCompile(`(?i)(?:\b(?:APT|APARTMENT|UNIT|SUITE|STE|FLAT)\b\.?\s*#?\s*|#\s*)([0-9A-Za-z-]+)`)

// streetTypeTokens identify the end of a street name in unsegmented input
var streetTypeTokens = map[string]bool{
	"ST": true, "STREET": true,
	"AVE": true, "AVENUE": true,
	"BLVD": true, "BOULEVARD": true,
	"RD": true, "ROAD": true,
	"DR": true, "DRIVE": true,
	"LN": true, "LANE": true,
	"CT": true, "COURT": true,
	"PL": true, "PLACE": true,
	"SQ": true, "SQUARE": true,
	"TER": true, "TERRACE": true,
	"CIR": true, "CIRCLE": true,
	"WAY": true, "PKWY": true, "PARKWAY": true,
	"HWY": true, "HIGHWAY": true,
	"TRL": true, "TRAIL": true,
	"ALY": true, "ALLEY": true,
	"EXPY": true, "EXPRESSWAY": true,
	"LOOP": true, "PLAZA": true, "PLZ": true,
}

// Parse decomposes a free-text address string into structured components.
// Rules apply in priority order: trailing ZIP, unit marker, leading house
// number, state/city from comma segments, remaining tokens as street.
// Fields that cannot be determined are left empty; Parse fails only when
// neither a house number nor a street-type token can be identified.
func Parse(raw string) (ParsedAddress, error) {
	var p ParsedAddress

	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return p, &ParseError{Raw: raw, Reason: ReasonUnrecognized}
	}

	// ZIP comes off the end first
	if m := reZip.FindStringSubmatch(s); m != nil {
		p.Zip = m[1]
		s = strings.TrimSpace(strings.TrimSuffix(s, m[0]))
		s = strings.TrimRight(s, ", ")
	}

	segs := splitSegments(s)
	if len(segs) == 0 {
		return p, &ParseError{Raw: raw, Reason: ReasonUnrecognized}
	}

	streetPart := segs[0]

	// State and city come from the trailing segments, rightmost first
	for i := len(segs) - 1; i >= 1; i-- {
		toks := strings.Fields(segs[i])
		if len(toks) == 0 {
			continue
		}
		if p.State == "" {
			if st := NormalizeState(segs[i]); st != "" {
				p.State = st
				continue
			}
			if st := NormalizeState(toks[len(toks)-1]); st != "" {
				p.State = st
				toks = toks[:len(toks)-1]
			}
		}
		if len(toks) > 0 && p.City == "" {
			p.City = strings.Join(toks, " ")
		}
	}

	// Unit marker anywhere in the street segment
	if m := reUnit.FindStringSubmatch(streetPart); m != nil {
		p.Unit = m[1]
		streetPart = strings.TrimSpace(strings.Replace(streetPart, m[0], " ", 1))
		streetPart = strings.Join(strings.Fields(streetPart), " ")
	}

	// Leading house number
	if m := reHouseNumber.FindStringSubmatch(streetPart); m != nil {
		p.HouseNumber = m[1]
		streetPart = strings.TrimSpace(streetPart[len(m[0]):])
	}

	p.Street = streetPart

	// Unsegmented input can still carry state and city after the street
	// type token: "123 Main St Springfield IL"
	if len(segs) == 1 && p.Street != "" {
		toks := strings.Fields(p.Street)
		if p.State == "" && len(toks) > 1 {
			if st := NormalizeState(toks[len(toks)-1]); st != "" {
				p.State = st
				toks = toks[:len(toks)-1]
			}
		}
		if idx := lastStreetTypeIndex(toks); idx >= 0 && idx < len(toks)-1 {
			if p.City == "" {
				p.City = strings.Join(toks[idx+1:], " ")
			}
			toks = toks[:idx+1]
		}
		p.Street = strings.Join(toks, " ")
	}

	if p.HouseNumber == "" && !hasStreetType(p.Street) {
		return ParsedAddress{}, &ParseError{Raw: raw, Reason: ReasonUnrecognized}
	}
	if p == (ParsedAddress{}) {
		return ParsedAddress{}, &ParseError{Raw: raw, Reason: ReasonUnrecognized}
	}

	return p, nil
}

// splitSegments splits on commas and drops empty segments
func splitSegments(s string) []string {
	var segs []string
	for _, seg := range strings.Split(s, ",") {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}

// lastStreetTypeIndex returns the index of the last street-type token, -1 if none
func lastStreetTypeIndex(toks []string) int {
	for i := len(toks) - 1; i >= 0; i-- {
		if streetTypeTokens[strings.ToUpper(strings.Trim(toks[i], "."))] {
			return i
		}
	}
	return -1
}

// hasStreetType reports whether any token names a street type
func hasStreetType(s string) bool {
	return lastStreetTypeIndex(strings.Fields(s)) >= 0
}
