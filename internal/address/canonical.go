package address

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// abbrevRule rewrites one token form to its canonical form
type abbrevRule struct {
	re   *regexp.Regexp
	repl string
}

// Street-type abbreviations expand to full words; directionals contract to
// single letters. Applied in order so the result is deterministic.
var streetRules = []abbrevRule{
	{regexp.MustCompile(`\bST\b`), "STREET"},
	{regexp.MustCompile(`\bAVE\b`), "AVENUE"},
	{regexp.MustCompile(`\bAV\b`), "AVENUE"},
	{regexp.MustCompile(`\bBLVD\b`), "BOULEVARD"},
	{regexp.MustCompile(`\bRD\b`), "ROAD"},
	{regexp.MustCompile(`\bDR\b`), "DRIVE"},
	{regexp.MustCompile(`\bLN\b`), "LANE"},
	{regexp.MustCompile(`\bCT\b`), "COURT"},
	{regexp.MustCompile(`\bPL\b`), "PLACE"},
	{regexp.MustCompile(`\bSQ\b`), "SQUARE"},
	{regexp.MustCompile(`\bTER\b`), "TERRACE"},
	{regexp.MustCompile(`\bCIR\b`), "CIRCLE"},
	{regexp.MustCompile(`\bPKWY\b`), "PARKWAY"},
	{regexp.MustCompile(`\bHWY\b`), "HIGHWAY"},
	{regexp.MustCompile(`\bTRL\b`), "TRAIL"},
	{regexp.MustCompile(`\bALY\b`), "ALLEY"},
	{regexp.MustCompile(`\bEXPY\b`), "EXPRESSWAY"},
	{regexp.MustCompile(`\bPLZ\b`), "PLAZA"},
	{regexp.MustCompile(`\bNORTH\b`), "N"},
	{regexp.MustCompile(`\bSOUTH\b`), "S"},
	{regexp.MustCompile(`\bEAST\b`), "E"},
	{regexp.MustCompile(`\bWEST\b`), "W"},
	{regexp.MustCompile(`\bNORTHEAST\b`), "NE"},
	{regexp.MustCompile(`\bNORTHWEST\b`), "NW"},
	{regexp.MustCompile(`\bSOUTHEAST\b`), "SE"},
	{regexp.MustCompile(`\bSOUTHWEST\b`), "SW"},
}

// reZipStrict validates a normalized postal code
var reZipStrict = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// diacriticFolder strips combining marks so accented input compares equal
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Canonicalize applies normalization rules to every component of a parsed
// address: whitespace collapse, uppercasing, diacritic folding, punctuation
// removal (hyphens survive in house numbers and units), street-type
// abbreviation expansion and state contraction to its two-letter code.
// The result is tagged ConfidenceExact when the street is known and the ZIP
// (if any) is well formed, otherwise ConfidencePartial - the caller decides
// whether to escalate partial results to the external lookup.
func Canonicalize(p ParsedAddress) CanonicalAddress {
	c := CanonicalAddress{
		HouseNumber: cleanComponent(p.HouseNumber, true),
		Street:      expandStreet(cleanComponent(p.Street, false)),
		Unit:        cleanComponent(p.Unit, true),
		City:        cleanComponent(p.City, false),
		State:       NormalizeState(cleanComponent(p.State, false)),
		Zip:         cleanComponent(p.Zip, true),
	}

	c.Confidence = ConfidenceExact
	if c.Street == "" {
		c.Confidence = ConfidencePartial
	}
	if c.Zip != "" && !reZipStrict.MatchString(c.Zip) {
		c.Confidence = ConfidencePartial
	}
	return c
}

// cleanComponent trims, folds diacritics, uppercases and strips punctuation.
// keepHyphen preserves hyphens for house numbers, units and ZIP+4 values.
func cleanComponent(s string, keepHyphen bool) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(diacriticFolder, s); err == nil {
		s = folded
	}
	s = strings.ToUpper(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		case r == '-' && keepHyphen:
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// expandStreet applies the abbreviation rules to a cleaned street name
func expandStreet(s string) string {
	for _, rule := range streetRules {
		s = rule.re.ReplaceAllString(s, rule.repl)
	}
	return s
}
