package address

import "strings"

// Fingerprint is the dedup key derived from canonical address fields.
// Two canonical addresses with equal fingerprints are treated as the same
// physical property.
type Fingerprint string

// Fingerprint derives the dedup key: house number + street + ZIP, falling
// back to house number + street + city + state when no ZIP is present.
// Unit and suite are deliberately excluded - a unit distinguishes a
// sub-property inside a building, not a separate property.
func (c CanonicalAddress) Fingerprint() Fingerprint {
	if c.Zip != "" {
		return Fingerprint(strings.Join([]string{c.HouseNumber, c.Street, c.Zip}, "|"))
	}
	return Fingerprint(strings.Join([]string{c.HouseNumber, c.Street, c.City, c.State}, "|"))
}
