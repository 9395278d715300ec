// Package geocode talks to the external geocoding lookup service used to
// resolve addresses that local normalization rules cannot settle. The
// service is rate limited, slow and unreliable; every failure surfaces as a
// LookupError and never as a panic or a fatal condition.
package geocode

import (
	"context"
	"errors"
	"fmt"

	"github.com/prospect-dedup/internal/address"
)

// ErrMissingUserAgent means no identifying client string was configured.
// The lookup service's usage policy requires one, so this is a startup
// failure rather than a per-request one.
var ErrMissingUserAgent = errors.New("geocode: identifying user agent not configured")

// ErrNoMatch means the service answered but found nothing for the query
var ErrNoMatch = errors.New("geocode: no match")

// Result holds the structured components returned by the lookup service
type Result struct {
	Components  address.ParsedAddress `json:"components"`
	DisplayName string                `json:"display_name,omitempty"`
}

// Resolver is the capability interface for the external lookup. Tests
// substitute a deterministic fake; production wiring injects the Nominatim
// client, usually wrapped in a CachedResolver.
type Resolver interface {
	Resolve(ctx context.Context, query string) (*Result, error)
}

// LookupError wraps a failed lookup with the query that caused it
type LookupError struct {
	Query string
	Err   error
}

// Error implements the error interface
func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %q: %v", e.Query, e.Err)
}

// Unwrap exposes the underlying cause
func (e *LookupError) Unwrap() error {
	return e.Err
}
