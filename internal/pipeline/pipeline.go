// Package pipeline drives raw rows through parse, canonicalize, fingerprint
// and dedup, handling per-row failures without aborting the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prospect-dedup/internal/address"
	"github.com/prospect-dedup/internal/geocode"
)

// Config wires the orchestrator. A nil Resolver disables external lookups:
// ambiguous rows then stay at partial confidence.
type Config struct {
	Resolver          geocode.Resolver
	Workers           int
	LookupConcurrency int
	LookupTimeout     time.Duration
}

// Pipeline is the batch orchestrator. Per-row work is pure and runs on a
// bounded worker pool; the external lookup is the only blocking boundary
// and goes through a shared concurrency gate.
type Pipeline struct {
	resolver      geocode.Resolver
	workers       int
	lookupGate    chan struct{}
	lookupTimeout time.Duration
}

// New creates a pipeline from config, applying defaults for unset limits
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.LookupConcurrency <= 0 {
		cfg.LookupConcurrency = 3
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 10 * time.Second
	}
	return &Pipeline{
		resolver:      cfg.Resolver,
		workers:       cfg.Workers,
		lookupGate:    make(chan struct{}, cfg.LookupConcurrency),
		lookupTimeout: cfg.LookupTimeout,
	}
}

// rowOutcome is the per-row result collected before the dedup barrier
type rowOutcome struct {
	ok     bool
	addr   address.CanonicalAddress
	failed FailedRow
}

// Run processes every row's address field through the engine and returns
// the deduplicated batch result. Rows that fail to parse are reported, not
// dropped. Dedup runs once, after every row (and its lookup) has finished.
// A cancelled context aborts the run without emitting a partial group set.
func (p *Pipeline) Run(ctx context.Context, rows []RawRecord, addressField string) (*BatchResult, error) {
	if addressField == "" {
		return nil, errors.New("pipeline: address field not configured")
	}

	started := time.Now()
	outcomes := make([]rowOutcome, len(rows))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = p.processRow(ctx, rows[i], addressField)
			}
		}()
	}

	for i := range rows {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Join barrier: dedup must see the complete canonicalized set
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var items []address.Item
	var failed []FailedRow
	for i, out := range outcomes {
		if out.ok {
			items = append(items, address.Item{Row: rows[i].Index, Addr: out.addr})
		} else {
			failed = append(failed, out.failed)
		}
	}
	sort.Slice(failed, func(a, b int) bool { return failed[a].Index < failed[b].Index })

	groups := address.Deduplicate(items)

	recordsByRow := make(map[int]RawRecord, len(rows))
	for _, row := range rows {
		recordsByRow[row.Index] = row
	}

	result := &BatchResult{
		BatchID:      uuid.NewString(),
		AddressField: addressField,
		Failed:       failed,
		StartedAt:    started,
		CompletedAt:  time.Now(),
	}
	for _, g := range groups {
		rep := g.Representative
		result.Representatives = append(result.Representatives, Representative{
			Record:       recordsByRow[rep.Row],
			Address:      rep.Addr,
			Confidence:   rep.Addr.Confidence.String(),
			Fingerprint:  string(g.Fingerprint),
			GroupSize:    g.Size(),
			AbsorbedRows: g.Rows(),
		})
	}

	result.Counts = Counts{
		Total:              len(rows),
		Parsed:             len(items),
		ParseFailed:        len(failed),
		UniqueAfterDedup:   len(groups),
		DuplicatesAbsorbed: len(items) - len(groups),
	}
	return result, nil
}

// processRow runs one row through parse and canonicalize, escalating to the
// external lookup when local rules leave the result ambiguous
func (p *Pipeline) processRow(ctx context.Context, row RawRecord, addressField string) rowOutcome {
	raw := row.Fields[addressField]

	if err := ctx.Err(); err != nil {
		return rowOutcome{failed: FailedRow{Index: row.Index, Reason: "cancelled", Raw: raw}}
	}

	parsed, err := address.Parse(raw)
	if err != nil {
		reason := address.ReasonUnrecognized
		var perr *address.ParseError
		if errors.As(err, &perr) {
			reason = perr.Reason
		}
		return rowOutcome{failed: FailedRow{Index: row.Index, Reason: reason, Raw: raw}}
	}

	canonical := address.Canonicalize(parsed)
	if canonical.Confidence == address.ConfidencePartial && p.resolver != nil {
		canonical = p.resolve(ctx, raw, parsed, canonical)
	}

	return rowOutcome{ok: true, addr: canonical}
}

// resolve consults the external lookup through the shared concurrency gate.
// A successful resolution merges the returned components and upgrades
// confidence to resolved; any failure keeps the local best-effort values at
// partial confidence. Lookup errors never propagate past this point.
func (p *Pipeline) resolve(ctx context.Context, raw string, parsed address.ParsedAddress, local address.CanonicalAddress) address.CanonicalAddress {
	select {
	case p.lookupGate <- struct{}{}:
		defer func() { <-p.lookupGate }()
	case <-ctx.Done():
		return local
	}

	lookupCtx, cancel := context.WithTimeout(ctx, p.lookupTimeout)
	defer cancel()

	result, err := p.resolver.Resolve(lookupCtx, raw)
	if err != nil {
		return local
	}

	merged := address.Canonicalize(mergeComponents(parsed, result.Components))
	merged.Confidence = address.ConfidenceResolved
	return merged
}

// mergeComponents fills the gaps in a locally parsed address with the
// components the lookup returned. Local values win when both are present,
// except a malformed local ZIP, which the resolved one replaces.
func mergeComponents(local, resolved address.ParsedAddress) address.ParsedAddress {
	merged := local
	if merged.HouseNumber == "" {
		merged.HouseNumber = resolved.HouseNumber
	}
	if merged.Street == "" {
		merged.Street = resolved.Street
	}
	if merged.City == "" {
		merged.City = resolved.City
	}
	if merged.State == "" {
		merged.State = resolved.State
	}
	if merged.Zip == "" || (resolved.Zip != "" && !validZip(merged.Zip)) {
		merged.Zip = resolved.Zip
	}
	return merged
}

// validZip checks the normalized ZIP format
func validZip(zip string) bool {
	return reZip.MatchString(zip)
}

var reZip = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// String renders a short human-readable batch summary
func (r *BatchResult) String() string {
	return fmt.Sprintf("batch %s: %d rows, %d parsed, %d failed, %d unique, %d duplicates absorbed",
		r.BatchID, r.Counts.Total, r.Counts.Parsed, r.Counts.ParseFailed,
		r.Counts.UniqueAfterDedup, r.Counts.DuplicatesAbsorbed)
}
