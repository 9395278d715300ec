package pipeline

import (
	"time"

	"github.com/prospect-dedup/internal/address"
)

// RawRecord is one ingested row: the original column values plus a stable
// row index used for traceability and error reporting.
type RawRecord struct {
	Index  int               `json:"index"`
	Fields map[string]string `json:"fields"`
}

// FailedRow records a row the engine could not process, with the original
// row index and the failure reason
type FailedRow struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
	Raw    string `json:"raw"`
}

// Representative is the single record chosen to stand for a dedup group
type Representative struct {
	Record       RawRecord                `json:"record"`
	Address      address.CanonicalAddress `json:"address"`
	Confidence   string                   `json:"confidence"`
	Fingerprint  string                   `json:"fingerprint"`
	GroupSize    int                      `json:"group_size"`
	AbsorbedRows []int                    `json:"absorbed_rows"`
}

// Counts aggregates per-batch statistics
type Counts struct {
	Total              int `json:"total"`
	Parsed             int `json:"parsed"`
	ParseFailed        int `json:"parse_failed"`
	UniqueAfterDedup   int `json:"unique_after_dedup"`
	DuplicatesAbsorbed int `json:"duplicates_absorbed"`
}

// BatchResult is the engine's output for one batch run. It is created
// fresh per run and never mutated after the orchestrator returns it.
type BatchResult struct {
	BatchID         string           `json:"batch_id"`
	AddressField    string           `json:"address_field"`
	Representatives []Representative `json:"representatives"`
	Failed          []FailedRow      `json:"failed_rows"`
	Counts          Counts           `json:"counts"`
	StartedAt       time.Time        `json:"started_at"`
	CompletedAt     time.Time        `json:"completed_at"`
}
