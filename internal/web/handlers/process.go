package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prospect-dedup/internal/ingest"
	"github.com/prospect-dedup/internal/pipeline"
	"github.com/prospect-dedup/internal/store"
)

// ProcessHandler accepts a prospect export upload, runs it through the
// engine and returns the batch result
type ProcessHandler struct {
	Pipeline       *pipeline.Pipeline
	Store          *store.Store
	MaxUploadBytes int64
}

// ProcessResponse is the JSON body returned for a processed upload
type ProcessResponse struct {
	Batch      *pipeline.BatchResult `json:"batch"`
	ClassStats *ingest.ClassStats    `json:"class_stats,omitempty"`
	Stored     bool                  `json:"stored"`
}

// ProcessUpload handles POST /api/process. Form fields: "file" (the CSV or
// XLSX export), optional "address_column", optional "store" ("true" to
// persist the result), optional "filter_classes" ("false" to skip the
// property-class filter).
func (h *ProcessHandler) ProcessUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		http.Error(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// The readers work on paths, so spool the upload to a temp file
	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		http.Error(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		http.Error(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	tmp.Close()

	records, columns, err := ingest.ReadFile(tmp.Name())
	if err != nil {
		http.Error(w, "failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}

	response := ProcessResponse{}

	if r.FormValue("filter_classes") != "false" {
		filter := ingest.NewClassFilter(ingest.DefaultClasses())
		var stats ingest.ClassStats
		records, stats = filter.Apply(records)
		response.ClassStats = &stats
	}

	addressColumn, err := ingest.ResolveAddressColumn(records, columns, r.FormValue("address_column"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Pipeline.Run(r.Context(), records, addressColumn)
	if err != nil {
		http.Error(w, "batch run failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	response.Batch = result

	if r.FormValue("store") == "true" && h.Store != nil {
		if err := h.Store.SaveBatch(r.Context(), header.Filename, result); err != nil {
			log.Printf("failed to persist batch %s: %v", result.BatchID, err)
		} else {
			response.Stored = true
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// Health handles GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
