// Package ingest reads prospect export files into the raw records the
// engine consumes. It knows nothing about normalization; it only maps
// spreadsheet rows onto column name to value records.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/prospect-dedup/internal/pipeline"
)

// FullAddressColumn is the synthesized column holding the assembled address
const FullAddressColumn = "Full Address"

// ReadFile loads a CSV or XLSX export, dispatching on file extension.
// Returns the records in file order plus the header columns.
func ReadFile(path string) ([]pipeline.RawRecord, []string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx", ".xlsm":
		return ReadXLSX(path)
	default:
		return nil, nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// ReadCSV reads a CSV file whose first row is the header
func ReadCSV(path string) ([]pipeline.RawRecord, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	header = trimAll(header)

	var records []pipeline.RawRecord
	rowIndex := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row %d: %w", rowIndex, err)
		}
		records = append(records, toRecord(rowIndex, header, row))
		rowIndex++
	}
	return records, header, nil
}

// ReadXLSX reads the first sheet of an Excel file whose first row is the header
func ReadXLSX(path string) ([]pipeline.RawRecord, []string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("empty sheet %q", sheetName)
	}

	header := trimAll(rows[0])
	var records []pipeline.RawRecord
	for i, row := range rows[1:] {
		records = append(records, toRecord(i, header, row))
	}
	return records, header, nil
}

// toRecord maps one data row onto the header columns
func toRecord(index int, header, row []string) pipeline.RawRecord {
	fields := make(map[string]string, len(header))
	for i, col := range header {
		if col == "" {
			continue
		}
		if i < len(row) {
			fields[col] = strings.TrimSpace(row[i])
		} else {
			fields[col] = ""
		}
	}
	return pipeline.RawRecord{Index: index, Fields: fields}
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// ResolveAddressColumn decides which column feeds the engine. When the
// requested column exists in the header it is used as-is. Otherwise, if the
// export carries Address/City/State/Zipcode component columns, a Full
// Address column is assembled onto every record ("Address, City, State Zip")
// and its name returned.
func ResolveAddressColumn(records []pipeline.RawRecord, header []string, requested string) (string, error) {
	if requested != "" && contains(header, requested) {
		return requested, nil
	}
	if contains(header, FullAddressColumn) {
		return FullAddressColumn, nil
	}
	if !contains(header, "Address") {
		if requested != "" {
			return "", fmt.Errorf("address column %q not found", requested)
		}
		return "", fmt.Errorf("no address-bearing column found")
	}

	for _, rec := range records {
		rec.Fields[FullAddressColumn] = assembleFullAddress(rec.Fields)
	}
	return FullAddressColumn, nil
}

// assembleFullAddress combines component columns into a single address line
func assembleFullAddress(fields map[string]string) string {
	street := strings.TrimSpace(fields["Address"])
	city := strings.TrimSpace(fields["City"])
	state := strings.TrimSpace(fields["State"])
	zip := strings.TrimSpace(fields["Zipcode"])
	if zip == "" {
		zip = strings.TrimSpace(fields["Zip"])
	}

	var parts []string
	if street != "" {
		parts = append(parts, street)
	}
	if city != "" {
		parts = append(parts, city)
	}
	tail := strings.TrimSpace(state + " " + zip)
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
