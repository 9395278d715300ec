package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prospect-dedup/internal/pipeline"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeTempCSV(t, "Full Address,Owner\n\"123 Main St, Springfield, IL\",Smith\n456 Oak Ave,Jones\n")

	records, header, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}

	if len(header) != 2 || header[0] != "Full Address" {
		t.Errorf("header = %v", header)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Index != 0 || records[1].Index != 1 {
		t.Errorf("row indices = %d, %d", records[0].Index, records[1].Index)
	}
	if got := records[0].Fields["Full Address"]; got != "123 Main St, Springfield, IL" {
		t.Errorf("address = %q", got)
	}
	if got := records[1].Fields["Owner"]; got != "Jones" {
		t.Errorf("owner = %q", got)
	}
}

func TestReadFileRejectsUnknownExtension(t *testing.T) {
	if _, _, err := ReadFile("export.pdf"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestResolveAddressColumn(t *testing.T) {
	t.Run("requested column exists", func(t *testing.T) {
		header := []string{"Site Address", "Owner"}
		column, err := ResolveAddressColumn(nil, header, "Site Address")
		if err != nil {
			t.Fatalf("ResolveAddressColumn: %v", err)
		}
		if column != "Site Address" {
			t.Errorf("column = %q", column)
		}
	})

	t.Run("assembles full address from components", func(t *testing.T) {
		header := []string{"Address", "City", "State", "Zipcode"}
		records := []pipeline.RawRecord{
			{Index: 0, Fields: map[string]string{
				"Address": "123 Main St", "City": "Springfield", "State": "IL", "Zipcode": "62704",
			}},
			{Index: 1, Fields: map[string]string{
				"Address": "456 Oak Ave", "City": "", "State": "", "Zipcode": "",
			}},
		}

		column, err := ResolveAddressColumn(records, header, "")
		if err != nil {
			t.Fatalf("ResolveAddressColumn: %v", err)
		}
		if column != FullAddressColumn {
			t.Errorf("column = %q, want %q", column, FullAddressColumn)
		}
		if got := records[0].Fields[FullAddressColumn]; got != "123 Main St, Springfield, IL 62704" {
			t.Errorf("assembled = %q", got)
		}
		if got := records[1].Fields[FullAddressColumn]; got != "456 Oak Ave" {
			t.Errorf("assembled = %q", got)
		}
	})

	t.Run("missing column fails", func(t *testing.T) {
		if _, err := ResolveAddressColumn(nil, []string{"Owner"}, "Address"); err == nil {
			t.Error("expected error for missing column")
		}
	})
}

func TestClassFilter(t *testing.T) {
	records := []pipeline.RawRecord{
		{Index: 0, Fields: map[string]string{ClassColumn: "CD"}},
		{Index: 1, Fields: map[string]string{ClassColumn: "CO"}},
		{Index: 2, Fields: map[string]string{ClassColumn: "ZZ"}},
		{Index: 3, Fields: map[string]string{ClassColumn: "C1"}},
	}

	filter := NewClassFilter(DefaultClasses())
	kept, stats := filter.Apply(records)

	if len(kept) != 3 {
		t.Fatalf("kept = %d, want 3", len(kept))
	}
	if stats.FilteredOut != 1 {
		t.Errorf("filtered out = %d, want 1", stats.FilteredOut)
	}
	if got := kept[1].Fields[ClassColumn]; got != "C0" {
		t.Errorf("CO not standardized to C0, got %q", got)
	}
	if stats.ValidCounts["C0"] != 1 {
		t.Errorf("valid counts = %v, want C0:1", stats.ValidCounts)
	}
	if stats.OtherCounts["ZZ"] != 1 {
		t.Errorf("other counts = %v, want ZZ:1", stats.OtherCounts)
	}
}

func TestClassFilterPassThrough(t *testing.T) {
	records := []pipeline.RawRecord{
		{Index: 0, Fields: map[string]string{"Full Address": "123 Main St"}},
	}

	kept, stats := NewClassFilter(DefaultClasses()).Apply(records)
	if len(kept) != 1 || stats.FilteredOut != 0 {
		t.Errorf("records without a class column must pass through, kept=%d stats=%+v", len(kept), stats)
	}

	kept, _ = NewClassFilter(nil).Apply(records)
	if len(kept) != 1 {
		t.Errorf("empty filter must pass everything, kept=%d", len(kept))
	}
}

func TestStandardizeClass(t *testing.T) {
	tests := []struct{ in, want string }{
		{"CO", "C0"},
		{"C0", "C0"},
		{" cd ", "CD"},
		{"B9", "B9"},
	}
	for _, tt := range tests {
		if got := StandardizeClass(tt.in); got != tt.want {
			t.Errorf("StandardizeClass(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
