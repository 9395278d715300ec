package address

import "testing"

func mustCanonical(t *testing.T, raw string) CanonicalAddress {
	t.Helper()
	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q): %v", raw, err)
	}
	return Canonicalize(parsed)
}

func TestFingerprintIgnoresUnit(t *testing.T) {
	base := mustCanonical(t, "123 Main St")
	withUnit := mustCanonical(t, "123 Main St Apt 4B")

	if base.Fingerprint() != withUnit.Fingerprint() {
		t.Errorf("unit changed fingerprint: %q vs %q", base.Fingerprint(), withUnit.Fingerprint())
	}
}

func TestFingerprintFormatVariants(t *testing.T) {
	variants := []string{
		"123 Main St",
		"123 MAIN STREET",
		"123 Main St Apt 4B",
	}

	want := mustCanonical(t, variants[0]).Fingerprint()
	for _, v := range variants[1:] {
		if got := mustCanonical(t, v).Fingerprint(); got != want {
			t.Errorf("fingerprint(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestFingerprintZipPreferred(t *testing.T) {
	withZip := mustCanonical(t, "123 Main St, Springfield, IL 62704")
	if got, want := withZip.Fingerprint(), Fingerprint("123|MAIN STREET|62704"); got != want {
		t.Errorf("fingerprint = %q, want %q", got, want)
	}

	noZip := mustCanonical(t, "123 Main St, Springfield, IL")
	if got, want := noZip.Fingerprint(), Fingerprint("123|MAIN STREET|SPRINGFIELD|IL"); got != want {
		t.Errorf("fallback fingerprint = %q, want %q", got, want)
	}
}

func TestFingerprintDistinctAddresses(t *testing.T) {
	a := mustCanonical(t, "123 Main St, Springfield, IL 62704")
	b := mustCanonical(t, "125 Main St, Springfield, IL 62704")

	if a.Fingerprint() == b.Fingerprint() {
		t.Error("different house numbers produced equal fingerprints")
	}
}
