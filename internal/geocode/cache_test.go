package geocode

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/prospect-dedup/internal/address"
)

func TestCacheGetSet(t *testing.T) {
	cache := NewCache(10)

	if _, ok := cache.Get("123 Main St"); ok {
		t.Fatal("expected miss on empty cache")
	}

	want := &Result{Components: address.ParsedAddress{Street: "Main Street"}}
	cache.Set("123 Main St", want)

	got, ok := cache.Get("123 Main St")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got.Components.Street != "Main Street" {
		t.Errorf("street = %q, want %q", got.Components.Street, "Main Street")
	}

	// Keys normalize case and surrounding whitespace
	if _, ok := cache.Get("  123 MAIN ST  "); !ok {
		t.Error("expected hit for case and whitespace variant")
	}

	stats := cache.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Size != 1 {
		t.Errorf("stats = %+v, want hits=2 misses=1 size=1", stats)
	}
}

func TestCacheEviction(t *testing.T) {
	cache := NewCache(3)
	for i := 0; i < 5; i++ {
		cache.Set(fmt.Sprintf("addr %d", i), &Result{})
	}

	if size := cache.Stats().Size; size != 3 {
		t.Errorf("size = %d, want 3", size)
	}
	if _, ok := cache.Get("addr 0"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := cache.Get("addr 4"); !ok {
		t.Error("newest entry should be present")
	}
}

func TestCacheSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "address_cache.json")

	cache := NewCache(10)
	cache.Set("123 Main St", &Result{Components: address.ParsedAddress{Street: "Main Street", Zip: "62704"}})
	if err := cache.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewCache(10)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}

	got, ok := loaded.Get("123 Main St")
	if !ok {
		t.Fatal("expected hit after reload")
	}
	if got.Components.Zip != "62704" {
		t.Errorf("zip = %q, want 62704", got.Components.Zip)
	}
}

func TestCacheLoadMissingFile(t *testing.T) {
	cache := NewCache(10)
	if err := cache.Load(filepath.Join(t.TempDir(), "nope.json")); err != nil {
		t.Errorf("missing file should not be an error, got %v", err)
	}
}

// countingResolver records how many times it was called
type countingResolver struct {
	calls  int
	result *Result
	err    error
}

func (r *countingResolver) Resolve(ctx context.Context, query string) (*Result, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

func TestCachedResolver(t *testing.T) {
	inner := &countingResolver{result: &Result{Components: address.ParsedAddress{City: "Springfield"}}}
	resolver := NewCachedResolver(inner, NewCache(10))

	for i := 0; i < 3; i++ {
		result, err := resolver.Resolve(context.Background(), "123 Main St")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if result.Components.City != "Springfield" {
			t.Errorf("city = %q, want Springfield", result.Components.City)
		}
	}

	if inner.calls != 1 {
		t.Errorf("inner resolver called %d times, want 1", inner.calls)
	}
}

func TestCachedResolverDoesNotCacheFailures(t *testing.T) {
	inner := &countingResolver{err: &LookupError{Query: "x", Err: errors.New("boom")}}
	resolver := NewCachedResolver(inner, NewCache(10))

	for i := 0; i < 2; i++ {
		if _, err := resolver.Resolve(context.Background(), "x"); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Errorf("inner resolver called %d times, want 2 (failures stay retryable)", inner.calls)
	}
}
