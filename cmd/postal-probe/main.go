//go:build cgo

// postal-probe compares the built-in rule parser against libpostal output.
// Useful when tuning the parser rules against messy exports. Requires the
// libpostal C library, so it lives in its own binary.
package main

import (
	"flag"
	"fmt"
	"os"

	expand "github.com/openvenues/gopostal/expand"
	postal "github.com/openvenues/gopostal/parser"

	"github.com/prospect-dedup/internal/address"
)

func main() {
	var (
		addr     = flag.String("address", "", "Address to probe")
		expanded = flag.Bool("expand", false, "Also print libpostal expansions")
	)
	flag.Parse()

	if *addr == "" {
		fmt.Println("Usage: postal-probe -address \"123 Main St Springfield IL 62704\" [-expand]")
		os.Exit(1)
	}

	fmt.Printf("Input: %s\n\n", *addr)

	fmt.Println("Rule parser:")
	parsed, err := address.Parse(*addr)
	if err != nil {
		fmt.Printf("  failed: %v\n", err)
	} else {
		canonical := address.Canonicalize(parsed)
		fmt.Printf("  house:  %s\n", canonical.HouseNumber)
		fmt.Printf("  street: %s\n", canonical.Street)
		fmt.Printf("  unit:   %s\n", canonical.Unit)
		fmt.Printf("  city:   %s\n", canonical.City)
		fmt.Printf("  state:  %s\n", canonical.State)
		fmt.Printf("  zip:    %s\n", canonical.Zip)
		fmt.Printf("  confidence:  %s\n", canonical.Confidence)
		fmt.Printf("  fingerprint: %s\n", canonical.Fingerprint())
	}

	fmt.Println("\nlibpostal:")
	for _, component := range postal.ParseAddress(*addr) {
		fmt.Printf("  %s: %s\n", component.Label, component.Value)
	}

	if *expanded {
		fmt.Println("\nExpansions:")
		for _, e := range expand.ExpandAddress(*addr) {
			fmt.Printf("  %s\n", e)
		}
	}
}
