// Package main is calmmatectl, the operator CLI. It runs the triage and
// reply engines offline and manages the reference data tables.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
