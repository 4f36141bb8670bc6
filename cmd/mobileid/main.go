// Command mobileid is the terminal client for the mobile ID portal: it
// renders the portal views, mints admin tokens and scaffolds config files.
package main

import (
	"fmt"
	"os"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
