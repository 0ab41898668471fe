// Command ltfsctl is a thin operator CLI around pkg/ltfs: write files and
// directory trees to a mounted LTFS cartridge, extract them back out,
// force an index synchronization, and report capacity. It intentionally
// carries no logic of its own beyond flag parsing and wiring — every
// decision lives in pkg/ltfs and the internal engine.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
