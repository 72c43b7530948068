// Command qfctl is the questionflow operator tool: it seeds sample data
// and runs the option reconciler and commit validation on JSON files.
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
