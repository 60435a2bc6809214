// Command imageedit serves the browser image editor and runs one-shot edits
// from the command line.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
