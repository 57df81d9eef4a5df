// Package main provides the coach CLI for annotating chess games and
// practicing the positions they went wrong in.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
