// Package main is the HealthMate command-line client.
package main

import (
	"fmt"
	"os"
)

var (
	version   string
	buildDate string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
