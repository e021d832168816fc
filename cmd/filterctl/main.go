// Package main is the entry point of filterctl.
package main

import (
	"fmt"
	"os"

	"jobboard/internal/cli"
)

func main() {
	if err := cli.NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
