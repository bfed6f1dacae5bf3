// Package main provides the entry point for the topfive CLI.
package main

import (
	"os"

	"github.com/topfiveapp/topfive/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
