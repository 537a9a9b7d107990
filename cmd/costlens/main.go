// main is the entry point for the costlens CLI.
package main

import (
	"github.com/costlens/costlens/cmd"
	"github.com/costlens/costlens/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
