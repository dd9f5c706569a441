package main

import (
	"os"

	"github.com/hivebrain/synapse-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
