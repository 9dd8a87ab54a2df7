package main

import (
	"os"

	"github.com/ngrash/go-reltime/cmd/reltime/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
