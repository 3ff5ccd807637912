package main

import (
	"os"

	"github.com/spigell/resume-rank/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
