package main

import (
	"os"

	"github.com/martinmn/defsched/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
