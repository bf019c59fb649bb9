package main

import (
	"os"

	"github.com/conneroisu/pen/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
