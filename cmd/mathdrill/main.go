package main

import (
	"os"

	"github.com/Agampodige/MathDrill/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
