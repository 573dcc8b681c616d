package main

import (
	"os"

	"github.com/skillbridge-dev/skillbridge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
