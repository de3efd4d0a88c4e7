package main

import (
	"os"

	"github.com/adocshq/adocs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
