package main

import (
	"os"

	"github.com/conneroisu/contactform/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
