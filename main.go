package main

import (
	"os"

	cmd "github.com/phillip/clubify-go/cmd"
)

var version = "dev"

func main() {
	if err := cmd.Execute(version); err != nil {
		os.Exit(1)
	}
}
