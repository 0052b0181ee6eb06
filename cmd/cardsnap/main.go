// Package main provides the cardsnap CLI.
package main

import (
	"github.com/cardsnap/cardsnap/internal/cli"
)

func main() {
	cli.Execute()
}
