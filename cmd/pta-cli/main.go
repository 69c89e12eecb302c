// Package main provides the entry point for pta-cli.
//
// pta-cli generates key pairs, checks gate configuration files and
// validates tokens offline. verify exits with status 2 when the token is
// rejected and 1 on any other error.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/yndnr/ptagate/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		if errors.Is(err, command.ErrNotAuthorized) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
