// Package main is the entry point for the taskhub CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/runoshun/taskhub/internal/app"
	"github.com/runoshun/taskhub/internal/cli"
	"github.com/runoshun/taskhub/internal/domain"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func run() (err error) {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	// Create dependency injection container
	container, err := app.New(cwd)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		err = errors.Join(err, container.Close())
	}()

	// Create and execute root command
	rootCmd := cli.NewRootCommand(container, version)
	return rootCmd.Execute()
}

// exitCode distinguishes user mistakes from failures of the store.
func exitCode(err error) int {
	switch domain.ErrorKind(err) {
	case domain.KindNotFound, domain.KindForbidden, domain.KindValidation:
		return 2
	default:
		return 1
	}
}
