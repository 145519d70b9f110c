// Package main is the entry point for the Argus threat intelligence service.
package main

import (
	"context"
	"fmt"
	"os"

	"argus/bootstrap"
	"argus/cmd"
)

// run initializes and starts the Argus service.
func run() error {
	ctx := context.Background()

	app, err := bootstrap.NewApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := app.Start(ctx); err != nil {
		app.Shutdown()
		return fmt.Errorf("failed to start application: %w", err)
	}

	app.WaitForShutdown()
	app.Shutdown()
	return nil
}

func main() {
	// One-shot CLI analysis, otherwise run as the API server.
	if len(os.Args) > 1 && os.Args[1] == "analyze" {
		// Strip "analyze" since the command already knows its own name.
		os.Args = append([]string{os.Args[0]}, os.Args[2:]...)

		analyzeCmd := cmd.NewAnalyzeCmd()
		if err := analyzeCmd.Execute(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
