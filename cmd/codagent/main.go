// Package main is the codagent entry point: a terminal chat client that
// proposes file edits and applies them only after confirmation.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"codagent/internal/app"
	"codagent/internal/config"
)

// main is the program entry point.
func main() {
	log.SetFlags(0)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a, err := app.New(cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := a.Run(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
