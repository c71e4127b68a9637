package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Main runs the dmcut command line and exits non-zero on failure.
func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
