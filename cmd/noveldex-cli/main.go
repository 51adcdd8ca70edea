// Command noveldex-cli browses a parquet novel corpus from the terminal.
//
// Usage:
//
//	noveldex-cli [--store "data/*.parquet"] [--genre G] [--keyword K] [--min-score N] [--page P]
//	noveldex-cli --genres
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	flag "github.com/spf13/pflag"

	logpkg "github.com/kailas-cloud/noveldex/internal/logger"
	"github.com/kailas-cloud/noveldex/internal/transport/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := cli.Parse(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	logger, err := logpkg.NewLogger("cli", opts.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Run(ctx, opts, os.Stdout, os.Stderr, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
