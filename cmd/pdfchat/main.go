// Command pdfchat indexes a PDF and answers questions about it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/pdfchat/internal/adapters/driving/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is fine; existing variables win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		return 1
	}
	return 0
}
