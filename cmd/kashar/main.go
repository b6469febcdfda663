package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"Kashar/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional, real environment variables still win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
