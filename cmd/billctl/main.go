package main

import (
	"context"
	"fmt"
	"os"

	"invoicer/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := newApp(os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "billctl:", err)
		os.Exit(1)
	}
}
