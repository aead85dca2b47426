package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/farmgate-dev/farmgate/internal/server"
	"github.com/farmgate-dev/farmgate/internal/server/config"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Регистрируем до config.LoadConfig: он вызывает flag.Parse
	showVersion := flag.Bool("version", false, "Show version information")

	cfg := config.LoadConfig()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	ctx := context.Background()

	app, err := server.NewApp(ctx, cfg, Version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("Farmgate Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
