package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"idcards/internal/cli/commands"
	"idcards/internal/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// SERVER_URL, TOKEN_FILE и флаги -server, -token-file, -version
	cfg := config.NewConfig()

	if cfg.Version {
		printVersion(cfg)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	exitCode := commands.Dispatch(ctx, cfg, flag.Args())
	if exitCode != 0 && ctx.Err() != nil {
		// прервано по Ctrl+C
		exitCode = 130
	}
	if exitCode == 0 {
		return
	}
	os.Exit(exitCode)
}

func printVersion(cfg *config.Config) {
	fmt.Printf("idcardctl %s (built %s, %s)\nServer: %s\nToken file: %s\n",
		version, buildDate, runtime.Version(), cfg.ServerURL, cfg.TokenFile)
}
