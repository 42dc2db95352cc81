// Package main provides the entry point for epicboard.
//
// epicboard groups epics into phases by their dependencies: an epic with no
// dependencies is in phase 1, and every other epic sits one phase after its
// latest dependency. It ships a CLI, a terminal board, an HTTP API and MCP
// tools over the same SQLite store.
//
// Usage:
//
//	epicboard [command] [flags]
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/riordanpawley/epicboard/internal/cli"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, version, os.Args[1:])
	stop()
	os.Exit(code)
}
