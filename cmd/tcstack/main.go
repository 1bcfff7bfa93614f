// Package main is the entry point for the tcstack CLI.
//
// tcstack provisions TeamCity servers backed by a shared PostgreSQL server
// on Kubernetes. Every resource is a node in a dependency graph that is
// executed concurrently in topological order.
//
// Commands: init, plan, render, apply, destroy, version.
//
// For detailed usage information, run:
//
//	tcstack --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/tcstack/cmd/tcstack/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	commands.SetVersionInfo(version, commit, date)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
