package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/binary-install/grd/cmd"
)

var (
	// set via -ldflags during release builds
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	cmd.Version = version
	cmd.Commit = commit

	code := cmd.Execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
