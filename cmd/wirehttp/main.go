package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"wirehttp/cmd/wirehttp/cli"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, buildTime)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, cli.DefaultApp(), os.Args[1:])
	stop()

	os.Exit(code)
}
