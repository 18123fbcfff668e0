// Package main contains the entrypoint for the lingobot Telegram bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := Execute(ctx)
	stop()
	os.Exit(exitCode)
}
