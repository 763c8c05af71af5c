package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, closeApp := newRootCmd(newAppFromEnv)
	err := root.ExecuteContext(ctx)
	closeApp()
	if err != nil {
		stop()
		os.Exit(1)
	}
}
