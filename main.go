package main

import (
	"context"
	"os"
	"os/signal"

	"dirscope/cmd"

	"github.com/charmbracelet/fang"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := fang.Execute(ctx, cmd.RootCmd); err != nil {
		stop()
		os.Exit(1)
	}
}
