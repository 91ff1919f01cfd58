package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/abhisek/aquaassist/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if code := cmd.ExitCode(cmd.Execute(ctx)); code != cmd.ExitOK {
		os.Exit(code)
	}
}
