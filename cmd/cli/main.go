package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fswatcher/internal/cli"
	cliplugins "fswatcher/internal/cli_plugins"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:8090", "daemon API address")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalChan
		fmt.Print("\n Shutdown signal received")
		cancel()
	}()

	appCtx := cli.NewAppContext(*addr, cancel)

	cli.CliStart(ctx, flag.Args(), appCtx,
		cliplugins.NewStatusCommand(appCtx),
		cliplugins.NewWatchesCommand(appCtx),
		cliplugins.NewIgnoresCommand(appCtx),
		cliplugins.NewJournalCommand(appCtx),
	)

	<-ctx.Done()
}
