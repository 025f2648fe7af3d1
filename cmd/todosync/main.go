// Command todosync is a terminal client for a remote todo list.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"todosync/internal/config"
	"todosync/internal/engine"
	"todosync/internal/logging"
	"todosync/internal/store"
	"todosync/internal/ui"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := run(ctx, os.Args[1:]); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintf(os.Stderr, "\nInterrupted\n")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todosync", flag.ContinueOnError)
	cfg, err := config.Load(fs, args)
	if err != nil {
		return err
	}

	session, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer session.Close()

	client, err := store.NewClient(store.ClientOptions{
		BaseURL:           cfg.ServerURL,
		AuthToken:         cfg.AuthToken,
		Timeout:           cfg.RequestTimeoutDur,
		ValidateResponses: cfg.ValidateResponses,
	})
	if err != nil {
		return err
	}

	eng := engine.New(client, cfg.OwnerID,
		engine.WithLogger(session.Logger),
		engine.WithErrorWindow(cfg.ErrorDisplayDur),
	)

	session.Logger.Info("starting", "server", cfg.ServerURL, "owner", cfg.OwnerID)
	return ui.Run(ctx, eng, cfg.OwnerID)
}
