package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/api"
)

type serveCmd struct {
	noPoll bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP API and the price loop (default)" }
func (*serveCmd) Usage() string {
	return `serve [-no-poll]

  Starts the HTTP server and, unless disabled, the price-update loop.
  Stops gracefully on SIGINT or SIGTERM.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.noPoll, "no-poll", false, "do not start the price-update loop")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, cleanup, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer cleanup()
	log := a.log

	if a.cfg.Polling.Enabled && !c.noPoll {
		if err := a.loop.Start(ctx); err != nil {
			log.Errorf("failed to start price loop: %v", err)
			return subcommands.ExitFailure
		}
		log.Infof("price loop started, interval %s", a.cfg.Polling.Interval)
		defer a.loop.Stop()
	}

	router := api.NewRouter(a.services, a.cfg, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("starting server on %s", a.cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Errorf("server failed to start: %v", err)
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
	}

	log.Infof("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
		return subcommands.ExitFailure
	}

	log.Infof("server exited")
	return subcommands.ExitSuccess
}
