package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	serve := &serveCmd{}
	commander.Register(serve, "")
	commander.Register(&pollCmd{}, "")
	commander.Register(&exportCmd{}, "")
	commander.Register(&importCmd{}, "")
	commander.Register(&migrateCmd{}, "")

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Without a subcommand the server runs, as before subcommands existed.
	if flag.NArg() == 0 {
		fs := flag.NewFlagSet(serve.Name(), flag.ExitOnError)
		serve.SetFlags(fs)
		os.Exit(int(serve.Execute(ctx, fs)))
	}
	os.Exit(int(commander.Execute(ctx)))
}
