package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/google/subcommands"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/config"
	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/database"
)

type pollCmd struct{}

func (*pollCmd) Name() string     { return "poll" }
func (*pollCmd) Synopsis() string { return "run one price-update cycle and print its report" }
func (*pollCmd) Usage() string {
	return `poll

  Looks up every position once, fires crossed alerts and prints the cycle report as JSON.
`
}

func (*pollCmd) SetFlags(*flag.FlagSet) {}

func (*pollCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, cleanup, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	report, err := a.loop.RunCycle(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	out, err := sonic.ConfigStd.MarshalIndent(report, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(out))
	return subcommands.ExitSuccess
}

type exportCmd struct {
	portfolioID string
	dir         string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write a portfolio as CSV" }
func (*exportCmd) Usage() string {
	return `export [-p <portfolio id>] [-d <dir>]

  Writes {name}_portfolio_{date}.csv for the given portfolio, the active one by default.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolioID, "p", "", "portfolio ID (defaults to the active portfolio)")
	f.StringVar(&c.dir, "d", ".", "output directory")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, cleanup, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	id := c.portfolioID
	if id == "" {
		id = a.services.Portfolios.ActiveID()
	}
	file, err := a.services.Export.ExportPortfolio(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	target := filepath.Join(c.dir, file.Filename)
	if err := os.WriteFile(target, file.Content, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(target)
	return subcommands.ExitSuccess
}

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "apply an import file of positions and alerts" }
func (*importCmd) Usage() string {
	return `import <file.json>

  Applies {"addPosition": [...], "addAlerts": [...]} entry by entry and prints one line per entry.
`
}

func (*importCmd) SetFlags(*flag.FlagSet) {}

func (*importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: import takes exactly one file")
		return subcommands.ExitUsageError
	}
	raw, err := os.ReadFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	a, cleanup, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer cleanup()

	report, err := a.services.Admin.Import(ctx, raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, line := range report.Results {
		fmt.Println(line)
	}
	fmt.Printf("%d added, %d failed\n", report.Added, report.Failed)
	if report.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply the hosted database migrations" }
func (*migrateCmd) Usage() string {
	return `migrate

  Applies pending goose migrations to the hosted database and prints the schema version.
`
}

func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !cfg.Storage.Hosted.HostedEnabled() {
		fmt.Fprintln(os.Stderr, "Error: no hosted database configured (set HOSTED_DB_DSN or POSTGRES_HOST)")
		return subcommands.ExitUsageError
	}

	db, err := database.Open(cfg.Storage.Hosted.Driver, cfg.Storage.Hosted.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	v, err := database.SchemaVersion(ctx, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("schema version %d\n", v)
	return subcommands.ExitSuccess
}
