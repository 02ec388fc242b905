package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/eshaffer321/ynabsync/internal/config"
	"github.com/eshaffer321/ynabsync/internal/sources"

	_ "github.com/eshaffer321/ynabsync/internal/sources/baneco"
	_ "github.com/eshaffer321/ynabsync/internal/sources/binance"
	_ "github.com/eshaffer321/ynabsync/internal/sources/bisa"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""

	cli struct {
		Globals

		Version kong.VersionFlag `help:"Show version information"`

		Sync   SyncCmd   `cmd:"" help:"Mirror satellite budget transactions into the master budget."`
		Import ImportCmd `cmd:"" help:"Import a bank or exchange export into its account."`
		Whoami WhoamiCmd `cmd:"" help:"Check the access token and list reachable budgets."`
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx := kong.Parse(&cli,
		kong.Vars{
			"version":     buildVersion(),
			"config_path": config.DefaultPath,
			"sources":     strings.Join(sources.Names(), ", "),
		},
		kong.Name("ynabsync"),
		kong.Description("Keeps a multi-currency set of budgets in sync."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	err := kctx.Run()
	kctx.FatalIfErrorf(err)
}

func buildVersion() string {
	if Version == "" {
		Version = "dev"
	}
	if CommitSHA == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, CommitSHA)
}
