package main

import (
	"context"
	"fmt"
	"os"

	"github.com/eshaffer321/ynabsync/internal/importer"
	"github.com/eshaffer321/ynabsync/internal/logger"
	"github.com/eshaffer321/ynabsync/internal/sources"
	"github.com/pkg/errors"
)

// ImportCmd loads one source export
type ImportCmd struct {
	Source    string `arg:"" help:"Source of the export (${sources})."`
	File      string `help:"Export file to read." short:"f" required:"" type:"existingfile"`
	SinceDate string `help:"Import records on or after this date instead of the account's last transaction."`
	DryRun    bool   `help:"Write the converted transactions as JSON instead of importing them."`
	Out       string `help:"Dry run output file (default stdout)." type:"path"`
}

func (cmd *ImportCmd) Run(ctx context.Context, g *Globals) error {
	log := g.logger()

	source, err := sources.Lookup(cmd.Source)
	if err != nil {
		return err
	}
	name := source.Name()

	cfg, err := g.load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateSource(name); err != nil {
		return err
	}
	opts, err := cfg.SourceOptions(name)
	if err != nil {
		return err
	}
	since, err := parseSince(cmd.SinceDate)
	if err != nil {
		return err
	}

	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}
	defer client.Close()

	src := cfg.Sources[name]
	imp := importer.New(importer.ServicesFrom(client), src.Budget, src.AccountID)
	pipeline := importer.NewPipeline(imp, source, opts)
	pipeline.TransferPayee = src.TransferPayee

	in, err := os.Open(cmd.File)
	if err != nil {
		return errors.Wrap(err, "failed to open export")
	}
	defer in.Close()

	runOpts := importer.RunOptions{Since: since, DryRun: cmd.DryRun, Out: os.Stdout}
	if cmd.DryRun && cmd.Out != "" {
		out, err := os.Create(cmd.Out)
		if err != nil {
			return errors.Wrap(err, "failed to create dry run output")
		}
		defer out.Close()
		runOpts.Out = out
	}

	ctx = logger.WithContext(ctx, logger.WithFields(log, map[string]interface{}{
		"command": "import",
		"budget":  src.Budget,
	}))
	result, err := pipeline.Run(ctx, in, runOpts)
	if err != nil {
		return err
	}

	if result.DryRun {
		if cmd.Out != "" {
			printInfof(os.Stderr, "Dry run: saved %d transactions to %s", len(result.Transactions), cmd.Out)
		}
		return nil
	}

	printSuccess(os.Stdout, fmt.Sprintf("Imported %d transactions (%d duplicates skipped)",
		result.Summary.Imported, result.Summary.Duplicates))

	budget, err := imp.Budget(ctx)
	if err != nil {
		return err
	}
	balance, err := imp.AccountBalance(ctx)
	if err != nil {
		return err
	}
	printInfof(os.Stdout, "Account balance %s (cleared %s)",
		balance.Balance.Format(budget.ISOCode()), balance.Cleared.Format(budget.ISOCode()))
	return nil
}
