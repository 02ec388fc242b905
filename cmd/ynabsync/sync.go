package main

import (
	"context"
	"os"

	"github.com/eshaffer321/ynabsync/internal/logger"
	"github.com/eshaffer321/ynabsync/internal/reconcile"
)

// SyncCmd mirrors satellite transactions into the master budget
type SyncCmd struct {
	SinceDate      string `help:"Read transactions on or after this date (YYYY-MM-DD)."`
	LookbackDays   int    `help:"Read this many days back when no date is given (default from config)."`
	OnlyCreditCard bool   `help:"Only mirror the configured credit card account (default: every account but it)."`
	DryRun         bool   `help:"Plan the run and print it without creating anything."`
}

func (cmd *SyncCmd) Run(ctx context.Context, g *Globals) error {
	log := g.logger()

	cfg, err := g.load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateSync(); err != nil {
		return err
	}

	rc, err := cfg.ReconcileConfig(cmd.OnlyCreditCard)
	if err != nil {
		return err
	}
	rc.DryRun = cmd.DryRun
	if cmd.LookbackDays > 0 {
		rc.Window.LookbackDays = cmd.LookbackDays
	}
	if rc.Window.Since, err = parseSince(cmd.SinceDate); err != nil {
		return err
	}

	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}
	defer client.Close()

	engine, err := reconcile.New(reconcile.NewClientLedger(client), rc)
	if err != nil {
		return err
	}

	ctx = logger.WithContext(ctx, logger.WithFields(log, map[string]interface{}{
		"command": "sync",
		"dry_run": rc.DryRun,
	}))

	summary, err := engine.Run(ctx)
	if summary != nil {
		printSummary(os.Stdout, summary)
	}
	return err
}
