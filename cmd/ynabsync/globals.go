package main

import (
	"github.com/eshaffer321/ynabsync/internal/config"
	"github.com/eshaffer321/ynabsync/internal/logger"
	"github.com/eshaffer321/ynabsync/pkg/ynab"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Globals are the flags shared by every command
type Globals struct {
	Config  string `help:"Configuration file." short:"c" default:"${config_path}" env:"YNABSYNC_CONFIG"`
	Verbose bool   `help:"Enable debug logging." short:"v"`
}

func (g *Globals) logger() zerolog.Logger {
	return logger.WithVerbose(logger.New(), g.Verbose)
}

func (g *Globals) load() (*config.Config, error) {
	return config.Load(g.Config)
}

func newClient(cfg *config.Config, log zerolog.Logger) (*ynab.Client, error) {
	client, err := ynab.NewClient(cfg.ClientOptions(logger.KV(log)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}
	return client, nil
}

func parseSince(s string) (*ynab.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := ynab.ParseDate(s)
	if err != nil {
		return nil, errors.Wrap(err, "--since-date")
	}
	return &d, nil
}
