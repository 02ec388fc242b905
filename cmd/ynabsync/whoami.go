package main

import (
	"context"
	"fmt"
	"os"
)

// WhoamiCmd verifies the token
type WhoamiCmd struct{}

func (cmd *WhoamiCmd) Run(ctx context.Context, g *Globals) error {
	log := g.logger()

	cfg, err := g.load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}
	defer client.Close()

	user, err := client.Auth.Verify(ctx)
	if err != nil {
		return err
	}
	printSuccess(os.Stdout, fmt.Sprintf("Authenticated as %s", user.ID))

	budgets, err := client.Budgets.List(ctx)
	if err != nil {
		return err
	}
	for _, b := range budgets {
		printInfof(os.Stdout, "%s %s", b.Name, mutedStyle.Render(b.ISOCode()))
	}
	return nil
}
