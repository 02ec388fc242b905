package importer

import (
	"context"
	"encoding/json"
	"io"

	"github.com/eshaffer321/ynabsync/internal/logger"
	"github.com/eshaffer321/ynabsync/internal/sources"
	"github.com/eshaffer321/ynabsync/pkg/ynab"
	"github.com/pkg/errors"
)

// ErrNoOutput is returned for a dry run without a writer
var ErrNoOutput = errors.New("dry run requires an output writer")

// Pipeline normalizes one source export and imports it
type Pipeline struct {
	Importer *Importer
	Source   sources.Normalizer
	// Options are passed to the source. AccountID defaults to the
	// importer's account.
	Options sources.Options
	// TransferPayee names the payee to resolve when Options carries no
	// transfer payee id
	TransferPayee string
}

// NewPipeline creates a pipeline importing into imp
func NewPipeline(imp *Importer, source sources.Normalizer, opts sources.Options) *Pipeline {
	if opts.AccountID == "" {
		opts.AccountID = imp.AccountID
	}
	return &Pipeline{
		Importer: imp,
		Source:   source,
		Options:  opts,
	}
}

// RunOptions tune a single run
type RunOptions struct {
	// Since overrides the account's last transaction date
	Since *ynab.Date
	// DryRun writes the payload to Out instead of importing it
	DryRun bool
	Out    io.Writer
}

// Result describes a finished run
type Result struct {
	Since        *ynab.Date
	Transactions []*ynab.SaveTransaction
	Summary      ImportSummary
	DryRun       bool
}

// Run reads the export from r. Without an override, records older than
// the account's most recent transaction are dropped.
func (p *Pipeline) Run(ctx context.Context, r io.Reader, opts RunOptions) (*Result, error) {
	if opts.DryRun && opts.Out == nil {
		return nil, ErrNoOutput
	}
	log := logger.FromContext(ctx).With().Str("source", p.Source.Name()).Logger()

	since := opts.Since
	if since == nil {
		last, err := p.Importer.LastTransactionDate(ctx)
		if err != nil {
			return nil, err
		}
		since = last
		if since != nil {
			log.Info().Str("since", since.String()).Msg("Last ledger transaction")
		} else {
			log.Info().Msg("No existing transactions found, importing all")
		}
	} else {
		log.Info().Str("since", since.String()).Msg("Using override since date")
	}

	srcOpts := p.Options
	srcOpts.Since = since
	if srcOpts.TransferPayeeID == "" && p.TransferPayee != "" {
		id, err := p.Importer.TransferPayeeID(ctx, p.TransferPayee)
		if err != nil {
			return nil, err
		}
		srcOpts.TransferPayeeID = id
	}

	txns, err := p.Source.Normalize(r, srcOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s export", p.Source.Name())
	}
	log.Info().Int("transactions", len(txns)).Msg("Converted transactions")

	result := &Result{Since: since, Transactions: txns, DryRun: opts.DryRun}

	if opts.DryRun {
		enc := json.NewEncoder(opts.Out)
		enc.SetIndent("", "  ")
		payload := txns
		if payload == nil {
			payload = []*ynab.SaveTransaction{}
		}
		if err := enc.Encode(payload); err != nil {
			return nil, errors.Wrap(err, "failed to write dry run payload")
		}
		log.Info().Int("transactions", len(txns)).Msg("Dry run, nothing imported")
		return result, nil
	}

	summary, err := p.Importer.Import(ctx, txns)
	if err != nil {
		return nil, err
	}
	result.Summary = summary
	return result, nil
}
