// Package reconcile mirrors entries from satellite budgets into a master
// budget. A run reads fresh snapshots, skips everything the master already
// carries and creates the rest one by one.
package reconcile

import (
	"context"
	"strings"
	"time"

	"github.com/eshaffer321/ynabsync/internal/correlate"
	"github.com/eshaffer321/ynabsync/internal/filter"
	"github.com/eshaffer321/ynabsync/internal/logger"
	"github.com/eshaffer321/ynabsync/internal/rates"
	"github.com/eshaffer321/ynabsync/pkg/ynab"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Engine runs the sync
type Engine struct {
	ledger Ledger
	cfg    Config
	now    func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces time.Now for window computation
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine. Zero-valued optional settings take their defaults.
// Runs log through the logger attached to their context.
func New(ledger Ledger, cfg Config, opts ...Option) (*Engine, error) {
	if ledger == nil {
		return nil, &ConfigurationError{Reason: "ledger is required", Err: ErrInvalidConfig}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxMemoLength == 0 {
		cfg.MaxMemoLength = DefaultMaxMemoLength
	}

	e := &Engine{
		ledger: ledger,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Request is one entry about to be mirrored
type Request struct {
	Budget      string
	Source      ynab.Entry
	Identifier  string
	Rate        decimal.Decimal
	Ambiguous   bool
	Transaction *ynab.SaveTransaction
	// CreatedID is set once the master accepted the request
	CreatedID string
}

// Plan is the outcome of the read and filter phases
type Plan struct {
	RunID    string
	Since    *ynab.Date
	Master   *ynab.Budget
	Requests []*Request
	Excluded map[filter.Reason]int
}

// snapshot is everything read from the ledger for one run
type snapshot struct {
	master     *ynab.Budget
	satellites []*ynab.Budget
	categories map[string][]*ynab.Category
}

// Plan reads the budgets and decides what a run would create without
// writing anything
func (e *Engine) Plan(ctx context.Context) (*Plan, error) {
	return e.plan(ctx, uuid.NewString())
}

// Run plans and then submits every request, continuing past failures. The
// returned summary is complete whenever the read phase succeeded.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	started := e.now()
	runID := uuid.NewString()

	plan, err := e.plan(ctx, runID)
	if err != nil {
		return nil, err
	}

	summary := newSummary(plan, e.cfg.DryRun, started)
	log := logger.FromContext(ctx).With().Str("run_id", runID).Logger()

	if e.cfg.DryRun {
		log.Info().Int("planned", summary.Planned).Msg("Dry run, nothing submitted")
		summary.FinishedAt = e.now()
		return summary, nil
	}

	for _, req := range plan.Requests {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = e.now()
			return summary, errors.Wrapf(err, "%s interrupted after %d of %d", StageSubmit, summary.Created+summary.Failed, summary.Planned)
		}

		created, err := e.ledger.CreateTransaction(ctx, plan.Master.ID, req.Transaction)
		if err != nil {
			cerr := &CreationError{Request: req, Err: err}
			summary.Failed++
			summary.Failures = append(summary.Failures, cerr)
			log.Error().Err(err).
				Str("budget", req.Budget).
				Str("entry_id", req.Source.ID).
				Str("identifier", req.Identifier).
				Msg("Failed to create transaction")
			continue
		}

		if created != nil {
			req.CreatedID = created.ID
		}
		summary.Created++
		log.Debug().
			Str("budget", req.Budget).
			Str("entry_id", req.Source.ID).
			Str("created_id", req.CreatedID).
			Int64("amount", int64(req.Transaction.Amount)).
			Msg("Created transaction")
	}

	summary.FinishedAt = e.now()
	log.Info().
		Int("created", summary.Created).
		Int("skipped", summary.SkippedAsDuplicate).
		Int("failed", summary.Failed).
		Msg("Sync finished")

	return summary, nil
}

func (e *Engine) plan(ctx context.Context, runID string) (*Plan, error) {
	log := logger.FromContext(ctx).With().Str("run_id", runID).Logger()
	since := e.cfg.Window.Start(e.now())

	snap, err := e.fetch(ctx, since, log)
	if err != nil {
		return nil, err
	}

	universe := e.masterUniverse(snap.master)
	index := correlate.NewIndex(universe)
	log.Debug().Int("master_entries", index.Len()).Msg("Built master index")

	lookup := newCategoryLookup(snap.categories[snap.master.ID])

	plan := &Plan{
		RunID:    runID,
		Since:    since,
		Master:   snap.master,
		Excluded: make(map[filter.Reason]int),
	}

	for i, sat := range e.cfg.Satellites {
		budget := snap.satellites[i]
		blog := log.With().Str("budget", budget.Name).Logger()

		for _, entry := range budget.Entries() {
			decision := e.cfg.Policy.Evaluate(entry, index)
			if !decision.Eligible {
				plan.Excluded[decision.Reason]++
				ev := blog.Debug().Str("entry_id", entry.ID).Str("reason", string(decision.Reason))
				if decision.Match != nil {
					ev = ev.Str("master_id", decision.Match.ID)
				}
				ev.Msg("Entry excluded")
				continue
			}

			req := e.buildRequest(sat, budget, entry, universe, lookup)
			if req.Ambiguous {
				blog.Warn().Err(ErrAmbiguousCategory).
					Str("entry_id", entry.ID).
					Str("category", entry.CategoryName).
					Msg("Creating uncategorized")
			}
			plan.Requests = append(plan.Requests, req)
		}
	}

	log.Info().Int("planned", len(plan.Requests)).Msg("Planned transactions")
	return plan, nil
}

// fetch reads budgets, categories and transactions. Any failure aborts.
func (e *Engine) fetch(ctx context.Context, since *ynab.Date, log zerolog.Logger) (*snapshot, error) {
	budgets, err := e.ledger.ListBudgets(ctx)
	if err != nil {
		return nil, &FetchError{Stage: StageFetchBudgets, Err: err}
	}

	byName := make(map[string]*ynab.Budget, len(budgets))
	for _, b := range budgets {
		if _, ok := byName[b.Name]; !ok {
			byName[b.Name] = b
		}
	}

	var missing []string
	lookup := func(name string) *ynab.Budget {
		b, ok := byName[name]
		if !ok {
			missing = append(missing, name)
		}
		return b
	}

	snap := &snapshot{
		master:     lookup(e.cfg.MasterBudget),
		categories: make(map[string][]*ynab.Category),
	}
	for _, s := range e.cfg.Satellites {
		snap.satellites = append(snap.satellites, lookup(s.Budget))
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{Missing: missing, Err: ErrBudgetNotFound}
	}

	all := append([]*ynab.Budget{snap.master}, snap.satellites...)

	for _, b := range all {
		categories, err := e.ledger.ListCategories(ctx, b.ID)
		if err != nil {
			return nil, &FetchError{Stage: StageFetchCategories, Budget: b.Name, Err: err}
		}
		visible := e.visibleCategories(categories)
		snap.categories[b.ID] = visible
		b.AssignCategories(visible)
	}

	for _, b := range all {
		txns, err := e.ledger.ListTransactions(ctx, b.ID, since)
		if err != nil {
			return nil, &FetchError{Stage: StageFetchTransactions, Budget: b.Name, Err: err}
		}
		b.AssignTransactions(txns)
		log.Debug().Str("budget", b.Name).Int("transactions", len(txns)).Msg("Fetched transactions")
	}

	return snap, nil
}

// visibleCategories drops hidden, deleted and internal categories
func (e *Engine) visibleCategories(categories []*ynab.Category) []*ynab.Category {
	visible := make([]*ynab.Category, 0, len(categories))
	for _, c := range categories {
		if c.Hidden || c.Deleted || e.cfg.Policy.IsInternalCategory(c.Name) {
			continue
		}
		visible = append(visible, c)
	}
	return visible
}

// masterUniverse returns the master entries held in satellite accounts.
// Deleted entries stay in so a removed mirror is not recreated.
func (e *Engine) masterUniverse(master *ynab.Budget) []ynab.Entry {
	accounts := e.cfg.accountIDs()
	var universe []ynab.Entry
	for _, t := range master.Transactions() {
		if !accounts[t.AccountID] {
			continue
		}
		universe = append(universe, t.Entries()...)
	}
	return universe
}

func (e *Engine) buildRequest(sat Satellite, budget *ynab.Budget, entry ynab.Entry, universe []ynab.Entry, lookup categoryLookup) *Request {
	rate := rates.Resolve(universe, sat.AccountID, entry.Date)
	categoryID, ambiguous := lookup.find(entry.CategoryName)
	identifier := correlate.Of(entry)

	var payee *string
	if entry.PayeeName != "" && !filter.HasAnyPrefix(entry.PayeeName, e.cfg.NullPayeePrefixes) {
		payee = ynab.StringPtr(entry.PayeeName)
	}

	return &Request{
		Budget:     budget.Name,
		Source:     entry,
		Identifier: identifier,
		Rate:       rate,
		Ambiguous:  ambiguous,
		Transaction: &ynab.SaveTransaction{
			AccountID:  sat.AccountID,
			Date:       entry.Date,
			Amount:     rates.Convert(entry.Amount, rate),
			PayeeName:  payee,
			CategoryID: categoryID,
			Memo:       BuildMemo(entry.Memo, identifier, e.cfg.MaxMemoLength),
			Cleared:    ynab.ClearedStatusCleared,
			Approved:   true,
			FlagColor:  entry.FlagColor,
		},
	}
}

// BuildMemo appends identifier to memo, shortening memo so the result fits
// maxLen runes. The identifier is never cut.
func BuildMemo(memo, identifier string, maxLen int) string {
	memo = strings.TrimSpace(memo)
	if memo == "" {
		return identifier
	}
	room := maxLen - len([]rune(identifier)) - 1
	if maxLen > 0 && len([]rune(memo)) > room {
		if room <= 0 {
			return identifier
		}
		memo = strings.TrimSpace(string([]rune(memo)[:room]))
	}
	return memo + " " + identifier
}

// categoryLookup resolves satellite category names to master category ids
type categoryLookup map[string][]*ynab.Category

func newCategoryLookup(categories []*ynab.Category) categoryLookup {
	lookup := make(categoryLookup, len(categories))
	for _, c := range categories {
		name := strings.TrimSpace(c.Name)
		lookup[name] = append(lookup[name], c)
	}
	return lookup
}

// find returns the id of the single master category with the trimmed name;
// nil when there is none or more than one
func (l categoryLookup) find(name string) (*string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}
	matches := l[name]
	switch len(matches) {
	case 0:
		return nil, false
	case 1:
		return ynab.StringPtr(matches[0].ID), false
	default:
		return nil, true
	}
}
