package reconcile

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eshaffer321/ynabsync/internal/filter"
	"github.com/eshaffer321/ynabsync/internal/logger"
	"github.com/eshaffer321/ynabsync/pkg/ynab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	masterID   = "master"
	bobID      = "bob"
	arsID      = "ars"
	bobAccount = "usd-acc-bob"
	arsAccount = "usd-acc-ars"
)

var (
	march1 = ynab.NewDate(2026, 3, 1)
	march8 = ynab.NewDate(2026, 3, 8)
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MasterBudget = "USD Budget"
	cfg.Satellites = []Satellite{
		{Budget: "BOB Budget", AccountID: bobAccount},
		{Budget: "ARS Budget", AccountID: arsAccount},
	}
	since := march1
	cfg.Window = Window{Since: &since}
	return cfg
}

func testLedger() *fakeLedger {
	f := newFakeLedger()
	f.addBudget(masterID, "USD Budget")
	f.addBudget(bobID, "BOB Budget")
	f.addBudget(arsID, "ARS Budget")
	f.addBudget("other", "Unrelated Budget")
	f.categories[masterID] = []*ynab.Category{
		{ID: "m-food", Name: "Food"},
		{ID: "m-rent", Name: "Rent "},
		{ID: "m-hidden", Name: "Travel", Hidden: true},
		{ID: "m-internal", Name: "⚙️ BOB Budget"},
	}
	f.categories[bobID] = []*ynab.Category{
		{ID: "b-food", Name: "Food"},
		{ID: "b-internal", Name: "⚙️ Settlement"},
	}
	return f
}

func groceries() *ynab.Transaction {
	return &ynab.Transaction{
		ID:           "abcd1234-5678-90ab",
		Date:         march8,
		Amount:       -5000,
		Memo:         "Groceries",
		AccountID:    "bob-cash",
		PayeeName:    "Market",
		CategoryID:   "b-food",
		CategoryName: "Food",
	}
}

func newTestEngine(t *testing.T, ledger Ledger, cfg Config) *Engine {
	t.Helper()
	engine, err := New(ledger, cfg, WithClock(func() time.Time {
		return time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return engine
}

func TestEngine_MirrorsIntoEmptyMaster(t *testing.T) {
	ledger := testLedger()
	ledger.transactions[bobID] = []*ynab.Transaction{groceries()}

	summary, err := newTestEngine(t, ledger, testConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 0, summary.SkippedAsDuplicate)
	assert.Equal(t, 0, summary.Failed)
	assert.NotEmpty(t, summary.RunID)

	require.Len(t, ledger.created, 1)
	req := ledger.created[0]
	assert.Equal(t, bobAccount, req.AccountID)
	assert.Equal(t, ynab.Milliunits(-5000), req.Amount)
	assert.Equal(t, "Groceries abcd1234|0308", req.Memo)
	require.NotNil(t, req.CategoryID)
	assert.Equal(t, "m-food", *req.CategoryID)
	require.NotNil(t, req.PayeeName)
	assert.Equal(t, "Market", *req.PayeeName)
	assert.Equal(t, ynab.ClearedStatusCleared, req.Cleared)
	assert.True(t, req.Approved)
	assert.Equal(t, "2026-03-08", req.Date.String())
}

func TestEngine_LogsThroughContextLogger(t *testing.T) {
	ledger := testLedger()
	ledger.transactions[bobID] = []*ynab.Transaction{groceries()}

	var buf bytes.Buffer
	log := logger.WithFields(logger.NewWithWriter(&buf), map[string]interface{}{"command": "sync"})
	ctx := logger.WithContext(context.Background(), log)

	summary, err := newTestEngine(t, ledger, testConfig()).Run(ctx)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"run_id":"`+summary.RunID+`"`)
	assert.Contains(t, out, `"command":"sync"`)
	assert.Contains(t, out, "Planned transactions")
}

func TestEngine_SkipsAlreadyMirrored(t *testing.T) {
	ledger := testLedger()
	ledger.transactions[bobID] = []*ynab.Transaction{groceries()}
	ledger.transactions[masterID] = []*ynab.Transaction{{
		ID:        "ffff0000-1111",
		Date:      march8,
		Amount:    -5000,
		Memo:      "Groceries abcd1234|0308",
		AccountID: bobAccount,
	}}

	summary, err := newTestEngine(t, ledger, testConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 1, summary.SkippedAsDuplicate)
	assert.Empty(t, ledger.created)
}

func TestEngine_MirrorInOtherAccountDoesNotCount(t *testing.T) {
	ledger := testLedger()
	ledger.transactions[bobID] = []*ynab.Transaction{groceries()}
	ledger.transactions[masterID] = []*ynab.Transaction{{
		ID:        "ffff0000-1111",
		Date:      march8,
		Memo:      "Groceries abcd1234|0308",
		AccountID: "usd-checking",
	}}

	summary, err := newTestEngine(t, ledger, testConfig()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
}

func TestEngine_InternalCategoryNeverMirrors(t *testing.T) {
	ledger := testLedger()
	txn := groceries()
	txn.CategoryID = "b-internal"
	txn.CategoryName = "⚙️ Settlement"
	ledger.transactions[bobID] = []*ynab.Transaction{txn}

	summary, err := newTestEngine(t, ledger, testConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Planned)
	assert.Equal(t, 1, summary.Excluded[filter.ReasonInternalCategory])
	assert.Empty(t, ledger.created)
}

func TestEngine_RerunIsIdempotent(t *testing.T) {
	ledger := testLedger()
	ledger.transactions[bobID] = []*ynab.Transaction{groceries()}
	engine := newTestEngine(t, ledger, testConfig())

	first, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.SkippedAsDuplicate)
	assert.Len(t, ledger.created, 1)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestEngine_SplitYieldsOneRequestPerEligiblePart(t *testing.T) {
	ledger := testLedger()
	ledger.transactions[bobID] = []*ynab.Transaction{{
		ID:        "split000-parent",
		Date:      march8,
		Amount:    -10000,
		AccountID: "bob-cash",
		FlagColor: "purple",
		Subtransactions: []*ynab.Subtransaction{
			{ID: "sub11111-a", Amount: -4000, Memo: "food part", CategoryName: "Food"},
			{ID: "sub22222-b", Amount: -6000, CategoryName: "⚙️ Settlement"},
		},
	}}

	summary, err := newTestEngine(t, ledger, testConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Created)
	require.Len(t, ledger.created, 1)
	req := ledger.created[0]
	assert.Equal(t, ynab.Milliunits(-4000), req.Amount)
	assert.Equal(t, "food part sub11111|0308", req.Memo)
	assert.Equal(t, "purple", req.FlagColor)
}

func TestEngine_ConvertsWithLatestRate(t *testing.T) {
	ledger := testLedger()
	txn := groceries()
	txn.Amount = -10000
	ledger.transactions[bobID] = []*ynab.Transaction{txn}
	ledger.transactions[masterID] = []*ynab.Transaction{
		{ID: "rate0001", Date: ynab.NewDate(2026, 3, 2), Amount: -100000, Memo: "[TC:6.90] SELL 100 USDT", AccountID: bobAccount},
		{ID: "rate0002", Date: ynab.NewDate(2026, 3, 5), Amount: -100000, Memo: "[TC:6.97] SELL 100 USDT", AccountID: bobAccount},
		{ID: "rate0003", Date: ynab.NewDate(2026, 3, 10), Amount: -100000, Memo: "[TC:7.50] SELL 100 USDT", AccountID: bobAccount},
		{ID: "rate0004", Date: ynab.NewDate(2026, 3, 6), Amount: -100000, Memo: "[TC:9.99]", AccountID: arsAccount},
	}

	engine := newTestEngine(t, ledger, testConfig())
	plan, err := engine.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, plan.Requests, 1)

	req := plan.Requests[0]
	assert.Equal(t, "6.97", req.Rate.String())
	assert.Equal(t, ynab.Milliunits(-1435), req.Transaction.Amount)
	assert.Empty(t, ledger.created)
}

func TestEngine_NullsTransferPayeesAndResolvesCategories(t *testing.T) {
	ledger := testLedger()
	ledger.categories[masterID] = append(ledger.categories[masterID], &ynab.Category{ID: "m-food-2", Name: " Food"})

	cfg := testConfig()
	cfg.Policy.ExcludeTransfers = false

	ledger.transactions[bobID] = []*ynab.Transaction{
		{ID: "aaaa0000-1", Date: march8, Amount: -1, AccountID: "bob-cash", PayeeName: "Starting Balance", CategoryName: "Rent"},
		{ID: "bbbb0000-1", Date: march8, Amount: -1, AccountID: "bob-cash", PayeeName: "Transfer : Savings", CategoryName: "Food"},
		{ID: "cccc0000-1", Date: march8, Amount: -1, AccountID: "bob-cash", CategoryName: "Unknown"},
	}

	plan, err := newTestEngine(t, ledger, cfg).Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, plan.Requests, 3)

	rent := plan.Requests[0].Transaction
	assert.Nil(t, rent.PayeeName)
	require.NotNil(t, rent.CategoryID)
	assert.Equal(t, "m-rent", *rent.CategoryID)

	ambiguous := plan.Requests[1]
	assert.Nil(t, ambiguous.Transaction.PayeeName)
	assert.Nil(t, ambiguous.Transaction.CategoryID)
	assert.True(t, ambiguous.Ambiguous)

	unknown := plan.Requests[2]
	assert.Nil(t, unknown.Transaction.CategoryID)
	assert.False(t, unknown.Ambiguous)
	assert.Equal(t, "cccc0000|0308", unknown.Transaction.Memo)
}

func TestEngine_ExcludesTransferPayeesByDefault(t *testing.T) {
	ledger := testLedger()
	txn := groceries()
	txn.PayeeName = "Transfer : BISA"
	ledger.transactions[bobID] = []*ynab.Transaction{txn}

	plan, err := newTestEngine(t, ledger, testConfig()).Plan(context.Background())
	require.NoError(t, err)

	assert.Empty(t, plan.Requests)
	assert.Equal(t, 1, plan.Excluded[filter.ReasonTransferPayee])
}

func TestEngine_ScopeOnlyCreditCard(t *testing.T) {
	ledger := testLedger()
	card := groceries()
	card.ID = "card0000-1"
	card.AccountID = "bob-card"
	ledger.transactions[bobID] = []*ynab.Transaction{groceries(), card}

	cfg := testConfig()
	cfg.Policy.Scope = filter.ScopeOnly("bob-card")

	plan, err := newTestEngine(t, ledger, cfg).Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, plan.Requests, 1)
	assert.Equal(t, "card0000-1", plan.Requests[0].Source.ID)
	assert.Equal(t, 1, plan.Excluded[filter.ReasonOutOfScope])

	cfg.Policy.Scope = filter.ScopeExcept("bob-card")
	plan, err = newTestEngine(t, ledger, cfg).Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, plan.Requests, 1)
	assert.Equal(t, "abcd1234-5678-90ab", plan.Requests[0].Source.ID)
}

func TestEngine_CreationFailuresAreIsolated(t *testing.T) {
	ledger := testLedger()
	other := groceries()
	other.ID = "eeee9999-0000"
	ledger.transactions[bobID] = []*ynab.Transaction{groceries(), other}
	boom := errors.New("500 from server")
	ledger.createErr = func(txn *ynab.SaveTransaction) error {
		if txn.Memo == "Groceries abcd1234|0308" {
			return boom
		}
		return nil
	}

	summary, err := newTestEngine(t, ledger, testConfig()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.HasFailures())
	require.Len(t, summary.Failures, 1)
	assert.ErrorIs(t, summary.Failures[0], boom)
	assert.Equal(t, "abcd1234|0308", summary.Failures[0].Request.Identifier)
}

func TestEngine_DryRunWritesNothing(t *testing.T) {
	ledger := testLedger()
	ledger.transactions[bobID] = []*ynab.Transaction{groceries()}

	cfg := testConfig()
	cfg.DryRun = true

	summary, err := newTestEngine(t, ledger, cfg).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.Planned)
	assert.Equal(t, 0, summary.Created)
	assert.Len(t, summary.Requests, 1)
	assert.Empty(t, ledger.created)
}

func TestEngine_MissingBudgetAbortsBeforeWrites(t *testing.T) {
	ledger := testLedger()
	ledger.transactions[bobID] = []*ynab.Transaction{groceries()}

	cfg := testConfig()
	cfg.Satellites = append(cfg.Satellites, Satellite{Budget: "EUR Budget", AccountID: "eur"})

	summary, err := newTestEngine(t, ledger, cfg).Run(context.Background())

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, ErrBudgetNotFound)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"EUR Budget"}, cfgErr.Missing)
	assert.Empty(t, ledger.created)
}

func TestEngine_FetchFailureIsFatal(t *testing.T) {
	ledger := testLedger()
	ledger.transactions[bobID] = []*ynab.Transaction{groceries()}
	timeout := errors.New("i/o timeout")
	ledger.transactionsErr[arsID] = timeout

	summary, err := newTestEngine(t, ledger, testConfig()).Run(context.Background())

	assert.Nil(t, summary)
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, StageFetchTransactions, fetchErr.Stage)
	assert.Equal(t, "ARS Budget", fetchErr.Budget)
	assert.ErrorIs(t, err, timeout)
	assert.Empty(t, ledger.created)
}

func TestEngine_BudgetListFailure(t *testing.T) {
	ledger := testLedger()
	ledger.budgetsErr = errors.New("connection refused")

	_, err := newTestEngine(t, ledger, testConfig()).Run(context.Background())

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, StageFetchBudgets, fetchErr.Stage)
}

func TestEngine_LookbackWindow(t *testing.T) {
	ledger := testLedger()
	cfg := testConfig()
	cfg.Window = Window{LookbackDays: 30}

	_, err := newTestEngine(t, ledger, cfg).Plan(context.Background())
	require.NoError(t, err)

	require.NotNil(t, ledger.sinces[masterID])
	assert.Equal(t, "2026-02-18", ledger.sinces[masterID].String())
	assert.Equal(t, "2026-02-18", ledger.sinces[bobID].String())
}

func TestEngine_DeletedMirrorIsNotRecreated(t *testing.T) {
	ledger := testLedger()
	ledger.transactions[bobID] = []*ynab.Transaction{groceries()}
	ledger.transactions[masterID] = []*ynab.Transaction{{
		ID:        "ffff0000-1111",
		Date:      march8,
		Memo:      "Groceries abcd1234|0308",
		AccountID: bobAccount,
		Deleted:   true,
	}}

	plan, err := newTestEngine(t, ledger, testConfig()).Plan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, plan.Requests)
}

func TestEngine_CancelledDuringSubmit(t *testing.T) {
	ledger := testLedger()
	ledger.transactions[bobID] = []*ynab.Transaction{groceries()}

	ctx, cancel := context.WithCancel(context.Background())
	ledger.createErr = func(txn *ynab.SaveTransaction) error {
		cancel()
		return nil
	}
	other := groceries()
	other.ID = "eeee9999-0000"
	ledger.transactions[bobID] = append(ledger.transactions[bobID], other)

	summary, err := newTestEngine(t, ledger, testConfig()).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Created)
	assert.Len(t, ledger.created, 1)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(newFakeLedger(), Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg := testConfig()
	cfg.Satellites = append(cfg.Satellites, Satellite{Budget: "BOB Budget", AccountID: "x"})
	_, err = New(newFakeLedger(), cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(nil, testConfig())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
