// Package importer loads normalized source records into a budget account
// through the bulk import endpoint. The ledger drops records whose import
// id it already knows, so overlapping exports are safe to load again.
package importer

import (
	"context"
	"sync"

	"github.com/eshaffer321/ynabsync/internal/logger"
	"github.com/eshaffer321/ynabsync/pkg/ynab"
	"github.com/pkg/errors"
)

// ErrAccountNotFound is returned when the account is not in the budget
var ErrAccountNotFound = errors.New("account not found")

// Services are the API services an Importer uses
type Services struct {
	Budgets      ynab.BudgetService
	Transactions ynab.TransactionService
	Accounts     ynab.AccountService
	Payees       ynab.PayeeService
}

// ServicesFrom returns the services of client
func ServicesFrom(client *ynab.Client) Services {
	return Services{
		Budgets:      client.Budgets,
		Transactions: client.Transactions,
		Accounts:     client.Accounts,
		Payees:       client.Payees,
	}
}

// Balance is an account's balance split by cleared state
type Balance struct {
	Balance   ynab.Milliunits
	Cleared   ynab.Milliunits
	Uncleared ynab.Milliunits
}

// ImportSummary counts the outcome of a bulk import
type ImportSummary struct {
	Imported   int
	Duplicates int
}

// Importer targets one account of one budget
type Importer struct {
	BudgetName string
	AccountID  string

	svc Services

	mu     sync.Mutex
	budget *ynab.Budget
}

// New creates an importer for accountID in the budget named budgetName
func New(svc Services, budgetName, accountID string) *Importer {
	return &Importer{
		BudgetName: budgetName,
		AccountID:  accountID,
		svc:        svc,
	}
}

// Budget resolves the budget name. The budget is cached after the first
// successful lookup.
func (i *Importer) Budget(ctx context.Context) (*ynab.Budget, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.budget != nil {
		return i.budget, nil
	}

	budget, err := i.svc.Budgets.FindByName(ctx, i.BudgetName)
	if err != nil {
		return nil, err
	}
	i.budget = budget
	return budget, nil
}

// BudgetID returns the id of the resolved budget
func (i *Importer) BudgetID(ctx context.Context) (string, error) {
	budget, err := i.Budget(ctx)
	if err != nil {
		return "", err
	}
	return budget.ID, nil
}

// LastTransactionDate returns the date of the account's most recent live
// transaction, or nil when the account is empty
func (i *Importer) LastTransactionDate(ctx context.Context) (*ynab.Date, error) {
	budgetID, err := i.BudgetID(ctx)
	if err != nil {
		return nil, err
	}

	txns, err := i.svc.Transactions.ListByAccount(ctx, budgetID, i.AccountID, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read account history")
	}

	var last *ynab.Date
	for _, t := range txns {
		if t.Deleted {
			continue
		}
		if last == nil || t.Date.Compare(*last) > 0 {
			d := t.Date
			last = &d
		}
	}
	return last, nil
}

// AccountBalance returns the account's current balance
func (i *Importer) AccountBalance(ctx context.Context) (*Balance, error) {
	budgetID, err := i.BudgetID(ctx)
	if err != nil {
		return nil, err
	}

	account, err := i.svc.Accounts.Get(ctx, budgetID, i.AccountID)
	if err != nil {
		if errors.Is(err, ynab.ErrNotFound) {
			return nil, errors.Wrapf(ErrAccountNotFound, "%q in budget %q", i.AccountID, i.BudgetName)
		}
		return nil, err
	}

	return &Balance{
		Balance:   account.Balance,
		Cleared:   account.ClearedBalance,
		Uncleared: account.UnclearedBalance,
	}, nil
}

// TransferPayeeID looks up the id of the live payee called name
func (i *Importer) TransferPayeeID(ctx context.Context, name string) (string, error) {
	budgetID, err := i.BudgetID(ctx)
	if err != nil {
		return "", err
	}

	payee, err := i.svc.Payees.FindByName(ctx, budgetID, name)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve payee %q", name)
	}
	return payee.ID, nil
}

// Import sends txns in one bulk request. Records the ledger already holds
// are counted as duplicates.
func (i *Importer) Import(ctx context.Context, txns []*ynab.SaveTransaction) (ImportSummary, error) {
	log := logger.FromContext(ctx)
	if len(txns) == 0 {
		log.Info().Msg("No transactions to import")
		return ImportSummary{}, nil
	}

	budgetID, err := i.BudgetID(ctx)
	if err != nil {
		return ImportSummary{}, err
	}

	result, err := i.svc.Transactions.Import(ctx, budgetID, txns)
	if err != nil {
		return ImportSummary{}, errors.Wrap(err, "bulk import failed")
	}

	summary := ImportSummary{Duplicates: len(result.DuplicateImportIDs)}
	summary.Imported = len(txns) - summary.Duplicates

	log.Info().
		Str("budget", i.BudgetName).
		Str("account_id", i.AccountID).
		Int("imported", summary.Imported).
		Int("duplicates", summary.Duplicates).
		Msg("Imported transactions")

	return summary, nil
}
