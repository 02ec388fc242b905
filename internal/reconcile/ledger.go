package reconcile

import (
	"context"

	"github.com/eshaffer321/ynabsync/pkg/ynab"
)

// Ledger is the subset of the budgeting API a run needs
type Ledger interface {
	ListBudgets(ctx context.Context) ([]*ynab.Budget, error)
	ListCategories(ctx context.Context, budgetID string) ([]*ynab.Category, error)
	ListTransactions(ctx context.Context, budgetID string, since *ynab.Date) ([]*ynab.Transaction, error)
	CreateTransaction(ctx context.Context, budgetID string, txn *ynab.SaveTransaction) (*ynab.Transaction, error)
}

// clientLedger serves a Ledger from the API client
type clientLedger struct {
	client *ynab.Client
}

// NewClientLedger adapts client to Ledger
func NewClientLedger(client *ynab.Client) Ledger {
	return &clientLedger{client: client}
}

func (l *clientLedger) ListBudgets(ctx context.Context) ([]*ynab.Budget, error) {
	return l.client.Budgets.List(ctx)
}

func (l *clientLedger) ListCategories(ctx context.Context, budgetID string) ([]*ynab.Category, error) {
	return l.client.Categories.List(ctx, budgetID)
}

func (l *clientLedger) ListTransactions(ctx context.Context, budgetID string, since *ynab.Date) ([]*ynab.Transaction, error) {
	return l.client.Transactions.List(ctx, budgetID, since)
}

func (l *clientLedger) CreateTransaction(ctx context.Context, budgetID string, txn *ynab.SaveTransaction) (*ynab.Transaction, error) {
	return l.client.Transactions.Create(ctx, budgetID, txn)
}
