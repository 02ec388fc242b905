package reconcile

import (
	"context"
	"fmt"

	"github.com/eshaffer321/ynabsync/pkg/ynab"
)

// fakeLedger is an in-memory ledger. Created transactions land in the
// target budget so a second run sees them.
type fakeLedger struct {
	budgets      []*ynab.Budget
	categories   map[string][]*ynab.Category
	transactions map[string][]*ynab.Transaction

	budgetsErr      error
	categoriesErr   map[string]error
	transactionsErr map[string]error
	createErr       func(txn *ynab.SaveTransaction) error

	created []*ynab.SaveTransaction
	sinces  map[string]*ynab.Date
	seq     int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		categories:      make(map[string][]*ynab.Category),
		transactions:    make(map[string][]*ynab.Transaction),
		categoriesErr:   make(map[string]error),
		transactionsErr: make(map[string]error),
		sinces:          make(map[string]*ynab.Date),
	}
}

func (f *fakeLedger) addBudget(id, name string) {
	f.budgets = append(f.budgets, &ynab.Budget{ID: id, Name: name})
}

func (f *fakeLedger) ListBudgets(ctx context.Context) ([]*ynab.Budget, error) {
	if f.budgetsErr != nil {
		return nil, f.budgetsErr
	}
	out := make([]*ynab.Budget, len(f.budgets))
	for i, b := range f.budgets {
		out[i] = &ynab.Budget{ID: b.ID, Name: b.Name}
	}
	return out, nil
}

func (f *fakeLedger) ListCategories(ctx context.Context, budgetID string) ([]*ynab.Category, error) {
	if err := f.categoriesErr[budgetID]; err != nil {
		return nil, err
	}
	return f.categories[budgetID], nil
}

func (f *fakeLedger) ListTransactions(ctx context.Context, budgetID string, since *ynab.Date) ([]*ynab.Transaction, error) {
	if err := f.transactionsErr[budgetID]; err != nil {
		return nil, err
	}
	f.sinces[budgetID] = since
	var out []*ynab.Transaction
	for _, t := range f.transactions[budgetID] {
		if since != nil && t.Date.Compare(*since) < 0 {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeLedger) CreateTransaction(ctx context.Context, budgetID string, txn *ynab.SaveTransaction) (*ynab.Transaction, error) {
	if f.createErr != nil {
		if err := f.createErr(txn); err != nil {
			return nil, err
		}
	}
	f.seq++
	created := &ynab.Transaction{
		ID:        fmt.Sprintf("%08d-mirror", f.seq),
		Date:      txn.Date,
		Amount:    txn.Amount,
		Memo:      txn.Memo,
		AccountID: txn.AccountID,
		FlagColor: txn.FlagColor,
		Cleared:   txn.Cleared,
		Approved:  txn.Approved,
	}
	if txn.CategoryID != nil {
		created.CategoryID = *txn.CategoryID
	}
	if txn.PayeeName != nil {
		created.PayeeName = *txn.PayeeName
	}
	f.created = append(f.created, txn)
	f.transactions[budgetID] = append(f.transactions[budgetID], created)
	return created, nil
}
