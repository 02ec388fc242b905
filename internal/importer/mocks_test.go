package importer

import (
	"context"
	"io"

	"github.com/eshaffer321/ynabsync/internal/sources"
	"github.com/eshaffer321/ynabsync/pkg/ynab"
	"github.com/stretchr/testify/mock"
)

type mockBudgets struct{ mock.Mock }

func (m *mockBudgets) List(ctx context.Context) ([]*ynab.Budget, error) {
	args := m.Called(ctx)
	budgets, _ := args.Get(0).([]*ynab.Budget)
	return budgets, args.Error(1)
}

func (m *mockBudgets) FindByName(ctx context.Context, name string) (*ynab.Budget, error) {
	args := m.Called(ctx, name)
	budget, _ := args.Get(0).(*ynab.Budget)
	return budget, args.Error(1)
}

type mockTransactions struct{ mock.Mock }

func (m *mockTransactions) List(ctx context.Context, budgetID string, since *ynab.Date) ([]*ynab.Transaction, error) {
	args := m.Called(ctx, budgetID, since)
	txns, _ := args.Get(0).([]*ynab.Transaction)
	return txns, args.Error(1)
}

func (m *mockTransactions) ListByAccount(ctx context.Context, budgetID, accountID string, since *ynab.Date) ([]*ynab.Transaction, error) {
	args := m.Called(ctx, budgetID, accountID, since)
	txns, _ := args.Get(0).([]*ynab.Transaction)
	return txns, args.Error(1)
}

func (m *mockTransactions) Create(ctx context.Context, budgetID string, txn *ynab.SaveTransaction) (*ynab.Transaction, error) {
	args := m.Called(ctx, budgetID, txn)
	created, _ := args.Get(0).(*ynab.Transaction)
	return created, args.Error(1)
}

func (m *mockTransactions) Import(ctx context.Context, budgetID string, txns []*ynab.SaveTransaction) (*ynab.ImportResult, error) {
	args := m.Called(ctx, budgetID, txns)
	result, _ := args.Get(0).(*ynab.ImportResult)
	return result, args.Error(1)
}

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) List(ctx context.Context, budgetID string) ([]*ynab.Account, error) {
	args := m.Called(ctx, budgetID)
	accounts, _ := args.Get(0).([]*ynab.Account)
	return accounts, args.Error(1)
}

func (m *mockAccounts) Get(ctx context.Context, budgetID, accountID string) (*ynab.Account, error) {
	args := m.Called(ctx, budgetID, accountID)
	account, _ := args.Get(0).(*ynab.Account)
	return account, args.Error(1)
}

type mockPayees struct{ mock.Mock }

func (m *mockPayees) List(ctx context.Context, budgetID string) ([]*ynab.Payee, error) {
	args := m.Called(ctx, budgetID)
	payees, _ := args.Get(0).([]*ynab.Payee)
	return payees, args.Error(1)
}

func (m *mockPayees) FindByName(ctx context.Context, budgetID, name string) (*ynab.Payee, error) {
	args := m.Called(ctx, budgetID, name)
	payee, _ := args.Get(0).(*ynab.Payee)
	return payee, args.Error(1)
}

type mocks struct {
	budgets      *mockBudgets
	transactions *mockTransactions
	accounts     *mockAccounts
	payees       *mockPayees
}

func newMocks() *mocks {
	return &mocks{
		budgets:      &mockBudgets{},
		transactions: &mockTransactions{},
		accounts:     &mockAccounts{},
		payees:       &mockPayees{},
	}
}

func (m *mocks) services() Services {
	return Services{
		Budgets:      m.budgets,
		Transactions: m.transactions,
		Accounts:     m.accounts,
		Payees:       m.payees,
	}
}

// stubSource returns fixed records and remembers the options it saw
type stubSource struct {
	txns []*ynab.SaveTransaction
	err  error
	seen sources.Options
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Normalize(_ io.Reader, opts sources.Options) ([]*ynab.SaveTransaction, error) {
	s.seen = opts
	var kept []*ynab.SaveTransaction
	for _, t := range s.txns {
		if opts.Keep(t.Date) {
			kept = append(kept, t)
		}
	}
	return kept, s.err
}
