package ynab

import (
	"context"

	internalTypes "github.com/eshaffer321/ynabsync/internal/types"
)

// BudgetService handles budget operations
type BudgetService interface {
	// List retrieves every budget the token can access
	List(ctx context.Context) ([]*Budget, error)

	// FindByName returns the budget with exactly the given name
	FindByName(ctx context.Context, name string) (*Budget, error)
}

// CategoryService handles category operations
type CategoryService interface {
	// List retrieves the budget's categories with their group name filled in
	List(ctx context.Context, budgetID string) ([]*Category, error)

	// Groups retrieves the raw category groups
	Groups(ctx context.Context, budgetID string) ([]*CategoryGroup, error)
}

// TransactionService handles transaction operations
type TransactionService interface {
	// List retrieves transactions, optionally only those on or after since
	List(ctx context.Context, budgetID string, since *Date) ([]*Transaction, error)

	// ListByAccount retrieves the transactions of a single account
	ListByAccount(ctx context.Context, budgetID, accountID string, since *Date) ([]*Transaction, error)

	// Create creates a single transaction
	Create(ctx context.Context, budgetID string, txn *SaveTransaction) (*Transaction, error)

	// Import creates many transactions at once, skipping known import ids
	Import(ctx context.Context, budgetID string, txns []*SaveTransaction) (*ImportResult, error)
}

// AccountService handles account operations
type AccountService interface {
	// List retrieves all accounts of a budget
	List(ctx context.Context, budgetID string) ([]*Account, error)

	// Get retrieves a single account
	Get(ctx context.Context, budgetID, accountID string) (*Account, error)
}

// PayeeService handles payee operations
type PayeeService interface {
	// List retrieves all payees of a budget
	List(ctx context.Context, budgetID string) ([]*Payee, error)

	// FindByName returns the first non-deleted payee with the given name
	FindByName(ctx context.Context, budgetID, name string) (*Payee, error)
}

// AuthService handles the access token
type AuthService interface {
	// Verify checks the token against the API and returns its owner
	Verify(ctx context.Context) (*User, error)

	// SaveSession saves the token to a file
	SaveSession(path string) error

	// LoadSession loads the token from a file
	LoadSession(path string) error

	// GetSession returns the current session
	GetSession() (*Session, error)
}

// Session represents an authenticated session
type Session = internalTypes.Session
