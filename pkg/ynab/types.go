package ynab

import (
	"fmt"
	"time"
)

// Cleared states
const (
	ClearedStatusCleared    = "cleared"
	ClearedStatusUncleared  = "uncleared"
	ClearedStatusReconciled = "reconciled"
)

// CurrencyFormat describes how a budget renders amounts
type CurrencyFormat struct {
	ISOCode          string `json:"iso_code" schema:"required"`
	ExampleFormat    string `json:"example_format"`
	DecimalDigits    int    `json:"decimal_digits"`
	DecimalSeparator string `json:"decimal_separator"`
	SymbolFirst      bool   `json:"symbol_first"`
	GroupSeparator   string `json:"group_separator"`
	CurrencySymbol   string `json:"currency_symbol"`
	DisplaySymbol    bool   `json:"display_symbol"`
}

// Budget represents a budget plan and, once assigned, its categories and
// transactions
type Budget struct {
	ID             string          `json:"id" schema:"required"`
	Name           string          `json:"name" schema:"required"`
	LastModifiedOn *time.Time      `json:"last_modified_on"`
	FirstMonth     string          `json:"first_month,omitempty"`
	LastMonth      string          `json:"last_month,omitempty"`
	CurrencyFormat *CurrencyFormat `json:"currency_format"`

	Categories    []*Category    `json:"-"`
	Uncategorized []*Transaction `json:"-"`
}

// ISOCode returns the budget's currency code, empty when unknown
func (b *Budget) ISOCode() string {
	if b.CurrencyFormat == nil {
		return ""
	}
	return b.CurrencyFormat.ISOCode
}

// AssignCategories replaces the budget's category list
func (b *Budget) AssignCategories(categories []*Category) {
	b.Categories = categories
}

// AssignTransactions places each transaction into the category it
// references, or into Uncategorized when none of the budget's categories
// match. Previous assignments are discarded.
func (b *Budget) AssignTransactions(transactions []*Transaction) {
	byID := make(map[string]*Category, len(b.Categories))
	for _, c := range b.Categories {
		c.Transactions = nil
		byID[c.ID] = c
	}
	b.Uncategorized = nil

	for _, t := range transactions {
		if c, ok := byID[t.CategoryID]; ok && t.CategoryID != "" {
			c.Transactions = append(c.Transactions, t)
			continue
		}
		b.Uncategorized = append(b.Uncategorized, t)
	}
}

// Transactions returns every assigned transaction, category order first
func (b *Budget) Transactions() []*Transaction {
	var all []*Transaction
	for _, c := range b.Categories {
		all = append(all, c.Transactions...)
	}
	return append(all, b.Uncategorized...)
}

// Entries flattens every assigned transaction into reconciliation units
func (b *Budget) Entries() []Entry {
	return FlattenEntries(b.Transactions())
}

func (b *Budget) String() string {
	return fmt.Sprintf("%s (%s)", b.Name, b.ID)
}

// CategoryGroup represents a group of categories
type CategoryGroup struct {
	ID         string      `json:"id" schema:"required"`
	Name       string      `json:"name" schema:"required"`
	Hidden     bool        `json:"hidden"`
	Deleted    bool        `json:"deleted"`
	Categories []*Category `json:"categories" schema:"required"`
}

// Category represents a budget category
type Category struct {
	ID                string     `json:"id" schema:"required"`
	CategoryGroupID   string     `json:"category_group_id"`
	CategoryGroupName string     `json:"category_group_name,omitempty"`
	Name              string     `json:"name" schema:"required"`
	Hidden            bool       `json:"hidden" schema:"required"`
	Note              string     `json:"note,omitempty"`
	Budgeted          Milliunits `json:"budgeted"`
	Activity          Milliunits `json:"activity"`
	Balance           Milliunits `json:"balance"`
	Deleted           bool       `json:"deleted" schema:"required"`

	Transactions []*Transaction `json:"-"`
}

// Equal reports whether both categories have the same identifier
func (c *Category) Equal(o *Category) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.ID == o.ID
}

// Transaction represents a ledger transaction
type Transaction struct {
	ID                    string            `json:"id" schema:"required"`
	Date                  Date              `json:"date" schema:"required"`
	Amount                Milliunits        `json:"amount" schema:"required"`
	Memo                  string            `json:"memo"`
	Cleared               string            `json:"cleared"`
	Approved              bool              `json:"approved"`
	FlagColor             string            `json:"flag_color"`
	FlagName              string            `json:"flag_name,omitempty"`
	AccountID             string            `json:"account_id" schema:"required"`
	AccountName           string            `json:"account_name"`
	PayeeID               string            `json:"payee_id"`
	PayeeName             string            `json:"payee_name"`
	CategoryID            string            `json:"category_id"`
	CategoryName          string            `json:"category_name"`
	TransferAccountID     string            `json:"transfer_account_id"`
	TransferTransactionID string            `json:"transfer_transaction_id"`
	MatchedTransactionID  string            `json:"matched_transaction_id"`
	ImportID              string            `json:"import_id"`
	ImportPayeeName       string            `json:"import_payee_name,omitempty"`
	DebtTransactionType   string            `json:"debt_transaction_type,omitempty"`
	Deleted               bool              `json:"deleted" schema:"required"`
	Subtransactions       []*Subtransaction `json:"subtransactions"`
}

// IsSplit reports whether the transaction is divided into subtransactions
func (t *Transaction) IsSplit() bool {
	return len(t.Subtransactions) > 0
}

func (t *Transaction) String() string {
	return fmt.Sprintf("%s %s %s", t.Date, t.CategoryName, t.Amount)
}

// Subtransaction is one part of a split transaction
type Subtransaction struct {
	ID                    string     `json:"id" schema:"required"`
	TransactionID         string     `json:"transaction_id"`
	Amount                Milliunits `json:"amount" schema:"required"`
	Memo                  string     `json:"memo"`
	PayeeID               string     `json:"payee_id"`
	PayeeName             string     `json:"payee_name"`
	CategoryID            string     `json:"category_id"`
	CategoryName          string     `json:"category_name"`
	TransferAccountID     string     `json:"transfer_account_id"`
	TransferTransactionID string     `json:"transfer_transaction_id"`
	Deleted               bool       `json:"deleted"`
}

// SaveTransaction is the body of a create request. Nil pointers are sent
// as JSON null.
type SaveTransaction struct {
	AccountID  string     `json:"account_id"`
	Date       Date       `json:"date"`
	Amount     Milliunits `json:"amount"`
	PayeeID    *string    `json:"payee_id,omitempty"`
	PayeeName  *string    `json:"payee_name"`
	CategoryID *string    `json:"category_id"`
	Memo       string     `json:"memo,omitempty"`
	Cleared    string     `json:"cleared,omitempty"`
	Approved   bool       `json:"approved"`
	FlagColor  string     `json:"flag_color,omitempty"`
	ImportID   string     `json:"import_id,omitempty"`
}

// ImportResult is the outcome of a bulk create
type ImportResult struct {
	TransactionIDs     []string       `json:"transaction_ids" schema:"required"`
	Transactions       []*Transaction `json:"transactions"`
	DuplicateImportIDs []string       `json:"duplicate_import_ids"`
	ServerKnowledge    int64          `json:"server_knowledge"`
}

// Account represents a budget account
type Account struct {
	ID               string     `json:"id" schema:"required"`
	Name             string     `json:"name" schema:"required"`
	Type             string     `json:"type"`
	OnBudget         bool       `json:"on_budget"`
	Closed           bool       `json:"closed"`
	Note             string     `json:"note,omitempty"`
	Balance          Milliunits `json:"balance" schema:"required"`
	ClearedBalance   Milliunits `json:"cleared_balance"`
	UnclearedBalance Milliunits `json:"uncleared_balance"`
	TransferPayeeID  string     `json:"transfer_payee_id"`
	Deleted          bool       `json:"deleted" schema:"required"`
}

// Payee represents a payee
type Payee struct {
	ID                string `json:"id" schema:"required"`
	Name              string `json:"name" schema:"required"`
	TransferAccountID string `json:"transfer_account_id"`
	Deleted           bool   `json:"deleted"`
}

// User is the owner of the access token
type User struct {
	ID string `json:"id" schema:"required"`
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
