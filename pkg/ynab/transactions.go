package ynab

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// transactionService implements the TransactionService interface
type transactionService struct {
	client *Client
}

type transactionsResponse struct {
	Transactions    []*Transaction `json:"transactions" schema:"required"`
	ServerKnowledge int64          `json:"server_knowledge"`
}

// List retrieves a budget's transactions
func (s *transactionService) List(ctx context.Context, budgetID string, since *Date) ([]*Transaction, error) {
	var result transactionsResponse

	path := "/budgets/" + url.PathEscape(budgetID) + "/transactions"
	if err := s.client.get(ctx, path, sinceQuery(since), &result); err != nil {
		return nil, errors.Wrap(err, "failed to get transactions")
	}

	return result.Transactions, nil
}

// ListByAccount retrieves the transactions of one account
func (s *transactionService) ListByAccount(ctx context.Context, budgetID, accountID string, since *Date) ([]*Transaction, error) {
	var result transactionsResponse

	path := "/budgets/" + url.PathEscape(budgetID) + "/accounts/" + url.PathEscape(accountID) + "/transactions"
	if err := s.client.get(ctx, path, sinceQuery(since), &result); err != nil {
		return nil, errors.Wrap(err, "failed to get account transactions")
	}

	return result.Transactions, nil
}

// Create creates a single transaction
func (s *transactionService) Create(ctx context.Context, budgetID string, txn *SaveTransaction) (*Transaction, error) {
	if txn == nil {
		return nil, errors.New("transaction is required")
	}

	body := map[string]interface{}{
		"transaction": txn,
	}

	var result struct {
		TransactionIDs []string     `json:"transaction_ids"`
		Transaction    *Transaction `json:"transaction" schema:"required"`
	}

	path := "/budgets/" + url.PathEscape(budgetID) + "/transactions"
	if err := s.client.post(ctx, path, body, http.StatusCreated, &result); err != nil {
		return nil, errors.Wrap(err, "failed to create transaction")
	}

	return result.Transaction, nil
}

// Import creates many transactions at once. Entries whose import_id the
// ledger already knows come back in DuplicateImportIDs.
func (s *transactionService) Import(ctx context.Context, budgetID string, txns []*SaveTransaction) (*ImportResult, error) {
	if len(txns) == 0 {
		return &ImportResult{}, nil
	}

	body := map[string]interface{}{
		"transactions": txns,
	}

	var result ImportResult

	path := "/budgets/" + url.PathEscape(budgetID) + "/transactions"
	if err := s.client.post(ctx, path, body, http.StatusCreated, &result); err != nil {
		return nil, errors.Wrap(err, "failed to import transactions")
	}

	return &result, nil
}

func sinceQuery(since *Date) url.Values {
	if since == nil || since.IsZero() {
		return nil
	}
	return url.Values{"since_date": []string{since.String()}}
}
