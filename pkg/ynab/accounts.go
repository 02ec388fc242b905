package ynab

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
)

// accountService implements the AccountService interface
type accountService struct {
	client *Client
}

// List retrieves all accounts
func (s *accountService) List(ctx context.Context, budgetID string) ([]*Account, error) {
	var result struct {
		Accounts []*Account `json:"accounts" schema:"required"`
	}

	path := "/budgets/" + url.PathEscape(budgetID) + "/accounts"
	if err := s.client.get(ctx, path, nil, &result); err != nil {
		return nil, errors.Wrap(err, "failed to get accounts")
	}

	return result.Accounts, nil
}

// Get retrieves a single account
func (s *accountService) Get(ctx context.Context, budgetID, accountID string) (*Account, error) {
	var result struct {
		Account *Account `json:"account" schema:"required"`
	}

	path := "/budgets/" + url.PathEscape(budgetID) + "/accounts/" + url.PathEscape(accountID)
	if err := s.client.get(ctx, path, nil, &result); err != nil {
		return nil, errors.Wrapf(err, "failed to get account %s", accountID)
	}

	return result.Account, nil
}
