package ynab

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
)

// payeeService implements the PayeeService interface
type payeeService struct {
	client *Client
}

// List retrieves all payees
func (s *payeeService) List(ctx context.Context, budgetID string) ([]*Payee, error) {
	var result struct {
		Payees []*Payee `json:"payees" schema:"required"`
	}

	path := "/budgets/" + url.PathEscape(budgetID) + "/payees"
	if err := s.client.get(ctx, path, nil, &result); err != nil {
		return nil, errors.Wrap(err, "failed to get payees")
	}

	return result.Payees, nil
}

// FindByName returns the first live payee with the given name
func (s *payeeService) FindByName(ctx context.Context, budgetID, name string) (*Payee, error) {
	payees, err := s.List(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	for _, p := range payees {
		if !p.Deleted && p.Name == name {
			return p, nil
		}
	}

	return nil, errors.Wrapf(ErrNotFound, "payee %q", name)
}
