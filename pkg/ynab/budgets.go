package ynab

import (
	"context"

	"github.com/pkg/errors"
)

// budgetService implements the BudgetService interface
type budgetService struct {
	client *Client
}

// List retrieves all budgets
func (s *budgetService) List(ctx context.Context) ([]*Budget, error) {
	var result struct {
		Budgets []*Budget `json:"budgets" schema:"required"`
	}

	if err := s.client.get(ctx, "/budgets", nil, &result); err != nil {
		return nil, errors.Wrap(err, "failed to get budgets")
	}

	return result.Budgets, nil
}

// FindByName returns the budget whose name matches exactly
func (s *budgetService) FindByName(ctx context.Context, name string) (*Budget, error) {
	budgets, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, b := range budgets {
		if b.Name == name {
			return b, nil
		}
	}

	return nil, errors.Wrapf(ErrBudgetNotFound, "%q", name)
}
