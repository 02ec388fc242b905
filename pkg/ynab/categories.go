package ynab

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
)

// categoryService implements the CategoryService interface
type categoryService struct {
	client *Client
}

// Groups retrieves the category groups of a budget
func (s *categoryService) Groups(ctx context.Context, budgetID string) ([]*CategoryGroup, error) {
	var result struct {
		CategoryGroups []*CategoryGroup `json:"category_groups" schema:"required"`
	}

	path := "/budgets/" + url.PathEscape(budgetID) + "/categories"
	if err := s.client.get(ctx, path, nil, &result); err != nil {
		return nil, errors.Wrap(err, "failed to get categories")
	}

	return result.CategoryGroups, nil
}

// List flattens the category groups, copying each group's name down
func (s *categoryService) List(ctx context.Context, budgetID string) ([]*Category, error) {
	groups, err := s.Groups(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	var categories []*Category
	for _, g := range groups {
		for _, c := range g.Categories {
			if c.CategoryGroupID == "" {
				c.CategoryGroupID = g.ID
			}
			if c.CategoryGroupName == "" {
				c.CategoryGroupName = g.Name
			}
			categories = append(categories, c)
		}
	}

	return categories, nil
}
