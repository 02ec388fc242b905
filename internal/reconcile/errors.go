package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eshaffer321/ynabsync/pkg/ynab"
)

var (
	// ErrBudgetNotFound is returned when an allow-listed budget is missing
	ErrBudgetNotFound = ynab.ErrBudgetNotFound

	// ErrInvalidConfig is returned when the run cannot be configured
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAmbiguousCategory is logged when a category name matches more than
	// one master category; the entry is created uncategorized
	ErrAmbiguousCategory = errors.New("ambiguous category name")
)

// Stage names a step of a run
type Stage string

const (
	StageFetchBudgets      Stage = "fetch_budgets"
	StageFetchCategories   Stage = "fetch_categories"
	StageFetchTransactions Stage = "fetch_transactions"
	StageSubmit            Stage = "submit"
)

// ConfigurationError aborts a run before anything is written
type ConfigurationError struct {
	Missing []string
	Reason  string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%v: %s", e.Err, strings.Join(quoteAll(e.Missing), ", "))
	}
	return fmt.Sprintf("%v: %s", e.Err, e.Reason)
}

// Unwrap returns the wrapped error
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// FetchError is a read failure. No reconciliation happens against a
// partial snapshot.
type FetchError struct {
	Stage  Stage
	Budget string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Budget == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Stage, e.Budget, e.Err)
}

// Unwrap returns the wrapped error
func (e *FetchError) Unwrap() error {
	return e.Err
}

// CreationError is a failed create. It is counted, never fatal.
type CreationError struct {
	Request *Request
	Err     error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create %s from %s: %v", e.Request.Identifier, e.Request.Budget, e.Err)
}

// Unwrap returns the wrapped error
func (e *CreationError) Unwrap() error {
	return e.Err
}

func quoteAll(names []string) []string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return quoted
}
