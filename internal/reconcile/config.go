package reconcile

import (
	"time"

	"github.com/eshaffer321/ynabsync/internal/filter"
	"github.com/eshaffer321/ynabsync/pkg/ynab"
)

const (
	// DefaultLookbackDays bounds the fetch window when no date is given
	DefaultLookbackDays = 30

	// DefaultMaxMemoLength is the longest memo written to the master
	DefaultMaxMemoLength = 200
)

// DefaultNullPayeePrefixes are payees that never carry over to the master
var DefaultNullPayeePrefixes = []string{
	"Transfer :",
	"Starting Balance",
	"Manual Balance Adjustment",
	"Reconciliation Balance Adjustment",
}

// Satellite is a foreign-currency budget mirrored into one master account
type Satellite struct {
	Budget    string
	AccountID string
}

// Window bounds how far back transactions are fetched. Since wins over
// LookbackDays; with neither the whole history is read.
type Window struct {
	Since        *ynab.Date
	LookbackDays int
}

// Start returns the first day of the window relative to now, or nil for
// an unbounded window
func (w Window) Start(now time.Time) *ynab.Date {
	if w.Since != nil && !w.Since.IsZero() {
		since := *w.Since
		return &since
	}
	if w.LookbackDays > 0 {
		since := ynab.DateOf(now).AddDays(-w.LookbackDays)
		return &since
	}
	return nil
}

// Config describes a run
type Config struct {
	MasterBudget      string
	Satellites        []Satellite
	Policy            filter.Policy
	Window            Window
	NullPayeePrefixes []string
	DryRun            bool
	MaxMemoLength     int
}

// DefaultConfig returns a config with every default applied
func DefaultConfig() Config {
	return Config{
		Policy:            filter.DefaultPolicy(),
		Window:            Window{LookbackDays: DefaultLookbackDays},
		NullPayeePrefixes: append([]string(nil), DefaultNullPayeePrefixes...),
		MaxMemoLength:     DefaultMaxMemoLength,
	}
}

// Validate checks the config describes a runnable sync
func (c Config) Validate() error {
	if c.MasterBudget == "" {
		return &ConfigurationError{Reason: "master budget is required", Err: ErrInvalidConfig}
	}
	if len(c.Satellites) == 0 {
		return &ConfigurationError{Reason: "at least one satellite budget is required", Err: ErrInvalidConfig}
	}
	seen := map[string]bool{c.MasterBudget: true}
	for _, s := range c.Satellites {
		if s.Budget == "" || s.AccountID == "" {
			return &ConfigurationError{Reason: "satellite budget and account are required", Err: ErrInvalidConfig}
		}
		if seen[s.Budget] {
			return &ConfigurationError{Reason: "budget " + s.Budget + " listed twice", Err: ErrInvalidConfig}
		}
		seen[s.Budget] = true
	}
	if c.MaxMemoLength < 0 {
		return &ConfigurationError{Reason: "max memo length must not be negative", Err: ErrInvalidConfig}
	}
	return nil
}

// accountIDs returns the master accounts the satellites mirror into
func (c Config) accountIDs() map[string]bool {
	ids := make(map[string]bool, len(c.Satellites))
	for _, s := range c.Satellites {
		ids[s.AccountID] = true
	}
	return ids
}
