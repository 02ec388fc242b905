// Package filter decides which satellite entries may be mirrored into the
// master budget.
package filter

import (
	"strings"

	"github.com/eshaffer321/ynabsync/internal/correlate"
	"github.com/eshaffer321/ynabsync/pkg/ynab"
)

// DefaultInternalMarker flags categories used for inter-budget settlement
const DefaultInternalMarker = "⚙️"

// DefaultExcludePayeePrefixes are the payee prefixes of transfers
var DefaultExcludePayeePrefixes = []string{"Transfer :"}

// Reason explains why an entry was not mirrored
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonDeleted          Reason = "deleted"
	ReasonOutOfScope       Reason = "out_of_scope"
	ReasonInternalCategory Reason = "internal_category"
	ReasonTransferPayee    Reason = "transfer_payee"
	ReasonAlreadyMirrored  Reason = "already_mirrored"
)

// Reasons lists every exclusion reason in evaluation order
var Reasons = []Reason{
	ReasonDeleted,
	ReasonOutOfScope,
	ReasonInternalCategory,
	ReasonTransferPayee,
	ReasonAlreadyMirrored,
}

// ScopeMode selects how Scope treats its account
type ScopeMode int

const (
	// ScopeModeAll accepts every account
	ScopeModeAll ScopeMode = iota
	// ScopeModeOnly accepts a single account
	ScopeModeOnly
	// ScopeModeExcept accepts every account but one
	ScopeModeExcept
)

// Scope restricts which satellite accounts take part
type Scope struct {
	Mode      ScopeMode
	AccountID string
}

// ScopeAll accepts every account
func ScopeAll() Scope { return Scope{Mode: ScopeModeAll} }

// ScopeOnly accepts only accountID, e.g. the credit card
func ScopeOnly(accountID string) Scope { return Scope{Mode: ScopeModeOnly, AccountID: accountID} }

// ScopeExcept accepts everything but accountID
func ScopeExcept(accountID string) Scope { return Scope{Mode: ScopeModeExcept, AccountID: accountID} }

// Allows reports whether accountID is in scope
func (s Scope) Allows(accountID string) bool {
	switch s.Mode {
	case ScopeModeOnly:
		return accountID == s.AccountID
	case ScopeModeExcept:
		return accountID != s.AccountID
	default:
		return true
	}
}

func (s Scope) String() string {
	switch s.Mode {
	case ScopeModeOnly:
		return "only " + s.AccountID
	case ScopeModeExcept:
		return "except " + s.AccountID
	default:
		return "all"
	}
}

// Policy holds the exclusion rules
type Policy struct {
	Scope                Scope
	InternalMarker       string
	ExcludeTransfers     bool
	ExcludePayeePrefixes []string
}

// DefaultPolicy returns the policy used when nothing is configured
func DefaultPolicy() Policy {
	return Policy{
		Scope:                ScopeAll(),
		InternalMarker:       DefaultInternalMarker,
		ExcludeTransfers:     true,
		ExcludePayeePrefixes: append([]string(nil), DefaultExcludePayeePrefixes...),
	}
}

// Decision is the outcome of evaluating one entry
type Decision struct {
	Eligible bool
	Reason   Reason
	// Match is the master entry that already mirrors the evaluated one
	Match *ynab.Entry
}

// Evaluate applies the rules in order and stops at the first that excludes
func (p Policy) Evaluate(e ynab.Entry, master *correlate.Index) Decision {
	if e.Deleted {
		return Decision{Reason: ReasonDeleted}
	}
	if !p.Scope.Allows(e.AccountID) {
		return Decision{Reason: ReasonOutOfScope}
	}
	if p.IsInternalCategory(e.CategoryName) {
		return Decision{Reason: ReasonInternalCategory}
	}
	if p.ExcludeTransfers && HasAnyPrefix(e.PayeeName, p.ExcludePayeePrefixes) {
		return Decision{Reason: ReasonTransferPayee}
	}
	if m, ok := master.Match(e); ok {
		return Decision{Reason: ReasonAlreadyMirrored, Match: &m}
	}
	return Decision{Eligible: true}
}

// IsInternalCategory reports whether name carries the internal marker
func (p Policy) IsInternalCategory(name string) bool {
	return p.InternalMarker != "" && strings.Contains(name, p.InternalMarker)
}

// HasAnyPrefix reports whether s starts with one of prefixes
func HasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
