// Package rates recovers exchange rates recorded in master-budget memos and
// converts foreign-currency amounts with them.
package rates

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/eshaffer321/ynabsync/pkg/ynab"
	"github.com/shopspring/decimal"
)

var tagPattern = regexp.MustCompile(`\[TC:\s*([0-9]+(?:[.,][0-9]+)?)\s*\]`)

// One is the rate used when nothing better is known
var One = decimal.NewFromInt(1)

// Sample is a rate observed on a given entry
type Sample struct {
	Date  ynab.Date
	Rate  decimal.Decimal
	Entry ynab.Entry
}

// Tag formats a rate the way ParseTag reads it, e.g. "[TC:6.97]"
func Tag(rate decimal.Decimal) string {
	return fmt.Sprintf("[TC:%s]", rate.StringFixed(2))
}

// ParseTag extracts the rate from a memo carrying "[TC:<decimal>]". Zero
// and negative rates are ignored.
func ParseTag(memo string) (decimal.Decimal, bool) {
	m := tagPattern.FindStringSubmatch(memo)
	if m == nil {
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(strings.Replace(m[1], ",", ".", 1))
	if err != nil || !rate.IsPositive() {
		return decimal.Zero, false
	}
	return rate, true
}

// Samples returns the tagged entries of account dated on or before the
// given day, most recent first and highest rate first within a day.
func Samples(entries []ynab.Entry, accountID string, onOrBefore ynab.Date) []Sample {
	var samples []Sample
	for _, e := range entries {
		if e.AccountID != accountID || e.Date.Compare(onOrBefore) > 0 {
			continue
		}
		rate, ok := ParseTag(e.Memo)
		if !ok {
			continue
		}
		samples = append(samples, Sample{Date: e.Date, Rate: rate, Entry: e})
	}

	sort.SliceStable(samples, func(i, j int) bool {
		if c := samples[i].Date.Compare(samples[j].Date); c != 0 {
			return c > 0
		}
		return samples[i].Rate.GreaterThan(samples[j].Rate)
	})
	return samples
}

// Resolve returns the rate in effect for account on the given day, or 1
// when no tagged entry precedes it.
func Resolve(entries []ynab.Entry, accountID string, onOrBefore ynab.Date) decimal.Decimal {
	samples := Samples(entries, accountID, onOrBefore)
	if len(samples) == 0 {
		return One
	}
	return samples[0].Rate
}

// Convert divides amount by rate, rounding half away from zero to whole
// milliunits. A non-positive rate converts as 1.
func Convert(amount ynab.Milliunits, rate decimal.Decimal) ynab.Milliunits {
	if !rate.IsPositive() {
		return amount
	}
	q := decimal.NewFromInt(int64(amount)).DivRound(rate, 8)
	return ynab.Milliunits(q.Round(0).IntPart())
}
