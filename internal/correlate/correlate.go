// Package correlate derives the short identifiers that link an entry in one
// budget to its mirror in another. The mirror's memo ends with the
// identifier of the entry it was created from, so either side can be
// recognised without a shared key.
package correlate

import (
	"strings"

	"github.com/eshaffer321/ynabsync/pkg/ynab"
)

const (
	// ShortIDLength is how many leading characters of an entity id are kept
	ShortIDLength = 8

	// Separator joins the short id and the date suffix
	Separator = "|"

	// IdentifierLength is the rune length of a full identifier
	IdentifierLength = ShortIDLength + len(Separator) + 4
)

// Identifier returns "<first 8 chars of id>|<MMDD>". Ids shorter than eight
// characters are used whole.
func Identifier(id string, date ynab.Date) string {
	runes := []rune(id)
	if len(runes) > ShortIDLength {
		runes = runes[:ShortIDLength]
	}
	return string(runes) + Separator + date.MonthDay()
}

// MemoIdentifier returns the trailing identifier-sized run of the trimmed
// memo, the whole memo when it is shorter, or "" for a blank memo.
func MemoIdentifier(memo string) string {
	runes := []rune(strings.TrimSpace(memo))
	if len(runes) > IdentifierLength {
		runes = runes[len(runes)-IdentifierLength:]
	}
	return string(runes)
}

// Of returns the identifier of an entry
func Of(e ynab.Entry) string {
	return Identifier(e.ID, e.Date)
}

// Correlates reports whether a and b record the same real-world event: one
// side's identifier is the other side's memo identifier. Empty values
// never match.
func Correlates(a, b ynab.Entry) bool {
	aID, aMemo := Of(a), MemoIdentifier(a.Memo)
	bID, bMemo := Of(b), MemoIdentifier(b.Memo)
	return (aID != "" && aID == bMemo) || (aMemo != "" && aMemo == bID)
}
