package ynab

// Entry is the unit of reconciliation: a plain transaction or one part of
// a split. Parent fields (date, account, flag) are copied onto parts.
type Entry struct {
	ID                string
	ParentID          string
	Date              Date
	Amount            Milliunits
	Memo              string
	AccountID         string
	PayeeName         string
	CategoryID        string
	CategoryName      string
	FlagColor         string
	TransferAccountID string
	Deleted           bool
}

// IsSubtransaction reports whether the entry came from a split
func (e Entry) IsSubtransaction() bool {
	return e.ParentID != ""
}

// Entries flattens the transaction. A split yields one entry per
// non-deleted subtransaction and never the parent itself.
func (t *Transaction) Entries() []Entry {
	if !t.IsSplit() {
		return []Entry{{
			ID:                t.ID,
			Date:              t.Date,
			Amount:            t.Amount,
			Memo:              t.Memo,
			AccountID:         t.AccountID,
			PayeeName:         t.PayeeName,
			CategoryID:        t.CategoryID,
			CategoryName:      t.CategoryName,
			FlagColor:         t.FlagColor,
			TransferAccountID: t.TransferAccountID,
			Deleted:           t.Deleted,
		}}
	}

	entries := make([]Entry, 0, len(t.Subtransactions))
	for _, sub := range t.Subtransactions {
		if sub.Deleted {
			continue
		}
		entries = append(entries, Entry{
			ID:                sub.ID,
			ParentID:          t.ID,
			Date:              t.Date,
			Amount:            sub.Amount,
			Memo:              sub.Memo,
			AccountID:         t.AccountID,
			PayeeName:         sub.PayeeName,
			CategoryID:        sub.CategoryID,
			CategoryName:      sub.CategoryName,
			FlagColor:         t.FlagColor,
			TransferAccountID: sub.TransferAccountID,
			Deleted:           t.Deleted,
		})
	}
	return entries
}

// FlattenEntries expands every transaction in order
func FlattenEntries(transactions []*Transaction) []Entry {
	var entries []Entry
	for _, t := range transactions {
		entries = append(entries, t.Entries()...)
	}
	return entries
}
