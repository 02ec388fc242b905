package correlate

import "github.com/eshaffer321/ynabsync/pkg/ynab"

// Index answers "does any member correlate with e" without scanning the
// whole universe. Contains(e) equals looping Correlates(e, m) over every
// member m.
type Index struct {
	byIdentifier map[string]ynab.Entry
	byMemo       map[string]ynab.Entry
	size         int
}

// NewIndex builds an index over entries. The first member wins when two
// share a key.
func NewIndex(entries []ynab.Entry) *Index {
	idx := &Index{
		byIdentifier: make(map[string]ynab.Entry, len(entries)),
		byMemo:       make(map[string]ynab.Entry, len(entries)),
	}
	for _, e := range entries {
		idx.Add(e)
	}
	return idx
}

// Add inserts one member
func (idx *Index) Add(e ynab.Entry) {
	idx.size++
	if id := Of(e); id != "" {
		if _, ok := idx.byIdentifier[id]; !ok {
			idx.byIdentifier[id] = e
		}
	}
	if memo := MemoIdentifier(e.Memo); memo != "" {
		if _, ok := idx.byMemo[memo]; !ok {
			idx.byMemo[memo] = e
		}
	}
}

// Len returns the number of members added
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.size
}

// Match returns a member that correlates with e
func (idx *Index) Match(e ynab.Entry) (ynab.Entry, bool) {
	if idx == nil {
		return ynab.Entry{}, false
	}
	// a member whose memo carries e's identifier
	if m, ok := idx.byMemo[Of(e)]; ok {
		return m, true
	}
	// a member whose identifier appears in e's memo
	if memo := MemoIdentifier(e.Memo); memo != "" {
		if m, ok := idx.byIdentifier[memo]; ok {
			return m, true
		}
	}
	return ynab.Entry{}, false
}

// Contains reports whether any member correlates with e
func (idx *Index) Contains(e ynab.Entry) bool {
	_, ok := idx.Match(e)
	return ok
}
