package correlate

import (
	"testing"

	"github.com/eshaffer321/ynabsync/pkg/ynab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_MatchesBothDirections(t *testing.T) {
	master := []ynab.Entry{
		{ID: "m1", Date: march8, Memo: "Lunch abcd1234|0308"},
		{ID: "eeee5555-xyz", Date: march8, Memo: "salary"},
	}
	idx := NewIndex(master)
	assert.Equal(t, 2, idx.Len())

	// master mirror carries the satellite identifier
	m, ok := idx.Match(ynab.Entry{ID: "abcd1234-5678", Date: march8})
	require.True(t, ok)
	assert.Equal(t, "m1", m.ID)

	// satellite memo carries a master identifier
	m, ok = idx.Match(ynab.Entry{ID: "s2", Date: march8, Memo: "from main eeee5555|0308"})
	require.True(t, ok)
	assert.Equal(t, "eeee5555-xyz", m.ID)

	assert.False(t, idx.Contains(ynab.Entry{ID: "nothing1", Date: march8, Memo: "new"}))
}

func TestIndex_EmptyAndNil(t *testing.T) {
	var nilIdx *Index
	assert.False(t, nilIdx.Contains(ynab.Entry{ID: "a", Date: march8}))
	assert.Zero(t, nilIdx.Len())

	idx := NewIndex(nil)
	assert.False(t, idx.Contains(ynab.Entry{}))
}

func TestIndex_AgreesWithCorrelates(t *testing.T) {
	universe := []ynab.Entry{
		{ID: "abcd1234-1", Date: march8, Memo: ""},
		{ID: "m2", Date: march8, Memo: "x abcd1234|0308"},
		{ID: "m3", Date: ynab.NewDate(2024, 3, 9), Memo: "y qqqq0000|0309"},
		{ID: "short", Date: march8, Memo: "Lunch"},
		{ID: "m5", Date: march8, Memo: "   "},
	}
	queries := []ynab.Entry{
		{ID: "abcd1234-9", Date: march8},
		{ID: "qqqq0000-1", Date: ynab.NewDate(2024, 3, 9)},
		{ID: "qqqq0000-1", Date: march8},
		{ID: "p", Date: march8, Memo: "copy short|0308"},
		{ID: "p", Date: march8, Memo: "Lunch"},
		{ID: "p", Date: march8, Memo: "ref m2|0308"},
		{ID: "z", Date: march8, Memo: ""},
	}

	idx := NewIndex(universe)
	for _, p := range queries {
		want := false
		for _, u := range universe {
			if Correlates(p, u) {
				want = true
				break
			}
		}
		assert.Equal(t, want, idx.Contains(p), "query %s %q", p.ID, p.Memo)
	}
}
