package sources

import (
	"io"
	"testing"

	"github.com/eshaffer321/ynabsync/pkg/ynab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNormalizer struct{ name string }

func (s stubNormalizer) Name() string { return s.name }

func (s stubNormalizer) Normalize(r io.Reader, opts Options) ([]*ynab.SaveTransaction, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	Register(stubNormalizer{name: "stub-test"})

	n, err := Lookup(" STUB-test ")
	require.NoError(t, err)
	assert.Equal(t, "stub-test", n.Name())
	assert.Contains(t, Names(), "stub-test")

	_, err = Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownSource)

	assert.Panics(t, func() { Register(stubNormalizer{name: "stub-test"}) })
}

func TestImportID(t *testing.T) {
	date := ynab.NewDate(2026, 2, 10)

	assert.Equal(t, "BEC:123456:2026-02-10", ImportID("BEC", "123456", date))

	long := ImportID("BNCP2P", "2261184537895436288123456789", date)
	assert.Len(t, long, MaxImportIDLength)
	assert.Equal(t, "BNCP2P:226118453789543628:2026-02-10", long)
}

func TestHashKey(t *testing.T) {
	a := HashKey("2026-02-10", "-25500", "POS SUPERMERCADO")
	b := HashKey("2026-02-10", "-25500", "POS SUPERMERCADO")
	c := HashKey("2026-02-10", "-25501", "POS SUPERMERCADO")

	assert.Len(t, a, 12)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "900150983cd2", HashKey("abc"))
}

func TestOptions_Keep(t *testing.T) {
	since := ynab.NewDate(2026, 2, 10)
	opts := Options{Since: &since}

	assert.True(t, opts.Keep(ynab.NewDate(2026, 2, 10)))
	assert.True(t, opts.Keep(ynab.NewDate(2026, 2, 11)))
	assert.False(t, opts.Keep(ynab.NewDate(2026, 2, 9)))
	assert.True(t, Options{}.Keep(ynab.NewDate(2000, 1, 1)))
}
