// Package sources turns bank and exchange exports into transactions ready
// for bulk import. Every record gets an import id derived from the record
// itself so the ledger rejects a second import of the same data.
package sources

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eshaffer321/ynabsync/pkg/ynab"
	"github.com/pkg/errors"
)

// MaxImportIDLength is the longest import id the ledger accepts
const MaxImportIDLength = 36

// ErrUnknownSource is returned by Lookup for an unregistered name
var ErrUnknownSource = errors.New("unknown source")

// Options are the per-run settings every normalizer understands
type Options struct {
	// AccountID is the ledger account the records belong to
	AccountID string
	// Since drops records dated before it
	Since *ynab.Date
	// TransferPayeeID is the payee assigned to transfers out of the account
	TransferPayeeID string
	// Fiat selects the currency of exchange orders
	Fiat string
	// Location interprets source timestamps, time.Local when nil
	Location *time.Location
}

// Keep reports whether a record dated d passes the Since bound
func (o Options) Keep(d ynab.Date) bool {
	return o.Since == nil || o.Since.IsZero() || d.Compare(*o.Since) >= 0
}

// Normalizer converts one source's export into transactions
type Normalizer interface {
	Name() string
	Normalize(r io.Reader, opts Options) ([]*ynab.SaveTransaction, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Normalizer{}
)

// Register makes a normalizer available by name. It panics on duplicates.
func Register(n Normalizer) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[n.Name()]; dup {
		panic("sources: Register called twice for " + n.Name())
	}
	registry[n.Name()] = n
}

// Lookup returns the normalizer registered under name
func Lookup(name string) (Normalizer, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	n, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownSource, "%q (known: %s)", name, strings.Join(namesLocked(), ", "))
	}
	return n, nil
}

// Names lists the registered sources
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ImportID builds "<prefix>:<key>:<YYYY-MM-DD>", shortening key so the
// result stays within MaxImportIDLength
func ImportID(prefix, key string, date ynab.Date) string {
	fixed := len(prefix) + len(date.String()) + 2
	if room := MaxImportIDLength - fixed; len(key) > room {
		if room < 0 {
			room = 0
		}
		key = key[:room]
	}
	return prefix + ":" + key + ":" + date.String()
}

// HashKey returns the first 12 hex digits of the md5 of the parts joined
// by ":"
func HashKey(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])[:12]
}

// RowError locates a record that could not be parsed
type RowError struct {
	Source string
	Line   int
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: line %d: %v", e.Source, e.Line, e.Err)
}

// Unwrap returns the wrapped error
func (e *RowError) Unwrap() error {
	return e.Err
}
