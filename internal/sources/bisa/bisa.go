// Package bisa reads Banco BISA statement exports. The bank writes them in
// Latin-1 with a free-form preamble above the header row.
package bisa

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/eshaffer321/ynabsync/internal/sources"
	"github.com/eshaffer321/ynabsync/pkg/ynab"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

// Name is the registry key
const Name = "bisa"

// ImportPrefix starts every import id
const ImportPrefix = "BISA"

const headerMarker = "Fecha"

// ErrNoHeader is returned when the export has no header row
var ErrNoHeader = errors.New("header row not found")

func init() {
	sources.Register(New())
}

// Normalizer converts the bank's CSV export
type Normalizer struct{}

// New returns a Normalizer
func New() *Normalizer {
	return &Normalizer{}
}

// Name returns the registry key
func (n *Normalizer) Name() string {
	return Name
}

// Normalize skips the preamble, then reads date, description, debit and
// credit from the first four columns. The bank assigns no reference
// number so the import id hashes the record contents.
func (n *Normalizer) Normalize(r io.Reader, opts sources.Options) ([]*ynab.SaveTransaction, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	line := 0
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			return nil, ErrNoHeader
		}
		if err != nil {
			return nil, &sources.RowError{Source: Name, Line: line, Err: err}
		}
		if len(record) > 0 && strings.HasPrefix(strings.TrimSpace(record[0]), headerMarker) {
			break
		}
	}

	var txns []*ynab.SaveTransaction
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &sources.RowError{Source: Name, Line: line, Err: err}
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		txn, err := parseRecord(record, opts)
		if err != nil {
			return nil, &sources.RowError{Source: Name, Line: line, Err: err}
		}
		if !opts.Keep(txn.Date) {
			continue
		}
		txns = append(txns, txn)
	}

	return txns, nil
}

func parseRecord(record []string, opts sources.Options) (*ynab.SaveTransaction, error) {
	if len(record) < 4 {
		return nil, fmt.Errorf("expected 4 columns, got %d", len(record))
	}

	date, err := ParseDate(record[0])
	if err != nil {
		return nil, err
	}

	amount, err := ParseAmount(record[2], record[3])
	if err != nil {
		return nil, err
	}

	// Import ids already in the ledger were hashed from the untrimmed
	// description and a float-truncated amount.
	key := sources.HashKey(date.String(), strconv.FormatInt(hashAmount(record[2], record[3]), 10), record[1])
	memo := strings.TrimSpace(record[1])

	return &ynab.SaveTransaction{
		AccountID: opts.AccountID,
		Date:      date,
		Amount:    amount,
		PayeeName: ynab.StringPtr(""),
		Memo:      memo,
		Cleared:   ynab.ClearedStatusCleared,
		Approved:  false,
		ImportID:  sources.ImportID(ImportPrefix, key, date),
	}, nil
}

// ParseDate reads dd/mm/yyyy
func ParseDate(s string) (ynab.Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return ynab.Date{}, fmt.Errorf("invalid date %q", s)
	}
	return ynab.ParseDate(parts[2] + "-" + parts[1] + "-" + parts[0])
}

// hashAmount is the amount the import id hashes. It can differ from
// ParseAmount by a milliunit when the value has no exact binary form.
func hashAmount(debit, credit string) int64 {
	debit = strings.NewReplacer(",", "", "-", "").Replace(strings.TrimSpace(debit))
	if debit != "" {
		f, _ := strconv.ParseFloat(debit, 64)
		return -int64(f * 1000)
	}
	f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(credit), ",", ""), 64)
	return int64(f * 1000)
}

// ParseAmount returns a debit as an outflow when present, the credit
// otherwise. Both use "," as the thousands separator.
func ParseAmount(debit, credit string) (ynab.Milliunits, error) {
	debit = strings.NewReplacer(",", "", "-", "").Replace(strings.TrimSpace(debit))
	if debit != "" {
		v, err := decimal.NewFromString(debit)
		if err != nil {
			return 0, fmt.Errorf("invalid debit %q", debit)
		}
		return ynab.MilliunitsFromDecimal(v).Negate(), nil
	}

	credit = strings.ReplaceAll(strings.TrimSpace(credit), ",", "")
	if credit == "" {
		return 0, nil
	}
	v, err := decimal.NewFromString(credit)
	if err != nil {
		return 0, fmt.Errorf("invalid credit %q", credit)
	}
	return ynab.MilliunitsFromDecimal(v), nil
}
