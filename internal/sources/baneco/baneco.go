// Package baneco reads Banco Económico statement exports
package baneco

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/eshaffer321/ynabsync/internal/sources"
	"github.com/eshaffer321/ynabsync/pkg/ynab"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Name is the registry key
const Name = "baneco"

// ImportPrefix starts every import id
const ImportPrefix = "BEC"

const (
	colDate        = "Fecha"
	colAmount      = "Monto"
	colNote        = "Nota"
	colTransaction = "Transaccion"
	colNumber      = "Nro Trn./Cheque"
)

var requiredColumns = []string{colDate, colAmount, colNote, colTransaction, colNumber}

var months = map[string]time.Month{
	"ene": time.January, "feb": time.February, "mar": time.March,
	"abr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "ago": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dic": time.December,
}

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

// Normalize reads the export. Records stay unapproved so they show up for
// review in the ledger.
func (n *Normalizer) Normalize(r io.Reader, opts sources.Options) ([]*ynab.SaveTransaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "error reading CSV headers")
	}

	columns, err := columnMap(headers)
	if err != nil {
		return nil, err
	}

	var txns []*ynab.SaveTransaction
	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &sources.RowError{Source: Name, Line: line, Err: err}
		}
		if blank(record) {
			continue
		}

		txn, err := parseRecord(record, columns, opts)
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

func parseRecord(record []string, columns map[string]int, opts sources.Options) (*ynab.SaveTransaction, error) {
	field := func(name string) string {
		i := columns[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := ParseDate(field(colDate))
	if err != nil {
		return nil, err
	}

	amount, err := ParseAmount(field(colAmount))
	if err != nil {
		return nil, err
	}

	memo := field(colNote)
	if memo == "" {
		memo = field(colTransaction)
	}

	return &ynab.SaveTransaction{
		AccountID: opts.AccountID,
		Date:      date,
		Amount:    ynab.MilliunitsFromDecimal(amount),
		PayeeName: ynab.StringPtr(""),
		Memo:      memo,
		Cleared:   ynab.ClearedStatusCleared,
		Approved:  false,
		ImportID:  sources.ImportID(ImportPrefix, field(colNumber), date),
	}, nil
}

// ParseDate reads dates like "10/Feb/2026" with Spanish month abbreviations
func ParseDate(s string) (ynab.Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return ynab.Date{}, fmt.Errorf("invalid date %q", s)
	}
	month, ok := months[strings.ToLower(parts[1])]
	if !ok {
		return ynab.Date{}, fmt.Errorf("invalid month in date %q", s)
	}
	var day, year int
	if _, err := fmt.Sscanf(parts[0]+" "+parts[2], "%d %d", &day, &year); err != nil {
		return ynab.Date{}, fmt.Errorf("invalid date %q", s)
	}
	date := ynab.NewDate(year, month, day)
	if date.Day() != day {
		return ynab.Date{}, fmt.Errorf("invalid day in date %q", s)
	}
	return date, nil
}

// ParseAmount reads a signed amount written with a decimal comma
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.Replace(strings.TrimSpace(s), ",", ".", 1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return amount, nil
}

func columnMap(headers []string) (map[string]int, error) {
	columns := make(map[string]int, len(headers))
	for i, h := range headers {
		columns[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
