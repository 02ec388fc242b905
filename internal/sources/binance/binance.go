// Package binance reads the P2P order history captured from the exchange.
// Completed USDT sales become outflows from the USDT account with the
// exchange rate tagged in the memo.
package binance

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/eshaffer321/ynabsync/internal/rates"
	"github.com/eshaffer321/ynabsync/internal/sources"
	"github.com/eshaffer321/ynabsync/pkg/ynab"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Name is the registry key
const Name = "binance"

// ImportPrefix starts every import id
const ImportPrefix = "BNCP2P"

// DefaultFiat is used when Options.Fiat is empty
const DefaultFiat = "BOB"

const (
	statusCompleted = 4
	tradeSell       = "SELL"
	orderKeyLength  = 10
)

func init() {
	sources.Register(New())
}

// Order is one P2P order as the history endpoint returns it
type Order struct {
	OrderNumber   string          `json:"orderNumber"`
	OrderStatus   int             `json:"orderStatus"`
	TradeType     string          `json:"tradeType"`
	Asset         string          `json:"asset"`
	Fiat          string          `json:"fiat"`
	Amount        decimal.Decimal `json:"amount"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Price         decimal.Decimal `json:"price"`
	CreateTime    int64           `json:"createTime"`
	BuyerNickname string          `json:"buyerNickname"`
}

type history struct {
	Data []Order `json:"data"`
}

// Normalizer converts the order history
type Normalizer struct{}

// New returns a Normalizer
func New() *Normalizer {
	return &Normalizer{}
}

// Name returns the registry key
func (n *Normalizer) Name() string {
	return Name
}

// Normalize keeps completed sales in the configured fiat
func (n *Normalizer) Normalize(r io.Reader, opts sources.Options) ([]*ynab.SaveTransaction, error) {
	var h history
	if err := json.NewDecoder(r).Decode(&h); err != nil {
		return nil, errors.Wrap(err, "failed to decode order history")
	}

	fiat := strings.ToUpper(strings.TrimSpace(opts.Fiat))
	if fiat == "" {
		fiat = DefaultFiat
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	var txns []*ynab.SaveTransaction
	for i, o := range h.Data {
		if o.OrderStatus != statusCompleted || o.TradeType != tradeSell || o.Fiat != fiat {
			continue
		}
		if o.OrderNumber == "" {
			return nil, &sources.RowError{Source: Name, Line: i + 1, Err: errors.New("order without number")}
		}

		date := ynab.DateOf(time.UnixMilli(o.CreateTime).In(loc))
		if !opts.Keep(date) {
			continue
		}

		txn := &ynab.SaveTransaction{
			AccountID: opts.AccountID,
			Date:      date,
			Amount:    ynab.MilliunitsFromDecimal(o.Amount.Neg()),
			Memo:      Memo(o),
			Cleared:   ynab.ClearedStatusCleared,
			Approved:  true,
			ImportID:  sources.ImportID(ImportPrefix, orderKey(o.OrderNumber), date),
		}
		if opts.TransferPayeeID != "" {
			txn.PayeeID = ynab.StringPtr(opts.TransferPayeeID)
		}
		txns = append(txns, txn)
	}

	return txns, nil
}

// Memo describes the sale, e.g.
// "[TC:6.97] SELL 100.00 USDT with 697.00 BOB (buyer)"
func Memo(o Order) string {
	return fmt.Sprintf("%s SELL %s USDT with %s %s (%s)",
		rates.Tag(o.Price), o.Amount.StringFixed(2), o.TotalPrice.StringFixed(2), o.Fiat, o.BuyerNickname)
}

func orderKey(number string) string {
	if len(number) > orderKeyLength {
		return number[:orderKeyLength]
	}
	return number
}
