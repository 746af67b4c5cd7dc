package portfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Holding is one entry in the portfolio file: a quantity of a single asset
// and the unit price paid for it. Holdings are immutable once loaded.
type Holding struct {
	Symbol      string          `json:"symbol"`
	Amount      decimal.Decimal `json:"amount"`
	BuyPriceUSD decimal.Decimal `json:"buy_price_usd"`
}

// LoadHoldings reads and validates the portfolio file, a JSON array of
// holdings. Symbols are normalized to uppercase. A record with an empty
// symbol or a negative amount or buy price fails the whole load; records are
// never clamped or silently skipped.
func LoadHoldings(path string) ([]Holding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read portfolio file: %w", err)
	}

	var holdings []Holding
	if err := json.Unmarshal(data, &holdings); err != nil {
		return nil, fmt.Errorf("could not parse portfolio file %s: %w", path, err)
	}

	for i := range holdings {
		h := &holdings[i]
		h.Symbol = strings.ToUpper(strings.TrimSpace(h.Symbol))
		if h.Symbol == "" {
			return nil, fmt.Errorf("holding %d: symbol is empty", i)
		}
		if h.Amount.IsNegative() {
			return nil, fmt.Errorf("holding %d (%s): amount %s is negative", i, h.Symbol, h.Amount)
		}
		if h.BuyPriceUSD.IsNegative() {
			return nil, fmt.Errorf("holding %d (%s): buy_price_usd %s is negative", i, h.Symbol, h.BuyPriceUSD)
		}
	}

	return holdings, nil
}

// Symbols returns the distinct symbols across the holdings, in first-seen order.
func Symbols(holdings []Holding) []string {
	return lo.Uniq(lo.Map(holdings, func(h Holding, _ int) string {
		return h.Symbol
	}))
}
