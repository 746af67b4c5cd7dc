package portfolio

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Position is the valuation of a single holding at current prices.
type Position struct {
	Symbol       string
	Amount       decimal.Decimal
	BuyPriceUSD  decimal.Decimal
	CurrentPrice decimal.Decimal
	CostBasis    decimal.Decimal
	MarketValue  decimal.Decimal
	PnL          decimal.Decimal
	// PnLPercent is nil when the cost basis is zero; a percentage gain over
	// nothing is undefined, not an error.
	PnLPercent *decimal.Decimal
	// PriceMissing marks a holding that had no quote. Such a position carries
	// no market value and is excluded from the totals.
	PriceMissing bool
}

// Totals aggregates the priced positions of a report. Positions with a
// missing quote only contribute to MissingCount.
type Totals struct {
	CostBasis    decimal.Decimal
	MarketValue  decimal.Decimal
	PnL          decimal.Decimal
	PnLPercent   *decimal.Decimal
	PricedCount  int
	MissingCount int
}

// Report is the result of valuing a portfolio against a set of quotes.
// Positions preserve the input holding order.
type Report struct {
	Positions []Position
	Totals    Totals
}

var hundred = decimal.NewFromInt(100)

// Valuate computes a Position per holding, in input order, and portfolio
// totals over the holdings that have a quote. A symbol absent from prices is
// flagged and skipped in the totals rather than aborting the run; a stale or
// renamed ticker should not take down the whole report.
func Valuate(holdings []Holding, prices map[string]decimal.Decimal) Report {
	positions := lo.Map(holdings, func(h Holding, _ int) Position {
		position := Position{
			Symbol:      h.Symbol,
			Amount:      h.Amount,
			BuyPriceUSD: h.BuyPriceUSD,
			CostBasis:   h.Amount.Mul(h.BuyPriceUSD),
		}

		price, ok := prices[h.Symbol]
		if !ok {
			position.PriceMissing = true
			return position
		}

		position.CurrentPrice = price
		position.MarketValue = h.Amount.Mul(price)
		position.PnL = position.MarketValue.Sub(position.CostBasis)
		position.PnLPercent = percentOf(position.PnL, position.CostBasis)
		return position
	})

	totals := lo.Reduce(positions, func(acc Totals, p Position, _ int) Totals {
		if p.PriceMissing {
			acc.MissingCount++
			return acc
		}
		acc.CostBasis = acc.CostBasis.Add(p.CostBasis)
		acc.MarketValue = acc.MarketValue.Add(p.MarketValue)
		acc.PnL = acc.PnL.Add(p.PnL)
		acc.PricedCount++
		return acc
	}, Totals{})
	totals.PnLPercent = percentOf(totals.PnL, totals.CostBasis)

	return Report{Positions: positions, Totals: totals}
}

// percentOf returns pnl / costBasis * 100, or nil when the cost basis is zero.
func percentOf(pnl, costBasis decimal.Decimal) *decimal.Decimal {
	if costBasis.IsZero() {
		return nil
	}
	percent := pnl.Div(costBasis).Mul(hundred)
	return &percent
}
