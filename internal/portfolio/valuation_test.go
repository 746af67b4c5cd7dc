package portfolio

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func holding(symbol string, amount, buyPrice string) Holding {
	return Holding{
		Symbol:      symbol,
		Amount:      decimal.RequireFromString(amount),
		BuyPriceUSD: decimal.RequireFromString(buyPrice),
	}
}

func prices(pairs map[string]string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(pairs))
	for symbol, price := range pairs {
		out[symbol] = decimal.RequireFromString(price)
	}
	return out
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, actual.Equal(decimal.RequireFromString(expected)),
		"expected %s, got %s", expected, actual)
}

func TestValuate_BasicPnL(t *testing.T) {
	report := Valuate(
		[]Holding{holding("BTC", "2", "20000")},
		prices(map[string]string{"BTC": "25000"}),
	)

	require.Len(t, report.Positions, 1)
	p := report.Positions[0]

	assert.False(t, p.PriceMissing)
	assertDecimal(t, "40000", p.CostBasis)
	assertDecimal(t, "50000", p.MarketValue)
	assertDecimal(t, "10000", p.PnL)
	require.NotNil(t, p.PnLPercent)
	assertDecimal(t, "25", *p.PnLPercent)
}

func TestValuate_ZeroCostBasis(t *testing.T) {
	report := Valuate(
		[]Holding{holding("ETH", "1", "0")},
		prices(map[string]string{"ETH": "3000"}),
	)

	require.Len(t, report.Positions, 1)
	p := report.Positions[0]

	assertDecimal(t, "0", p.CostBasis)
	assertDecimal(t, "3000", p.MarketValue)
	assertDecimal(t, "3000", p.PnL)
	// Percentage gain over a zero cost basis is undefined, never a panic.
	assert.Nil(t, p.PnLPercent)
}

func TestValuate_MissingPriceIsFlaggedAndExcluded(t *testing.T) {
	report := Valuate(
		[]Holding{
			holding("BTC", "2", "20000"),
			holding("XYZ", "5", "10"),
			holding("ETH", "10", "1500"),
		},
		prices(map[string]string{"BTC": "25000", "ETH": "3000"}),
	)

	require.Len(t, report.Positions, 3)

	xyz := report.Positions[1]
	assert.True(t, xyz.PriceMissing)
	assertDecimal(t, "50", xyz.CostBasis)
	assert.True(t, xyz.MarketValue.IsZero())
	assert.Nil(t, xyz.PnLPercent)

	// Totals reflect only BTC and ETH.
	totals := report.Totals
	assert.Equal(t, 2, totals.PricedCount)
	assert.Equal(t, 1, totals.MissingCount)
	assertDecimal(t, "55000", totals.CostBasis)   // 40000 + 15000
	assertDecimal(t, "80000", totals.MarketValue) // 50000 + 30000
	assertDecimal(t, "25000", totals.PnL)
}

func TestValuate_TotalsPercent(t *testing.T) {
	report := Valuate(
		[]Holding{
			holding("BTC", "2", "20000"),
			holding("ETH", "10", "1000"),
		},
		prices(map[string]string{"BTC": "25000", "ETH": "1500"}),
	)

	totals := report.Totals
	assertDecimal(t, "50000", totals.CostBasis)
	assertDecimal(t, "65000", totals.MarketValue)
	assertDecimal(t, "15000", totals.PnL)
	require.NotNil(t, totals.PnLPercent)
	assertDecimal(t, "30", *totals.PnLPercent)
}

func TestValuate_TotalsPercentUndefinedOnZeroCost(t *testing.T) {
	report := Valuate(
		[]Holding{holding("ETH", "1", "0")},
		prices(map[string]string{"ETH": "3000"}),
	)

	assert.Nil(t, report.Totals.PnLPercent)
}

func TestValuate_LossIsNegative(t *testing.T) {
	report := Valuate(
		[]Holding{holding("SOL", "10", "100")},
		prices(map[string]string{"SOL": "80"}),
	)

	p := report.Positions[0]
	assertDecimal(t, "-200", p.PnL)
	require.NotNil(t, p.PnLPercent)
	assertDecimal(t, "-20", *p.PnLPercent)
}

func TestValuate_OrderMatchesInput(t *testing.T) {
	holdings := []Holding{
		holding("SOL", "1", "100"),
		holding("BTC", "1", "20000"),
		holding("ETH", "1", "1500"),
		holding("BTC", "2", "30000"), // duplicate symbols keep their slots
	}

	report := Valuate(holdings, prices(map[string]string{
		"BTC": "25000", "ETH": "3000", "SOL": "150",
	}))

	require.Len(t, report.Positions, 4)
	for i, h := range holdings {
		assert.Equal(t, h.Symbol, report.Positions[i].Symbol)
		assert.True(t, report.Positions[i].Amount.Equal(h.Amount))
	}
}

func TestValuate_NoHoldings(t *testing.T) {
	report := Valuate(nil, prices(map[string]string{"BTC": "25000"}))

	assert.Empty(t, report.Positions)
	assert.True(t, report.Totals.CostBasis.IsZero())
	assert.True(t, report.Totals.MarketValue.IsZero())
	assert.Nil(t, report.Totals.PnLPercent)
	assert.Equal(t, 0, report.Totals.PricedCount)
}

func TestValuate_NoPricesAtAll(t *testing.T) {
	report := Valuate(
		[]Holding{holding("BTC", "1", "20000"), holding("ETH", "1", "1500")},
		map[string]decimal.Decimal{},
	)

	assert.Equal(t, 0, report.Totals.PricedCount)
	assert.Equal(t, 2, report.Totals.MissingCount)
	assert.True(t, report.Totals.CostBasis.IsZero())
	assert.Nil(t, report.Totals.PnLPercent)
	for _, p := range report.Positions {
		assert.True(t, p.PriceMissing)
	}
}

func TestValuate_FractionalAmounts(t *testing.T) {
	report := Valuate(
		[]Holding{holding("BTC", "0.5", "41000.50")},
		prices(map[string]string{"BTC": "60000"}),
	)

	p := report.Positions[0]
	assertDecimal(t, "20500.25", p.CostBasis)
	assertDecimal(t, "30000", p.MarketValue)
	assertDecimal(t, "9499.75", p.PnL)
}
