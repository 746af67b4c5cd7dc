package dashboard

import (
	"fmt"
	"strings"

	"crypto-dashboard-go/internal/models"
	"crypto-dashboard-go/internal/portfolio"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var reportHeaders = []string{"Asset", "Amount", "Buy/USD", "Price/USD", "Cost", "Value", "PnL", "PnL%"}

// RenderReport formats the valuation report as a fixed-width console table
// with a totals block. Holdings without a quote render with "-" in the live
// columns and are called out below the table.
func RenderReport(report portfolio.Report) string {
	rows := lo.Map(report.Positions, func(p portfolio.Position, _ int) []string {
		if p.PriceMissing {
			return []string{
				p.Symbol, p.Amount.String(), formatMoney(p.BuyPriceUSD),
				"-", formatMoney(p.CostBasis), "-", "-", "n/a",
			}
		}
		return []string{
			p.Symbol, p.Amount.String(), formatMoney(p.BuyPriceUSD),
			formatMoney(p.CurrentPrice), formatMoney(p.CostBasis),
			formatMoney(p.MarketValue), formatMoney(p.PnL), formatPercent(p.PnLPercent),
		}
	})

	var b strings.Builder
	b.WriteString("\nCrypto Portfolio Dashboard\n\n")
	b.WriteString(renderTable(reportHeaders, rows))

	totals := report.Totals
	fmt.Fprintf(&b, "Total Cost : %s\n", formatMoney(totals.CostBasis))
	fmt.Fprintf(&b, "Total Value: %s\n", formatMoney(totals.MarketValue))
	fmt.Fprintf(&b, "Total PnL  : %s  (%s)\n", formatMoney(totals.PnL), formatPercent(totals.PnLPercent))
	if totals.MissingCount > 0 {
		fmt.Fprintf(&b, "Excluded   : %d holding(s) without a live quote\n", totals.MissingCount)
	}
	b.WriteString("\n")
	return b.String()
}

// RenderChange formats the market value movement since the previous snapshot.
func RenderChange(totals portfolio.Totals, previous *models.Snapshot) string {
	delta := totals.MarketValue.Sub(decimal.NewFromFloat(previous.TotalMarketValue))
	sign := ""
	if delta.Sign() >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("Change since %s: %s%s\n\n",
		previous.CreatedAt.Format("2006-01-02 15:04"), sign, formatMoney(delta))
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	line := func(ch string) {
		b.WriteString("+")
		for _, w := range widths {
			b.WriteString(strings.Repeat(ch, w+2))
			b.WriteString("+")
		}
		b.WriteString("\n")
	}
	writeRow := func(cells []string) {
		b.WriteString("|")
		for i, cell := range cells {
			fmt.Fprintf(&b, " %-*s |", widths[i], cell)
		}
		b.WriteString("\n")
	}

	line("=")
	writeRow(headers)
	line("=")
	for _, row := range rows {
		writeRow(row)
	}
	line("=")
	return b.String()
}

// formatMoney renders a USD amount as -$1,234,567.89.
func formatMoney(d decimal.Decimal) string {
	negative := d.IsNegative()
	fixed := d.Abs().StringFixed(2)

	dot := strings.Index(fixed, ".")
	intPart, fracPart := fixed[:dot], fixed[dot:]
	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := "$" + strings.Join(groups, ",") + fracPart
	if negative {
		out = "-" + out
	}
	return out
}

// formatPercent renders a signed percentage, or "n/a" for an undefined one.
func formatPercent(p *decimal.Decimal) string {
	if p == nil {
		return "n/a"
	}
	sign := ""
	if p.Sign() >= 0 {
		sign = "+"
	}
	return sign + p.StringFixed(2) + "%"
}
