package models

import "gorm.io/gorm"

// SnapshotPosition is the per-holding detail behind a Snapshot.
// PriceMissing rows carry no market value and were excluded from the
// snapshot totals.
type SnapshotPosition struct {
	gorm.Model
	SnapshotID   uint    `json:"-" gorm:"index"`
	Symbol       string  `json:"symbol"`
	Amount       float64 `json:"amount"`
	BuyPriceUSD  float64 `json:"buy_price_usd"`
	CurrentPrice float64 `json:"current_price"`
	CostBasis    float64 `json:"cost_basis"`
	MarketValue  float64 `json:"market_value"`
	PnL          float64 `json:"pnl"`
	PriceMissing bool    `json:"price_missing"`
}
