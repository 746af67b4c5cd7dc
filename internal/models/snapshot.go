package models

import "gorm.io/gorm"

// Snapshot records the portfolio totals of one dashboard run.
type Snapshot struct {
	gorm.Model
	TotalCostBasis   float64            `json:"total_cost_basis"`
	TotalMarketValue float64            `json:"total_market_value"`
	TotalPnL         float64            `json:"total_pnl"`
	PricedCount      int                `json:"priced_count"`
	MissingCount     int                `json:"missing_count"`
	Positions        []SnapshotPosition `json:"positions,omitempty" gorm:"foreignKey:SnapshotID"`
}
