package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"crypto-dashboard-go/internal/config"
	"crypto-dashboard-go/internal/models"
	"crypto-dashboard-go/internal/portfolio"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PriceSource provides current USD quotes for a set of symbols. Symbols
// without a quote are simply absent from the returned map.
type PriceSource interface {
	GetSimplePrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}

// Engine runs one dashboard pass: load the holdings file, fetch quotes,
// value the portfolio, print the report and persist a snapshot.
type Engine struct {
	logger *zap.Logger
	cfg    *config.Config
	prices PriceSource
	db     *gorm.DB
	out    io.Writer
}

// NewEngine creates a new dashboard engine writing its report to stdout.
func NewEngine(logger *zap.Logger, cfg *config.Config, prices PriceSource, db *gorm.DB) *Engine {
	return &Engine{
		logger: logger,
		cfg:    cfg,
		prices: prices,
		db:     db,
		out:    os.Stdout,
	}
}

// Run executes a single valuation pass.
func (e *Engine) Run(ctx context.Context) error {
	holdings, err := portfolio.LoadHoldings(e.cfg.Portfolio.File)
	if err != nil {
		return fmt.Errorf("could not load holdings: %w", err)
	}
	e.logger.Info("Portfolio loaded",
		zap.String("file", e.cfg.Portfolio.File),
		zap.Int("holdings", len(holdings)))

	quotes, err := e.prices.GetSimplePrices(ctx, portfolio.Symbols(holdings))
	if err != nil {
		return fmt.Errorf("could not fetch quotes: %w", err)
	}
	e.logger.Info("Quotes fetched", zap.Int("count", len(quotes)))

	report := portfolio.Valuate(holdings, quotes)
	for _, p := range report.Positions {
		if p.PriceMissing {
			e.logger.Warn("No quote for holding, excluded from totals", zap.String("symbol", p.Symbol))
		}
	}

	previous, err := e.lastSnapshot()
	if err != nil {
		e.logger.Warn("Could not read previous snapshot", zap.Error(err))
	}

	if _, err := fmt.Fprint(e.out, RenderReport(report)); err != nil {
		return fmt.Errorf("could not write report: %w", err)
	}
	if previous != nil {
		fmt.Fprint(e.out, RenderChange(report.Totals, previous))
	}

	if err := e.saveSnapshot(report); err != nil {
		// The report is already on screen; a history write failure should
		// not fail the run.
		e.logger.Error("Failed to save snapshot", zap.Error(err))
	}

	return nil
}

// lastSnapshot returns the most recent snapshot, or nil when none exists yet.
func (e *Engine) lastSnapshot() (*models.Snapshot, error) {
	var snapshot models.Snapshot
	if err := e.db.Order("id desc").First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

func (e *Engine) saveSnapshot(report portfolio.Report) error {
	totals := report.Totals
	snapshot := models.Snapshot{
		TotalCostBasis:   totals.CostBasis.InexactFloat64(),
		TotalMarketValue: totals.MarketValue.InexactFloat64(),
		TotalPnL:         totals.PnL.InexactFloat64(),
		PricedCount:      totals.PricedCount,
		MissingCount:     totals.MissingCount,
		Positions: lo.Map(report.Positions, func(p portfolio.Position, _ int) models.SnapshotPosition {
			return models.SnapshotPosition{
				Symbol:       p.Symbol,
				Amount:       p.Amount.InexactFloat64(),
				BuyPriceUSD:  p.BuyPriceUSD.InexactFloat64(),
				CurrentPrice: p.CurrentPrice.InexactFloat64(),
				CostBasis:    p.CostBasis.InexactFloat64(),
				MarketValue:  p.MarketValue.InexactFloat64(),
				PnL:          p.PnL.InexactFloat64(),
				PriceMissing: p.PriceMissing,
			}
		}),
	}

	if err := e.db.Create(&snapshot).Error; err != nil {
		return err
	}

	e.logger.Info("Snapshot saved", zap.Uint("snapshot_id", snapshot.ID))
	return nil
}
