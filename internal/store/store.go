// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"tradejournal/internal/models"
)

// DataStore defines the interface for journal persistence.
type DataStore interface {
	// Trading plans
	SavePlan(ctx context.Context, plan *models.TradingPlan) error
	GetPlan(ctx context.Context, id string) (*models.TradingPlan, error)
	ListPlans(ctx context.Context) ([]models.TradingPlan, error)
	UpdatePlan(ctx context.Context, plan *models.TradingPlan) error
	DeletePlan(ctx context.Context, id string) error

	// Trades
	SaveTrade(ctx context.Context, trade *models.Trade) error
	GetTrade(ctx context.Context, id string) (*models.Trade, error)
	ListTrades(ctx context.Context, filter TradeFilter) ([]models.Trade, error)
	UpdateTrade(ctx context.Context, trade *models.Trade) error
	DeleteTrade(ctx context.Context, id string) error

	// Lifecycle transitions, applied as single atomic updates. CloseTrade is
	// the only writer of exit fields; a second close of the same trade fails.
	OpenTrade(ctx context.Context, id string) (*models.Trade, error)
	CloseTrade(ctx context.Context, id string, exitPrice float64, exitTime time.Time) (*models.Trade, error)
	CancelTrade(ctx context.Context, id string) (*models.Trade, error)

	// Capital additions
	SaveCapitalAddition(ctx context.Context, addition *models.CapitalAddition) error
	ListCapitalAdditions(ctx context.Context, planID string) ([]models.CapitalAddition, error)
	DeleteCapitalAddition(ctx context.Context, id string) error
	CapitalAddedTotal(ctx context.Context, planID string) (float64, error)

	// Lifecycle
	Close() error
}

// TradeFilter represents filters for querying trades.
type TradeFilter struct {
	PlanID string
	Status models.TradeStatus
	Symbol string
	Limit  int
}
