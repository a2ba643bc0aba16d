package models

import "time"

// TradeStats is an aggregate of closed-trade performance. It is derived on
// demand from a trade list and never persisted.
type TradeStats struct {
	TotalTrades    int     `json:"totalTrades"`
	WinningTrades  int     `json:"winningTrades"`
	LosingTrades   int     `json:"losingTrades"`
	WinRate        float64 `json:"winRate"`
	TotalPnL       float64 `json:"totalPnL"`
	AverageWin     float64 `json:"averageWin"`
	AverageLoss    float64 `json:"averageLoss"`
	ProfitFactor   float64 `json:"profitFactor"`
	MaxDrawdown    float64 `json:"maxDrawdown"`
	InitialCapital float64 `json:"initialCapital"`
	CurrentCapital float64 `json:"currentCapital"`
	TotalReturn    float64 `json:"totalReturn"`
}

// EquityPoint is a single point on the equity curve.
type EquityPoint struct {
	Date          time.Time `json:"date"`
	Equity        float64   `json:"equity"`
	PnL           float64   `json:"pnl"`
	CumulativePnL float64   `json:"cumulativePnL"`
}
