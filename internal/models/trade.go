// Package models defines the domain types shared across the application.
package models

import "time"

// TradeType represents the direction of a trade.
type TradeType string

const (
	TradeBuy  TradeType = "BUY"
	TradeSell TradeType = "SELL"
)

// Valid reports whether t is a known trade type.
func (t TradeType) Valid() bool {
	return t == TradeBuy || t == TradeSell
}

// TradeStatus represents the lifecycle state of a trade.
type TradeStatus string

const (
	TradePending   TradeStatus = "PENDING"
	TradeOpen      TradeStatus = "OPEN"
	TradeClosed    TradeStatus = "CLOSED"
	TradeCancelled TradeStatus = "CANCELLED"
)

// Terminal reports whether the status permits no further transitions.
func (s TradeStatus) Terminal() bool {
	return s == TradeClosed || s == TradeCancelled
}

// Trade represents a single journaled trade. Exit fields are pointers and are
// set only by the CLOSED transition; PnL and PnLPercentage are derived there
// and never written independently.
type Trade struct {
	ID            string      `json:"id"`
	Symbol        string      `json:"symbol"`
	Type          TradeType   `json:"type"`
	Status        TradeStatus `json:"status"`
	EntryPrice    float64     `json:"entryPrice"`
	EntryTime     time.Time   `json:"entryTime"`
	Quantity      float64     `json:"quantity"`
	StopLoss      float64     `json:"stopLoss"`
	TakeProfit    float64     `json:"takeProfit"`
	RiskAmount    float64     `json:"riskAmount"`
	RewardAmount  float64     `json:"rewardAmount"`
	ExitPrice     *float64    `json:"exitPrice,omitempty"`
	ExitTime      *time.Time  `json:"exitTime,omitempty"`
	PnL           *float64    `json:"pnl,omitempty"`
	PnLPercentage *float64    `json:"pnlPercentage,omitempty"`
	Notes         string      `json:"notes,omitempty"`
	Screenshot    string      `json:"screenshot,omitempty"`
	Tags          []string    `json:"tags,omitempty"`
	TradingPlanID string      `json:"tradingPlanId"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// IsClosed reports whether the trade has been closed with a realized P&L.
func (t *Trade) IsClosed() bool {
	return t.Status == TradeClosed && t.PnL != nil
}

// RealizedPnL returns the realized P&L, or 0 for trades that are not closed.
func (t *Trade) RealizedPnL() float64 {
	if t.PnL == nil {
		return 0
	}
	return *t.PnL
}
