package models

import "time"

// TradingPlan groups trades under a shared set of risk parameters.
// A plan owns its trades and capital additions; deleting a plan removes both.
type TradingPlan struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	RiskRewardRatio float64   `json:"riskRewardRatio"`
	MaxLossAmount   float64   `json:"maxLossAmount"`
	InitialCapital  float64   `json:"initialCapital"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CapitalAddition is an append-only ledger entry recording a deposit into a
// plan's capital. Entries are created and deleted, never mutated.
type CapitalAddition struct {
	ID            string    `json:"id"`
	Amount        float64   `json:"amount"`
	Description   string    `json:"description,omitempty"`
	AddedAt       time.Time `json:"addedAt"`
	TradingPlanID string    `json:"tradingPlanId"`
	CreatedAt     time.Time `json:"createdAt"`
}
