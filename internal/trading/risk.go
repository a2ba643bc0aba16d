// Package trading implements the journal's trading math: risk sizing, the
// trade lifecycle state machine, and performance statistics over closed trades.
package trading

import (
	"math"

	"tradejournal/internal/models"
)

// RiskAmount returns the amount at risk if the stop is hit: the absolute
// distance between entry and stop, times quantity. The trade type does not
// change the result; it is part of the signature so call sites read the same
// as RewardAmount and SuggestedTakeProfit.
//
// Inputs are not validated; a non-finite input flows through to the result.
func RiskAmount(entryPrice, stopLoss, quantity float64, tradeType models.TradeType) float64 {
	return math.Abs(entryPrice-stopLoss) * quantity
}

// RewardAmount returns the potential reward at the take-profit level.
func RewardAmount(entryPrice, takeProfit, quantity float64, tradeType models.TradeType) float64 {
	return math.Abs(takeProfit-entryPrice) * quantity
}

// SuggestedTakeProfit derives a take-profit price from the stop distance and
// the plan's risk/reward ratio. BUY targets above entry, SELL below.
func SuggestedTakeProfit(entryPrice, stopLoss, riskRewardRatio float64, tradeType models.TradeType) float64 {
	riskPerUnit := math.Abs(entryPrice - stopLoss)
	rewardPerUnit := riskPerUnit * riskRewardRatio

	if tradeType == models.TradeBuy {
		return entryPrice + rewardPerUnit
	}
	return entryPrice - rewardPerUnit
}

// PositionSize returns the quantity that risks riskPercent of accountBalance
// between entry and stop. Returns +Inf when entry equals stop.
func PositionSize(accountBalance, riskPercent, entryPrice, stopLoss float64) float64 {
	riskAmount := accountBalance * (riskPercent / 100)
	stopDistance := math.Abs(entryPrice - stopLoss)
	return riskAmount / stopDistance
}

// WithinMaxLoss reports whether a planned risk amount stays inside the plan's
// max loss. Advisory only; callers decide whether to warn or reject.
func WithinMaxLoss(riskAmount, maxLossAmount float64) bool {
	return riskAmount <= maxLossAmount
}
