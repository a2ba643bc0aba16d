package trading

import (
	"math"
	"time"

	"tradejournal/internal/errors"
	"tradejournal/internal/models"
)

// Valid lifecycle transitions. PENDING and OPEN may be cancelled; only OPEN
// trades close. CLOSED and CANCELLED are terminal.
var transitions = map[models.TradeStatus][]models.TradeStatus{
	models.TradePending: {models.TradeOpen, models.TradeCancelled},
	models.TradeOpen:    {models.TradeClosed, models.TradeCancelled},
}

// CanTransition reports whether a trade may move from one status to another.
func CanTransition(from, to models.TradeStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Open transitions a PENDING trade to OPEN. The trade itself is not modified;
// the updated copy is returned for the caller to persist.
func Open(t models.Trade) (models.Trade, error) {
	if t.Status != models.TradePending {
		return t, errors.NewStateError("open", string(t.Status), "only pending trades can be opened")
	}
	t.Status = models.TradeOpen
	return t, nil
}

// Close transitions an OPEN trade to CLOSED, computing realized P&L from the
// exit price. A zero exitTime defaults to the current time. The input trade is
// not modified; the caller's persistence layer must apply the returned state
// as a single atomic update so that two concurrent closes cannot both succeed.
func Close(t models.Trade, exitPrice float64, exitTime time.Time) (models.Trade, error) {
	if t.Status != models.TradeOpen {
		return t, errors.NewStateError("close", string(t.Status), "only open trades can be closed")
	}
	if math.IsNaN(exitPrice) || math.IsInf(exitPrice, 0) || exitPrice <= 0 {
		return t, errors.NewValidationError("exitPrice", exitPrice, "must be a finite positive number")
	}
	if t.EntryPrice == 0 {
		return t, errors.NewValidationError("entryPrice", t.EntryPrice, "must be nonzero to compute P&L percentage")
	}
	if exitTime.IsZero() {
		exitTime = time.Now().UTC()
	}

	priceDifference := exitPrice - t.EntryPrice
	if t.Type == models.TradeSell {
		priceDifference = t.EntryPrice - exitPrice
	}
	pnl := priceDifference * t.Quantity
	pnlPercentage := (priceDifference / t.EntryPrice) * 100

	t.Status = models.TradeClosed
	t.ExitPrice = &exitPrice
	t.ExitTime = &exitTime
	t.PnL = &pnl
	t.PnLPercentage = &pnlPercentage
	return t, nil
}

// Cancel transitions a PENDING or OPEN trade to CANCELLED.
func Cancel(t models.Trade) (models.Trade, error) {
	if !CanTransition(t.Status, models.TradeCancelled) {
		return t, errors.NewStateError("cancel", string(t.Status), "only pending or open trades can be cancelled")
	}
	t.Status = models.TradeCancelled
	return t, nil
}
