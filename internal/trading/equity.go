package trading

import "tradejournal/internal/models"

// EquityCurve returns one point per closed trade, in exit-time order, tracking
// the account equity as each realized P&L lands. The curve is seeded with
// initialCapital, so an empty trade list yields an empty curve rather than a
// flat line.
func EquityCurve(trades []models.Trade, initialCapital float64) []models.EquityPoint {
	closed := closedByExitTime(trades)
	if len(closed) == 0 {
		return nil
	}

	points := make([]models.EquityPoint, 0, len(closed))
	equity := initialCapital
	var cumulative float64
	for _, t := range closed {
		pnl := *t.PnL
		equity += pnl
		cumulative += pnl
		points = append(points, models.EquityPoint{
			Date:          *t.ExitTime,
			Equity:        equity,
			PnL:           pnl,
			CumulativePnL: cumulative,
		})
	}
	return points
}
