package trading

import (
	"sort"

	"tradejournal/internal/models"
)

// ComputeStats aggregates closed-trade performance into a TradeStats record.
// Trades that are not CLOSED with a realized P&L are excluded from every
// metric. The input slice is not modified.
//
// Policies:
//   - profit factor is 0 whenever gross loss is 0, even with wins on the book;
//   - max drawdown is an absolute currency amount, walked over closed trades
//     in chronological exit order;
//   - initialCapital is taken as given, the engine applies no default.
func ComputeStats(trades []models.Trade, initialCapital float64) models.TradeStats {
	closed := closedByExitTime(trades)

	stats := models.TradeStats{
		TotalTrades:    len(closed),
		InitialCapital: initialCapital,
	}

	var totalWins, totalLosses float64
	for _, t := range closed {
		pnl := *t.PnL
		stats.TotalPnL += pnl
		switch {
		case pnl > 0:
			stats.WinningTrades++
			totalWins += pnl
		case pnl < 0:
			stats.LosingTrades++
			totalLosses += -pnl
		}
		// pnl == 0 counts toward TotalTrades only
	}

	if stats.TotalTrades > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades) * 100
	}
	if stats.WinningTrades > 0 {
		stats.AverageWin = totalWins / float64(stats.WinningTrades)
	}
	if stats.LosingTrades > 0 {
		stats.AverageLoss = totalLosses / float64(stats.LosingTrades)
	}
	if totalLosses > 0 {
		stats.ProfitFactor = totalWins / totalLosses
	}

	stats.MaxDrawdown = maxDrawdown(closed)
	stats.CurrentCapital = initialCapital + stats.TotalPnL
	if initialCapital > 0 {
		stats.TotalReturn = (stats.TotalPnL / initialCapital) * 100
	}
	return stats
}

// maxDrawdown walks the cumulative P&L of closed trades and returns the
// largest peak-to-trough decline in account currency.
func maxDrawdown(closed []models.Trade) float64 {
	var runningPnL, peak, maxDD float64
	for _, t := range closed {
		runningPnL += *t.PnL
		if runningPnL > peak {
			peak = runningPnL
		}
		if dd := peak - runningPnL; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// closedByExitTime returns the closed trades sorted by exit time ascending.
// Stable sort keeps the input order for trades closed at the same instant.
func closedByExitTime(trades []models.Trade) []models.Trade {
	closed := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsClosed() && t.ExitTime != nil {
			closed = append(closed, t)
		}
	}
	sort.SliceStable(closed, func(i, j int) bool {
		return closed[i].ExitTime.Before(*closed[j].ExitTime)
	})
	return closed
}
