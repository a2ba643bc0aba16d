package trading

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"tradejournal/internal/models"
)

// genClosedTrades generates slices of closed trades with bounded P&L values
// and distinct exit times.
func genClosedTrades() gopter.Gen {
	return gen.SliceOf(gen.Float64Range(-500, 500)).Map(func(pnls []float64) []models.Trade {
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		trades := make([]models.Trade, len(pnls))
		for i, pnl := range pnls {
			p := pnl
			pct := pnl / 10
			exitPrice := 100 + pnl
			exit := base.Add(time.Duration(i) * time.Minute)
			trades[i] = models.Trade{
				Symbol:        "EURUSD",
				Type:          models.TradeBuy,
				Status:        models.TradeClosed,
				EntryPrice:    100,
				Quantity:      1,
				ExitPrice:     &exitPrice,
				ExitTime:      &exit,
				PnL:           &p,
				PnLPercentage: &pct,
			}
		}
		return trades
	})
}

// Property: wins plus losses never exceed the total, and the win rate stays
// within [0, 100].
func TestProperty_StatsCountsAreConsistent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("counts are consistent", prop.ForAll(
		func(trades []models.Trade) bool {
			stats := ComputeStats(trades, 1000)
			if stats.TotalTrades != len(trades) {
				return false
			}
			if stats.WinningTrades+stats.LosingTrades > stats.TotalTrades {
				return false
			}
			return stats.WinRate >= 0 && stats.WinRate <= 100
		},
		genClosedTrades(),
	))

	properties.TestingRun(t)
}

// Property: profit factor and max drawdown are never negative, and current
// capital always equals initial capital plus total P&L.
func TestProperty_StatsDerivedValuesAreNonNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("derived values are sane", prop.ForAll(
		func(trades []models.Trade, capital float64) bool {
			stats := ComputeStats(trades, capital)
			if stats.ProfitFactor < 0 || stats.MaxDrawdown < 0 {
				return false
			}
			diff := stats.CurrentCapital - (capital + stats.TotalPnL)
			return diff < 1e-6 && diff > -1e-6
		},
		genClosedTrades(),
		gen.Float64Range(0, 100000),
	))

	properties.TestingRun(t)
}

// Property: trades that are not closed never contribute to any metric.
func TestProperty_NonClosedTradesAreExcluded(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	statuses := []models.TradeStatus{models.TradePending, models.TradeOpen, models.TradeCancelled}

	properties.Property("open trades are invisible to stats", prop.ForAll(
		func(closed []models.Trade, n int) bool {
			baseline := ComputeStats(closed, 1000)

			mixed := append([]models.Trade{}, closed...)
			for i := 0; i < n; i++ {
				mixed = append(mixed, models.Trade{
					Symbol:     "GBPUSD",
					Type:       models.TradeSell,
					Status:     statuses[i%len(statuses)],
					EntryPrice: 100,
					Quantity:   1,
				})
			}

			got := ComputeStats(mixed, 1000)
			return got == baseline
		},
		genClosedTrades(),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}
