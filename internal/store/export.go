package store

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"tradejournal/internal/models"
)

// tradeCSVRow is the flat CSV projection of a trade. Exit columns are empty
// for trades that never closed.
type tradeCSVRow struct {
	ID            string  `csv:"id"`
	Symbol        string  `csv:"symbol"`
	Type          string  `csv:"type"`
	Status        string  `csv:"status"`
	EntryPrice    float64 `csv:"entry_price"`
	EntryTime     string  `csv:"entry_time"`
	Quantity      float64 `csv:"quantity"`
	StopLoss      float64 `csv:"stop_loss"`
	TakeProfit    float64 `csv:"take_profit"`
	RiskAmount    float64 `csv:"risk_amount"`
	RewardAmount  float64 `csv:"reward_amount"`
	ExitPrice     string  `csv:"exit_price"`
	ExitTime      string  `csv:"exit_time"`
	PnL           string  `csv:"pnl"`
	PnLPercentage string  `csv:"pnl_percentage"`
	Tags          string  `csv:"tags"`
	Notes         string  `csv:"notes"`
	TradingPlanID string  `csv:"trading_plan_id"`
}

// ExportTradesCSV writes trades to w as CSV, one row per trade.
func ExportTradesCSV(w io.Writer, trades []models.Trade) error {
	rows := make([]tradeCSVRow, 0, len(trades))
	for _, t := range trades {
		row := tradeCSVRow{
			ID:            t.ID,
			Symbol:        t.Symbol,
			Type:          string(t.Type),
			Status:        string(t.Status),
			EntryPrice:    t.EntryPrice,
			EntryTime:     t.EntryTime.Format(time.RFC3339),
			Quantity:      t.Quantity,
			StopLoss:      t.StopLoss,
			TakeProfit:    t.TakeProfit,
			RiskAmount:    t.RiskAmount,
			RewardAmount:  t.RewardAmount,
			Tags:          strings.Join(t.Tags, ";"),
			Notes:         t.Notes,
			TradingPlanID: t.TradingPlanID,
		}
		if t.ExitPrice != nil {
			row.ExitPrice = formatFloat(*t.ExitPrice)
		}
		if t.ExitTime != nil {
			row.ExitTime = t.ExitTime.Format(time.RFC3339)
		}
		if t.PnL != nil {
			row.PnL = formatFloat(*t.PnL)
		}
		if t.PnLPercentage != nil {
			row.PnLPercentage = formatFloat(*t.PnLPercentage)
		}
		rows = append(rows, row)
	}
	return gocsv.Marshal(rows, w)
}

// fixed notation keeps spreadsheet imports from flipping to exponents
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
