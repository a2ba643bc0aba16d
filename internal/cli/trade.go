package cli

import (
	"time"

	"github.com/spf13/cobra"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/models"
	"tradejournal/internal/store"
	"tradejournal/internal/trading"
	"tradejournal/pkg/id"
	"tradejournal/pkg/utils"
)

// addTradeCommands adds trade recording commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Trade recording",
		Long:  "Record trades, close them with exit prices, and list the journal.",
	}

	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeListCmd(app))
	cmd.AddCommand(newTradeCloseCmd(app))
	cmd.AddCommand(newTradeCancelCmd(app))
	cmd.AddCommand(newTradeRmCmd(app))

	rootCmd.AddCommand(cmd)
}

func newTradeAddCmd(app *App) *cobra.Command {
	var (
		planID     string
		direction  string
		entryPrice float64
		quantity   float64
		stopLoss   float64
		takeProfit float64
		notes      string
		tags       []string
		pending    bool
	)

	cmd := &cobra.Command{
		Use:   "add <symbol>",
		Short: "Record a new trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			tradeType := models.TradeType(direction)
			if !tradeType.Valid() {
				return apperrors.NewValidationError("side", direction, "must be BUY or SELL")
			}
			if entryPrice <= 0 {
				return apperrors.NewValidationError("entry", entryPrice, "must be positive")
			}
			if quantity <= 0 {
				return apperrors.NewValidationError("qty", quantity, "must be positive")
			}

			plan, err := st.GetPlan(ctx, planID)
			if err != nil {
				return err
			}
			if takeProfit == 0 && stopLoss != 0 {
				takeProfit = trading.SuggestedTakeProfit(entryPrice, stopLoss, plan.RiskRewardRatio, tradeType)
				output.Dim("Take profit suggested from plan R:R %.2f: %.5f", plan.RiskRewardRatio, takeProfit)
			}

			riskAmount := trading.RiskAmount(entryPrice, stopLoss, quantity, tradeType)
			rewardAmount := trading.RewardAmount(entryPrice, takeProfit, quantity, tradeType)
			if plan.MaxLossAmount > 0 && !trading.WithinMaxLoss(riskAmount, plan.MaxLossAmount) {
				output.Warning("Risk %s exceeds plan max loss %s",
					utils.FormatCurrency(riskAmount), utils.FormatCurrency(plan.MaxLossAmount))
			}

			status := models.TradeOpen
			if pending {
				status = models.TradePending
			}

			now := time.Now().UTC()
			trade := &models.Trade{
				ID:            id.New(),
				Symbol:        args[0],
				Type:          tradeType,
				Status:        status,
				EntryPrice:    entryPrice,
				EntryTime:     now,
				Quantity:      quantity,
				StopLoss:      stopLoss,
				TakeProfit:    takeProfit,
				RiskAmount:    riskAmount,
				RewardAmount:  rewardAmount,
				Notes:         notes,
				Tags:          tags,
				TradingPlanID: plan.ID,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := st.SaveTrade(ctx, trade); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("Recorded %s %s %s @ %.5f (%s)", trade.Type, utils.FormatQuantity(quantity), trade.Symbol, entryPrice, trade.ID)
			output.Printf("  Risk:   %s\n", utils.FormatCurrency(riskAmount))
			output.Printf("  Reward: %s\n", utils.FormatCurrency(rewardAmount))
			return nil
		},
	}

	cmd.Flags().StringVar(&planID, "plan", "", "Trading plan ID (required)")
	cmd.Flags().StringVar(&direction, "side", "BUY", "Trade side: BUY or SELL")
	cmd.Flags().Float64Var(&entryPrice, "entry", 0, "Entry price (required)")
	cmd.Flags().Float64Var(&quantity, "qty", 0, "Quantity (required)")
	cmd.Flags().Float64Var(&stopLoss, "stop", 0, "Stop loss price")
	cmd.Flags().Float64Var(&takeProfit, "tp", 0, "Take profit price (suggested from plan R:R when omitted)")
	cmd.Flags().StringVar(&notes, "notes", "", "Trade notes")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Tags")
	cmd.Flags().BoolVar(&pending, "pending", false, "Record as PENDING instead of OPEN")
	_ = cmd.MarkFlagRequired("plan")
	_ = cmd.MarkFlagRequired("entry")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

func newTradeListCmd(app *App) *cobra.Command {
	var (
		planID string
		status string
		symbol string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journaled trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}

			trades, err := st.ListTrades(cmd.Context(), store.TradeFilter{
				PlanID: planID,
				Status: models.TradeStatus(status),
				Symbol: symbol,
				Limit:  limit,
			})
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades match.")
				return nil
			}
			renderTradeTable(output, trades)
			return nil
		},
	}

	cmd.Flags().StringVar(&planID, "plan", "", "Filter by plan ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, OPEN, CLOSED, CANCELLED)")
	cmd.Flags().StringVar(&symbol, "symbol", "", "Filter by symbol")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows")
	return cmd
}

func newTradeCloseCmd(app *App) *cobra.Command {
	var exitPrice float64

	cmd := &cobra.Command{
		Use:   "close <trade-id>",
		Short: "Close an open trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}

			trade, err := st.CloseTrade(cmd.Context(), args[0], exitPrice, time.Time{})
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("Closed %s %s @ %.5f", trade.Type, trade.Symbol, exitPrice)
			output.Printf("  P&L: %s (%s)\n", output.FormatPnL(trade.RealizedPnL()), output.FormatPercent(*trade.PnLPercentage))
			return nil
		},
	}

	cmd.Flags().Float64Var(&exitPrice, "exit", 0, "Exit price (required)")
	_ = cmd.MarkFlagRequired("exit")
	return cmd
}

func newTradeCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <trade-id>",
		Short: "Cancel a pending or open trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}
			trade, err := st.CancelTrade(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("Cancelled %s %s", trade.Type, trade.Symbol)
			return nil
		},
	}
}

func newTradeRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <trade-id>",
		Short: "Delete a trade from the journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}
			if err := st.DeleteTrade(cmd.Context(), args[0]); err != nil {
				return err
			}
			output.Success("Deleted trade %s", args[0])
			return nil
		},
	}
}

// renderTradeTable prints trades in the standard journal layout.
func renderTradeTable(output *Output, trades []models.Trade) {
	table := NewTable(output, "ID", "Symbol", "Side", "Status", "Qty", "Entry", "Exit", "P&L")
	for _, t := range trades {
		exit := "-"
		pnl := "-"
		if t.ExitPrice != nil {
			exit = utils.FormatQuantity(*t.ExitPrice)
		}
		if t.PnL != nil {
			pnl = output.FormatPnL(*t.PnL)
		}
		table.AddRow(
			t.ID,
			t.Symbol,
			string(t.Type),
			string(t.Status),
			utils.FormatQuantity(t.Quantity),
			utils.FormatQuantity(t.EntryPrice),
			exit,
			pnl,
		)
	}
	table.Render()
}
