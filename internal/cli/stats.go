package cli

import (
	"github.com/spf13/cobra"

	"tradejournal/internal/advisor"
	"tradejournal/internal/models"
	"tradejournal/internal/store"
	"tradejournal/internal/trading"
	"tradejournal/pkg/utils"
)

func newStatsCmd(app *App) *cobra.Command {
	var (
		planID string
		review bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show performance statistics",
		Long:  "Compute win rate, profit factor, drawdown and capital from closed trades.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}

			trades, capital, err := tradesAndCapital(cmd, app, st, planID)
			if err != nil {
				return err
			}
			stats := trading.ComputeStats(trades, capital)

			if output.IsJSON() && !review {
				return output.JSON(stats)
			}

			output.Bold("Performance")
			output.Printf("  Trades:         %d (%d won, %d lost)\n",
				stats.TotalTrades, stats.WinningTrades, stats.LosingTrades)
			output.Printf("  Win rate:       %s\n", utils.FormatPercent(stats.WinRate))
			output.Printf("  Total P&L:      %s\n", output.FormatPnL(stats.TotalPnL))
			output.Printf("  Average win:    %s\n", utils.FormatCurrency(stats.AverageWin))
			output.Printf("  Average loss:   %s\n", utils.FormatCurrency(stats.AverageLoss))
			output.Printf("  Profit factor:  %.2f\n", stats.ProfitFactor)
			output.Printf("  Max drawdown:   %s\n", utils.FormatCurrency(stats.MaxDrawdown))
			output.Println()
			output.Bold("Capital")
			output.Printf("  Initial:        %s\n", utils.FormatCurrency(stats.InitialCapital))
			output.Printf("  Current:        %s\n", utils.FormatCurrency(stats.CurrentCapital))
			output.Printf("  Return:         %s\n", output.FormatPercent(stats.TotalReturn))

			if review {
				return runReview(cmd, app, output, stats, trades)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planID, "plan", "", "Limit to one trading plan")
	cmd.Flags().BoolVar(&review, "review", false, "Ask the LLM advisor to review recent performance")
	return cmd
}

// tradesAndCapital resolves the trade set and effective starting capital for a
// stats run. With a plan ID the capital is that plan's initial capital plus its
// additions; without one it is the sum across every plan. Either way the
// configured default applies when no capital figure exists at all, the same
// fallback the HTTP stats endpoint uses.
func tradesAndCapital(cmd *cobra.Command, app *App, st store.DataStore, planID string) ([]models.Trade, float64, error) {
	ctx := cmd.Context()

	var capital float64
	filter := store.TradeFilter{}

	if planID != "" {
		plan, err := st.GetPlan(ctx, planID)
		if err != nil {
			return nil, 0, err
		}
		added, err := st.CapitalAddedTotal(ctx, plan.ID)
		if err != nil {
			return nil, 0, err
		}
		capital = plan.InitialCapital + added
		filter.PlanID = plan.ID
	} else {
		plans, err := st.ListPlans(ctx)
		if err != nil {
			return nil, 0, err
		}
		for _, p := range plans {
			added, err := st.CapitalAddedTotal(ctx, p.ID)
			if err != nil {
				return nil, 0, err
			}
			capital += p.InitialCapital + added
		}
	}
	if capital == 0 {
		capital = app.Config.Journal.DefaultInitialCapital
	}

	trades, err := st.ListTrades(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return trades, capital, nil
}

func runReview(cmd *cobra.Command, app *App, output *Output, stats models.TradeStats, trades []models.Trade) error {
	adv, err := advisor.New(app.Config.Advisor.APIKey, app.Config.Advisor.Model)
	if err != nil {
		return err
	}

	recent := trades
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}
	output.Println()
	output.Info("Asking advisor for a review...")
	text, err := adv.Review(cmd.Context(), stats, recent)
	if err != nil {
		return err
	}
	output.Println()
	output.Println(text)
	return nil
}
