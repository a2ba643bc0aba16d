package cli

import (
	"time"

	"github.com/spf13/cobra"

	"tradejournal/internal/models"
	"tradejournal/internal/store"
	"tradejournal/pkg/id"
	"tradejournal/pkg/utils"
)

// addPlanCommands adds trading plan management commands.
func addPlanCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Trading plan management",
		Long:  "Create, list, inspect and remove trading plans.",
	}

	cmd.AddCommand(newPlanAddCmd(app))
	cmd.AddCommand(newPlanListCmd(app))
	cmd.AddCommand(newPlanShowCmd(app))
	cmd.AddCommand(newPlanRmCmd(app))

	rootCmd.AddCommand(cmd)
}

func newPlanAddCmd(app *App) *cobra.Command {
	var (
		description    string
		riskReward     float64
		maxLoss        float64
		initialCapital float64
		active         bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a trading plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}

			if riskReward == 0 {
				riskReward = app.Config.Journal.DefaultRiskReward
			}

			now := time.Now().UTC()
			plan := &models.TradingPlan{
				ID:              id.New(),
				Name:            args[0],
				Description:     description,
				RiskRewardRatio: riskReward,
				MaxLossAmount:   maxLoss,
				InitialCapital:  initialCapital,
				IsActive:        active,
				CreatedAt:       now,
				UpdatedAt:       now,
			}
			if err := st.SavePlan(cmd.Context(), plan); err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(plan)
			}
			output.Success("Created plan %s (%s)", plan.Name, plan.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Plan description")
	cmd.Flags().Float64Var(&riskReward, "rr", 0, "Target risk/reward ratio (default from config)")
	cmd.Flags().Float64Var(&maxLoss, "max-loss", 0, "Advisory max loss per trade")
	cmd.Flags().Float64Var(&initialCapital, "capital", 0, "Initial capital")
	cmd.Flags().BoolVar(&active, "active", true, "Mark the plan active")
	return cmd
}

func newPlanListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List trading plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}

			plans, err := st.ListPlans(cmd.Context())
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(plans)
			}
			if len(plans) == 0 {
				output.Info("No trading plans yet. Create one with: tradejournal plan add <name>")
				return nil
			}

			table := NewTable(output, "ID", "Name", "R:R", "Max Loss", "Capital", "Active")
			for _, p := range plans {
				active := ""
				if p.IsActive {
					active = "yes"
				}
				table.AddRow(
					p.ID,
					p.Name,
					utils.FormatQuantity(p.RiskRewardRatio),
					utils.FormatCurrency(p.MaxLossAmount),
					utils.FormatCurrency(p.InitialCapital),
					active,
				)
			}
			table.Render()
			return nil
		},
	}
}

func newPlanShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show a plan and its recent trades",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			plan, err := st.GetPlan(ctx, args[0])
			if err != nil {
				return err
			}
			trades, err := st.ListTrades(ctx, store.TradeFilter{PlanID: plan.ID, Limit: 20})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"plan": plan, "trades": trades})
			}

			output.Bold("%s", plan.Name)
			if plan.Description != "" {
				output.Dim("%s", plan.Description)
			}
			output.Printf("  Risk/Reward:  %.2f\n", plan.RiskRewardRatio)
			output.Printf("  Max Loss:     %s\n", utils.FormatCurrency(plan.MaxLossAmount))
			output.Printf("  Capital:      %s\n", utils.FormatCurrency(plan.InitialCapital))
			output.Println()

			if len(trades) == 0 {
				output.Info("No trades recorded for this plan.")
				return nil
			}
			renderTradeTable(output, trades)
			return nil
		},
	}
}

func newPlanRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <plan-id>",
		Short: "Delete a plan and everything it owns",
		Long:  "Delete a trading plan. Its trades and capital additions are removed with it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}
			if err := st.DeletePlan(cmd.Context(), args[0]); err != nil {
				return err
			}
			output.Success("Deleted plan %s", args[0])
			return nil
		},
	}
}
