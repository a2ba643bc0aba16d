package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/models"
	"tradejournal/pkg/id"
	"tradejournal/pkg/utils"
)

// addCapitalCommands adds the capital ledger commands.
func addCapitalCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "capital",
		Short: "Capital additions",
		Long:  "Record and list capital added to a trading plan over time.",
	}

	cmd.AddCommand(newCapitalAddCmd(app))
	cmd.AddCommand(newCapitalListCmd(app))

	rootCmd.AddCommand(cmd)
}

func newCapitalAddCmd(app *App) *cobra.Command {
	var (
		planID      string
		description string
	)

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record a capital addition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			if amount <= 0 {
				return apperrors.NewValidationError("amount", args[0], "must be positive")
			}

			plan, err := st.GetPlan(ctx, planID)
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			addition := &models.CapitalAddition{
				ID:            id.New(),
				Amount:        amount,
				Description:   description,
				AddedAt:       now,
				TradingPlanID: plan.ID,
				CreatedAt:     now,
			}
			if err := st.SaveCapitalAddition(ctx, addition); err != nil {
				return err
			}

			total, err := st.CapitalAddedTotal(ctx, plan.ID)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(addition)
			}
			output.Success("Added %s to %q", utils.FormatCurrency(amount), plan.Name)
			output.Printf("  Effective capital: %s\n", utils.FormatCurrency(plan.InitialCapital+total))
			return nil
		},
	}

	cmd.Flags().StringVar(&planID, "plan", "", "Trading plan ID (required)")
	cmd.Flags().StringVar(&description, "description", "", "What this addition is")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func parseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("amount", s, "must be a number")
	}
	return amount, nil
}

func newCapitalListCmd(app *App) *cobra.Command {
	var planID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List capital additions for a plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			additions, err := st.ListCapitalAdditions(ctx, planID)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(additions)
			}
			if len(additions) == 0 {
				output.Info("No capital additions recorded.")
				return nil
			}

			table := NewTable(output, "ID", "Date", "Amount", "Description")
			var total float64
			for _, a := range additions {
				total += a.Amount
				table.AddRow(a.ID, utils.FormatDate(a.AddedAt), utils.FormatCurrency(a.Amount), a.Description)
			}
			table.Render()
			output.Bold("Total added: %s", utils.FormatCurrency(total))
			return nil
		},
	}

	cmd.Flags().StringVar(&planID, "plan", "", "Trading plan ID (required)")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}
