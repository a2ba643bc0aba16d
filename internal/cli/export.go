package cli

import (
	"os"

	"github.com/spf13/cobra"

	"tradejournal/internal/models"
	"tradejournal/internal/store"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		planID string
		status string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trades as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.Store()
			if err != nil {
				return err
			}

			trades, err := st.ListTrades(cmd.Context(), store.TradeFilter{
				PlanID: planID,
				Status: models.TradeStatus(status),
			})
			if err != nil {
				return err
			}

			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := store.ExportTradesCSV(w, trades); err != nil {
				return err
			}
			if out != "" {
				output.Success("Exported %d trades to %s", len(trades), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planID, "plan", "", "Filter by plan ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&out, "out", "", "Output file (stdout when omitted)")
	return cmd
}
