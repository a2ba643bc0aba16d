package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tradejournal/internal/server"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the journal HTTP API",
		Long:  "Serve the trading journal as a JSON HTTP API until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Store()
			if err != nil {
				return err
			}
			defer app.CloseStore()

			srv := server.New(app.Config.Server, app.Config.Journal, st, app.Logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-quit:
				app.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides config)")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			app.Config.Server.Addr = addr
		}
	}
	return cmd
}
