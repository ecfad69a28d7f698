package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"calorie-counter/internal/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web widget, JSON API and MCP tools over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if host != "" {
				app.Config.Host = host
			}
			if port != 0 {
				app.Config.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := app.open(ctx); err != nil {
				return err
			}
			srv := server.New(&app.Config, app.kv, app.store, app.widget)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				log.Println("Received shutdown signal")
			case err := <-errCh:
				if err != nil {
					log.Printf("Server error: %v", err)
					_ = srv.Stop(context.Background())
					return err
				}
			}

			log.Println("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				log.Printf("Error during shutdown: %v", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host address (overrides CALORIE_HOST)")
	cmd.Flags().IntVar(&port, "port", 0, "Port (overrides CALORIE_PORT)")
	return cmd
}
