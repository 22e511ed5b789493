package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/runoshun/taskhub/internal/app"
	"github.com/runoshun/taskhub/internal/httpapi"
	"github.com/spf13/cobra"
)

// newServeCommand creates the serve command.
func newServeCommand(c *app.Container) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task API over HTTP",
		Long: `Serve the task API over HTTP until interrupted.

Requests that change data must name the acting user in the X-Actor-ID
header (user ID or email). Responses carry an X-Request-ID header that
also appears in the server log.

Examples:
  taskhub serve
  taskhub serve --addr :9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = c.Config.App.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return httpapi.NewServer(c).Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from [server] addr)")

	return cmd
}
