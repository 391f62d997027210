package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shenikar/resqnet/internal/keepalive"
	"github.com/shenikar/resqnet/pkg/logger"
)

func NewPingCmd() *cobra.Command {
	var (
		serverURL string
		every     string
		timeout   time.Duration
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check the service health endpoint",
		Long: `Call the health endpoint once, or keep calling it on a cron schedule
so that a sleeping host stays awake.

Examples:
  # Single check
  resqctl ping --server https://resqnet.example.org

  # Every 10 minutes until interrupted
  resqctl ping --server https://resqnet.example.org --every "*/10 * * * *"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewWithOutput(logLevel, "text", cmd.ErrOrStderr())
			pinger := keepalive.NewPinger(serverURL, every, log, nil)

			if every == "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
				defer cancel()

				if err := pinger.Ping(ctx); err != nil {
					printError(cmd.ErrOrStderr(), "Service is not healthy")
					return err
				}
				printSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s is healthy", pinger.URL()))
				return nil
			}

			if err := pinger.Start(); err != nil {
				return err
			}
			defer pinger.Stop()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log.WithFields(logrus.Fields{"url": pinger.URL(), "schedule": every}).Info("Pinging until interrupted")
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", envOr("RESQNET_URL", "http://localhost:8080"), "API base URL")
	cmd.Flags().StringVar(&every, "every", "", "Cron schedule for repeated pings (single ping when empty)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Timeout of a single ping")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level for scheduled mode")

	return cmd
}
