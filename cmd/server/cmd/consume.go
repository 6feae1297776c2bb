package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/event-enrollment-api/internal/queue"
)

var enrollmentLogPath string

func newConsumeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "consume-enrollments",
		Short: "Append enrollment notifications from RabbitMQ to a log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.AMQPURL == "" {
				return errors.New("RABBITMQ_URL (or AMQP_URL) is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err = queue.StartEnrollmentConsumer(ctx, cfg.AMQPURL, enrollmentLogPath, logger)
			if errors.Is(err, context.Canceled) {
				logger.Info().Msg("consumer stopped")
				return nil
			}
			return err
		},
	}
	c.Flags().StringVar(&enrollmentLogPath, "log-file", "logs/enrollment.log", "file enrollment notifications are appended to")
	return c
}
