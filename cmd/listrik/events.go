package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"listrik/internal/amqp"
	"listrik/internal/cache"
	"listrik/internal/cli"
	"listrik/internal/worker"
)

func newEventsCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow ledger events from the AMQP queue",
		Long:  `Consumes the ledger events queue (AMQP_URL, AMQP_EXCHANGE, AMQP_QUEUE) and prints one line per event until interrupted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.AMQPEnabled() {
				return errors.New("AMQP_URL is not set")
			}
			logger, err := cli.SetupLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := cli.GracefulShutdown(cmd.Context(), logger)
			defer stop()

			client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			w := worker.NewEventWorker(cmd.OutOrStdout(), asJSON, logger)
			caches := cache.NewManager(logger)
			caches.Register("events", w)
			caches.StartCleanup(ctx, cfg.CacheCleanupInterval)
			defer caches.Stop()

			err = client.Consume(ctx, func(msg *amqp.LedgerEventMessage) error {
				return w.HandleMessage(ctx, msg)
			})
			w.LogStats(context.WithoutCancel(ctx))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON messages")
	return cmd
}
