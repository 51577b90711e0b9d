package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"rag-chat-be/internal/config"
	"rag-chat-be/pkg/events"
	pktNats "rag-chat-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var errNatsDisabled = errors.New("NATS_URL is not set")

func newWatchEventsCmd() *cobra.Command {
	var durable string

	cmd := &cobra.Command{
		Use:   "watch-events",
		Short: "Print ingestion and chat events relayed to NATS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cfg.App.NatsURL == "" {
				color.Red("✗ %v", errNatsDisabled)
				return errNatsDisabled
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
			if err != nil {
				color.Red("✗ %v", err)
				return err
			}
			defer sub.Close()

			filter := pktNats.SubjectPrefix + ">"
			cc, err := sub.Subscribe(ctx, filter, durable, func(ctx context.Context, event events.Event) error {
				printEvent(event.EventType(), event.Timestamp(), event.Payload())
				return nil
			})
			if err != nil {
				color.Red("✗ %v", err)
				return err
			}
			defer cc.Stop()

			color.Cyan("→ Watching %s (Ctrl+C to stop)", filter)
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&durable, "durable", "", "durable consumer name; empty only shows new events")
	return cmd
}
