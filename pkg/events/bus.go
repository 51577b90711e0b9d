package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Bus is the in-process event bus. The topic of a message is its event type.
type Bus struct {
	pubSub *gochannel.GoChannel
}

type BusOption func(*gochannel.Config)

// WithSynchronousDelivery makes Publish wait until every subscriber has acked the
// message. Short-lived processes use it so nothing is left in flight at exit.
// Publish still returns at once when the topic has no subscribers.
func WithSynchronousDelivery() BusOption {
	return func(c *gochannel.Config) {
		c.BlockPublishUntilSubscriberAck = true
	}
}

func NewBus(logger watermill.LoggerAdapter, opts ...BusOption) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	cfg := gochannel.Config{OutputChannelBuffer: 256}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Bus{
		pubSub: gochannel.NewGoChannel(cfg, logger),
	}
}

func (b *Bus) Publish(ctx context.Context, event Event) error {
	data, err := Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	return b.pubSub.Publish(event.EventType(), msg)
}

func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, topic)
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
