package service

import (
	"context"
	"time"

	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// RawPublisher forwards encoded event envelopes to an external broker.
type RawPublisher interface {
	PublishRaw(ctx context.Context, eventType string, data []byte) error
}

// IEventRelayService copies domain events from the in-process bus to an external broker.
type IEventRelayService interface {
	Start(ctx context.Context) error
}

type eventRelayService struct {
	bus      *events.Bus
	sink     RawPublisher
	topics   []string
	logger   logger.ILogger
	attempts int
	backoff  time.Duration
}

func NewEventRelayService(bus *events.Bus, sink RawPublisher, log logger.ILogger, topics ...string) IEventRelayService {
	if len(topics) == 0 {
		topics = []string{events.TypeIngestionCompleted, events.TypeChatAnswered}
	}
	return &eventRelayService{
		bus:      bus,
		sink:     sink,
		topics:   topics,
		logger:   log,
		attempts: 3,
		backoff:  200 * time.Millisecond,
	}
}

// Start subscribes to every topic and relays in the background until ctx is done.
func (rs *eventRelayService) Start(ctx context.Context) error {
	for _, topic := range rs.topics {
		messages, err := rs.bus.Subscribe(ctx, topic)
		if err != nil {
			return err
		}

		go func(topic string) {
			for msg := range messages {
				rs.processMessage(ctx, topic, msg)
			}
		}(topic)
	}

	rs.logger.Info("EVENT_RELAY", "Relaying events", map[string]interface{}{"topics": rs.topics})
	return nil
}

// processMessage always acks: delivery to the broker is best effort and a
// nacked gochannel message would be redelivered without delay.
func (rs *eventRelayService) processMessage(ctx context.Context, topic string, msg *message.Message) {
	defer msg.Ack()

	if _, err := events.Unmarshal(msg.Payload); err != nil {
		rs.logger.Error("EVENT_RELAY", "Dropping malformed event", map[string]interface{}{
			"topic": topic,
			"error": err.Error(),
		})
		return
	}

	var err error
	for attempt := 1; attempt <= rs.attempts; attempt++ {
		if err = rs.sink.PublishRaw(ctx, topic, msg.Payload); err == nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(rs.backoff * time.Duration(attempt)):
		}
	}

	rs.logger.Error("EVENT_RELAY", "Failed to relay event", map[string]interface{}{
		"topic":    topic,
		"uuid":     msg.UUID,
		"attempts": rs.attempts,
		"error":    err.Error(),
	})
}
