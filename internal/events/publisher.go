package events

import (
	"context"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/platform/kafka"
	"go.uber.org/zap"
)

// EventProducer is the subset of the Kafka producer the publisher needs.
type EventProducer interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// Publisher sends navigation state to the stream hub and, when a producer
// is configured, to the navigation events topic.
type Publisher struct {
	producer EventProducer
	hub      *Hub
	logger   *zap.Logger
}

// NewPublisher creates a Publisher. producer may be nil.
func NewPublisher(producer EventProducer, hub *Hub, logger *zap.Logger) *Publisher {
	return &Publisher{producer: producer, hub: hub, logger: logger}
}

// PublishState broadcasts state and publishes navigation.state.updated.
func (p *Publisher) PublishState(ctx context.Context, state navigation.NavigationState) error {
	if p.hub != nil {
		p.hub.Broadcast(state)
	}
	return p.publish(ctx, NavigationStateUpdated, state.SessionID.String(), state)
}

// PublishSessionRebuilt publishes navigation.session.rebuilt.
func (p *Publisher) PublishSessionRebuilt(ctx context.Context, event navigation.SessionRebuilt) error {
	return p.publish(ctx, NavigationSessionRebuilt, event.SessionID.String(), event)
}

func (p *Publisher) publish(ctx context.Context, eventType, subject string, data interface{}) error {
	if p.producer == nil {
		return nil
	}
	cloudEvent, err := kafka.NewCloudEvent(Source, eventType, data)
	if err != nil {
		return err
	}
	cloudEvent.Subject = subject
	return p.producer.PublishEvent(ctx, TopicNavigationEvents, cloudEvent)
}
