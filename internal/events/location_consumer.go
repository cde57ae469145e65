package events

import (
	"context"
	"errors"

	"github.com/Kilat-Pet-Delivery/service-navigation/internal/domain/navigation"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/location"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-navigation/internal/platform/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// FixSink accepts location fixes for the current session.
type FixSink interface {
	PushLocation(ctx context.Context, sessionID *uuid.UUID, loc navigation.UserLocation) error
}

// LocationFixConsumer feeds fixes reported on the location topic into the
// current session's location provider.
type LocationFixConsumer struct {
	consumer *kafka.Consumer
	sink     FixSink
	logger   *zap.Logger
}

// NewLocationFixConsumer creates a new LocationFixConsumer.
func NewLocationFixConsumer(
	brokers []string,
	groupID string,
	sink FixSink,
	logger *zap.Logger,
) *LocationFixConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicLocationFixes, logger)
	return &LocationFixConsumer{
		consumer: consumer,
		sink:     sink,
		logger:   logger,
	}
}

// Start begins consuming location fixes. This blocks until the context is cancelled.
func (c *LocationFixConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *LocationFixConsumer) Close() error {
	return c.consumer.Close()
}

func (c *LocationFixConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from location topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case LocationFixReported:
		return c.handleFixReported(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled location event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *LocationFixConsumer) handleFixReported(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt LocationFixReportedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse LocationFixReportedEvent data",
			zap.Error(err),
		)
		metrics.LocationFixesTotal.WithLabelValues("kafka", "malformed").Inc()
		return nil // Don't retry malformed data
	}

	err := c.sink.PushLocation(ctx, evt.SessionID, evt.Location)
	switch {
	case err == nil:
		metrics.LocationFixesTotal.WithLabelValues("kafka", "accepted").Inc()
		return nil
	case errors.Is(err, navigation.ErrUninitialized),
		errors.Is(err, navigation.ErrStaleSession),
		errors.Is(err, location.ErrNotRunning),
		errors.Is(err, location.ErrInvalidFix):
		metrics.LocationFixesTotal.WithLabelValues("kafka", "dropped").Inc()
		c.logger.Debug("dropping location fix",
			zap.String("device_id", evt.DeviceID),
			zap.Error(err),
		)
		return nil
	default:
		metrics.LocationFixesTotal.WithLabelValues("kafka", "failed").Inc()
		c.logger.Error("failed to apply location fix",
			zap.String("device_id", evt.DeviceID),
			zap.Error(err),
		)
		return err
	}
}
