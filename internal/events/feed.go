package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/linkshort/internal/messaging"
	"go.uber.org/zap"
)

// LogLinkCreated returns a handler that writes every feed event to logger.
func LogLinkCreated(logger *zap.Logger) messaging.Handler[LinkCreated] {
	return func(ctx context.Context, event *LinkCreated) error {
		logger.Info("link created",
			zap.String("token", event.Token),
			zap.String("url", event.URL),
			zap.Time("created_at", event.CreatedAt),
			zap.String("request_id", messaging.RequestIDFromContext(ctx)),
		)

		return nil
	}
}

// NewFeedConsumer subscribes the log handler to the link feed.
func NewFeedConsumer(subscriber message.Subscriber, logger *zap.Logger) *messaging.Consumer[LinkCreated] {
	return messaging.NewConsumer(subscriber, TopicLinkCreated, LogLinkCreated(logger), logger)
}
