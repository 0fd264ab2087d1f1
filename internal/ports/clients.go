package ports

import (
	"context"

	"github.com/jsamuelsen11/layerflow/internal/domain"
)

// MailSender defines the client port for the downstream mail relay API.
// Implemented by the mail relay client; called by the email notifier.
type MailSender interface {
	// Send submits one message for delivery.
	// Returns domain.ErrUnavailable when the relay cannot be reached.
	Send(ctx context.Context, mail domain.Mail) error
}

// EventPublisher defines the client port for the message broker.
// Implemented by the Kafka producer; called by the queue notifier.
type EventPublisher interface {
	// Publish synchronously produces one record to topic.
	Publish(ctx context.Context, topic string, key, value []byte) error
}
