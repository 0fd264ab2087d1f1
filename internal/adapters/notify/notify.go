// Package notify provides the Notifier implementations named in the strategy
// table. Delivery is best effort; callers log returned errors.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/config"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// Compile-time interface checks.
var (
	_ ports.Notifier = (*Email)(nil)
	_ ports.Notifier = (*Queue)(nil)
	_ ports.Notifier = (*Log)(nil)
	_ ports.Notifier = None{}
)

// Email mails a summary of each stored layer through the relay.
type Email struct {
	sender ports.MailSender
	to     []string
	prefix string
}

// NewEmail returns an email notifier delivering to cfg.To.
func NewEmail(sender ports.MailSender, cfg config.EmailConfig) *Email {
	return &Email{sender: sender, to: cfg.To, prefix: cfg.SubjectPrefix}
}

func (e *Email) Name() string { return config.NotifierEmail }

// Notify sends one message whose body is the indented JSON event.
func (e *Email) Notify(ctx context.Context, event domain.Event) error {
	body, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding event for %q: %w", event.Path, err)
	}

	subject := fmt.Sprintf("%s stored at %s", event.Tag, event.Path)
	if e.prefix != "" {
		subject = strings.TrimSpace(e.prefix) + " " + subject
	}

	if err := e.sender.Send(ctx, domain.Mail{
		To:      e.to,
		Subject: subject,
		Body:    string(body),
		TraceID: event.TraceID,
		Key:     event.TraceID.String() + "/" + event.Path,
	}); err != nil {
		return fmt.Errorf("emailing event for %q: %w", event.Path, err)
	}
	return nil
}

// Queue publishes each event as a JSON record keyed by trace identifier, so
// every record of one run lands on the same partition.
type Queue struct {
	publisher ports.EventPublisher
	topic     string
}

// NewQueue returns a queue notifier producing to topic.
func NewQueue(publisher ports.EventPublisher, topic string) *Queue {
	return &Queue{publisher: publisher, topic: topic}
}

func (q *Queue) Name() string { return config.NotifierQueue }

func (q *Queue) Notify(ctx context.Context, event domain.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event for %q: %w", event.Path, err)
	}
	if err := q.publisher.Publish(ctx, q.topic, []byte(event.TraceID.String()), value); err != nil {
		return fmt.Errorf("queueing event for %q: %w", event.Path, err)
	}
	return nil
}

// Log writes each event as a structured log record. Used by the local
// profile in place of external notifiers.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a log notifier. A nil logger uses slog.Default.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Name() string { return config.NotifierLog }

func (l *Log) Notify(ctx context.Context, event domain.Event) error {
	l.logger.InfoContext(ctx, "layer stored",
		slog.String("trace_id", event.TraceID.String()),
		slog.String("path", event.Path),
		slog.String("tag", event.Tag),
		slog.String("backend", event.Receipt.Backend),
		slog.String("key", event.Receipt.Key),
		slog.Int("fields", len(event.Fields)),
	)
	return nil
}

// None discards events.
type None struct{}

func (None) Name() string { return config.NotifierNone }

func (None) Notify(context.Context, domain.Event) error { return nil }
