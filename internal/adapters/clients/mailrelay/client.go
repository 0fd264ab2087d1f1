// Package mailrelay is the client for the HTTP mail relay used by the email
// notifier. It translates relay responses into domain errors and rides on the
// instrumented httpclient for retries, circuit breaking and rate limiting.
package mailrelay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/platform/httpclient"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// ServiceName identifies the relay in spans, metrics and health results.
const ServiceName = "mail-relay"

const messagesPath = "/api/v1/messages"

// Compile-time interface checks.
var (
	_ ports.MailSender    = (*Client)(nil)
	_ ports.HealthChecker = (*Client)(nil)
)

// Client submits messages to the relay.
type Client struct {
	http *httpclient.Client
	req  *requester
	from string
}

// New returns a Client sending as from. An empty token disables the
// Authorization header.
func New(client *httpclient.Client, token, from string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http: client,
		req:  &requester{client: client, token: token, logger: logger},
		from: from,
	}
}

type messageRequest struct {
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	Text    string            `json:"text"`
	Headers map[string]string `json:"headers,omitempty"`
}

type messageResponse struct {
	ID string `json:"id"`
}

// Send submits mail for delivery. The relay answers 202 Accepted once the
// message is queued.
func (c *Client) Send(ctx context.Context, mail domain.Mail) error {
	if len(mail.To) == 0 {
		return &domain.ValidationError{
			Path:       "mail",
			Violations: []domain.Violation{{Field: "to", Rule: "required", Message: "at least one recipient is required"}},
		}
	}

	body := messageRequest{
		From:    c.from,
		To:      mail.To,
		Subject: mail.Subject,
		Text:    mail.Body,
	}
	if mail.TraceID != uuid.Nil {
		body.Headers = map[string]string{"X-Trace-Id": mail.TraceID.String()}
	}

	var resp messageResponse
	if err := c.req.post(ctx, messagesPath, mail.Key, http.StatusAccepted, body, &resp); err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			return err
		}
		return fmt.Errorf("sending mail %q: %w", mail.Subject, err)
	}

	c.req.logger.DebugContext(ctx, "mail accepted by relay",
		slog.String("message_id", resp.ID),
		slog.Int("recipients", len(mail.To)),
	)
	return nil
}

// Name returns the identifier used by the health registry.
func (c *Client) Name() string {
	return ServiceName
}

// HealthCheck reports the relay's availability from the circuit breaker
// state. No network call is made, so readiness never depends on the relay.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.http.HealthCheck(ctx)
}
