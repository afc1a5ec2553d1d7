// Package events publishes billing domain events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subject constants
const (
	SubjectBillingDetailsSaved = "billing.details.saved"
)

// Headers set on every published message.
const (
	HeaderRequestID = "Request-Id"
	HeaderEventType = "Event-Type"
)

// BillingDetailsSaved is published after a billing address is stored. It
// carries no name, street or phone data.
type BillingDetailsSaved struct {
	RecordID      string    `json:"record_id"`
	UserID        string    `json:"user_id"`
	Country       string    `json:"country"`
	HasTaxID      bool      `json:"has_tax_id"`
	GatewaySynced bool      `json:"gateway_synced"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher publishes domain events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// Conn is the subset of *nats.Conn the publisher uses.
type Conn interface {
	PublishMsg(m *nats.Msg) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// NATSPublisher publishes JSON payloads on a NATS connection.
type NATSPublisher struct {
	conn      Conn
	requestID func(context.Context) string
}

// Connect dials url and returns a publisher that owns the connection.
func Connect(url string, logger *slog.Logger, requestID func(context.Context) string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("billing-address-service"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return NewNATSPublisher(nc, requestID), nil
}

// NewNATSPublisher wraps an open connection. requestID, if non-nil,
// extracts a request id from the context to set as a message header.
func NewNATSPublisher(conn Conn, requestID func(context.Context) string) *NATSPublisher {
	return &NATSPublisher{conn: conn, requestID: requestID}
}

// Publish encodes payload as JSON and publishes it on subject. The message
// is flushed so that a broken connection surfaces as an error here.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", subject, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(HeaderEventType, subject)
	if p.requestID != nil {
		if id := p.requestID(ctx); id != "" {
			msg.Header.Set(HeaderRequestID, id)
		}
	}

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection, delivering buffered messages first.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// NopPublisher discards events. It is used when no NATS URL is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, subject string, payload any) error {
	return nil
}
