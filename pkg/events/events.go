package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diagnosis/luxstay/pkg/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Publisher announces state changes that the remote service has already
// confirmed. Publishing is best effort: callers log failures and move on.
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("luxstay-client"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	n.conn.Close()
	return nil
}

// NopPublisher drops every event. Used when NATS_URL is empty.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                       { return nil }

const (
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
	PaymentSucceeded     = "payment.succeeded"
	PaymentFailed        = "payment.failed"
	MessageSent          = "message.sent"
	SessionStarted       = "session.started"
	SessionEnded         = "session.ended"
)

type BookingCreatedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	PropertyID uuid.UUID `json:"property_id"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Guests     int       `json:"guests"`
	TotalPrice string    `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}

type BookingStatusChangedEvent struct {
	BookingID uuid.UUID `json:"booking_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Actor     string    `json:"actor"` // guest or host
	ChangedAt time.Time `json:"changed_at"`
}

type PaymentEvent struct {
	BookingID uuid.UUID  `json:"booking_id"`
	PaymentID *uuid.UUID `json:"payment_id,omitempty"`
	Amount    string     `json:"amount"`
	Method    string     `json:"method"`
	Reason    string     `json:"reason,omitempty"`
	At        time.Time  `json:"at"`
}

type MessageSentEvent struct {
	MessageID   uuid.UUID `json:"message_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	SentAt      time.Time `json:"sent_at"`
}

type SessionEvent struct {
	UserID *uuid.UUID `json:"user_id,omitempty"`
	Method string     `json:"method"` // login, register, oauth, restore, logout
	At     time.Time  `json:"at"`
}
