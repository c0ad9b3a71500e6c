package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rocketscienceinc/checkers-backend/internal/entity"
)

const (
	connectTimeout = 10 * time.Second
	reconnectWait  = 2 * time.Second
	maxReconnects  = 5
)

func Connect(url, name string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return conn, nil
}

// Publisher sends game events as JSON on a NATS subject.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

func NewPublisher(conn *nats.Conn, subject string) *Publisher {
	return &Publisher{
		conn:    conn,
		subject: subject,
	}
}

// Publish is fire-and-forget. The context is only checked before sending.
func (that *Publisher) Publish(ctx context.Context, event *entity.GameEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err = that.conn.Publish(that.subject, eventJSON); err != nil {
		return fmt.Errorf("failed to publish event in NATS: %w", err)
	}

	return nil
}
