// Package events publishes prediction lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects published by the service
const (
	SubjectPredictionCompleted = "predictions.completed"
	SubjectPredictionFailed    = "predictions.failed"
	SubjectPredictionDeleted   = "predictions.deleted"
)

// PredictionEvent is the payload of every prediction subject
type PredictionEvent struct {
	PredictionID uint      `json:"prediction_id"`
	SpeciesCode  string    `json:"species_code,omitempty"`
	CommuneID    uint      `json:"commune_id,omitempty"`
	Status       string    `json:"status"`
	ROI          *float64  `json:"roi,omitempty"`
	Message      string    `json:"message,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher sends events to subscribers
type Publisher interface {
	Publish(ctx context.Context, subject string, event PredictionEvent) error
	Close()
}

// NATS publishes JSON events on a NATS connection
type NATS struct {
	conn *nats.Conn
}

// NATSConfig holds connection settings
type NATSConfig struct {
	URL            string
	Name           string
	ReconnectWait  time.Duration
	MaxReconnects  int
	ConnectTimeout time.Duration
}

// NewNATS connects to the NATS server
func NewNATS(cfg NATSConfig) (*NATS, error) {
	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.Timeout(cfg.ConnectTimeout),
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATS{conn: conn}, nil
}

// Publish marshals event to JSON and sends it on subject
func (n *NATS) Publish(ctx context.Context, subject string, event PredictionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close drains pending messages and closes the connection
func (n *NATS) Close() {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
	}
}

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, PredictionEvent) error { return nil }
func (Noop) Close() {}
