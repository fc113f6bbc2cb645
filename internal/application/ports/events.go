package ports

import (
	"context"
	"time"
)

// EventType nombre del evento de dominio publicado tras un commit.
type EventType string

const (
	EventOrderConfirmed     EventType = "order.confirmed"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventMovementRecorded   EventType = "inventory.movement_recorded"
	EventMovementReversed   EventType = "inventory.movement_reversed"
)

// Event evento de dominio. Key agrupa eventos de la misma entidad (partición).
type Event struct {
	Type       EventType `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// EventPublisher publica eventos después de confirmada la transacción.
// Un error aquí nunca revierte la operación que originó el evento.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NopPublisher descarta los eventos (publicación deshabilitada).
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...Event) error { return nil }
