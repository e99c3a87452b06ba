package warehouse

import (
	"context"
	"time"
)

type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event is emitted after a warehouse mutation commits.
type Event struct {
	Type        EventType  `json:"type"`
	WarehouseID int64      `json:"warehouse_id"`
	OwnerID     int64      `json:"owner_id"`
	Warehouse   *Warehouse `json:"-"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

// EventPublisher delivers warehouse events. Failures are the caller's to log.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
