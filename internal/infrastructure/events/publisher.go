package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domainWarehouse "warehouse-manager/internal/domain/warehouse"
)

// Broker is the publish side of an MQTT client.
type Broker interface {
	Publish(ctx context.Context, topic string, qos byte, retained bool, payload []byte) error
}

// MQTTPublisher serialises warehouse events as JSON onto
// {prefix}/warehouses/{created|updated|deleted}.
type MQTTPublisher struct {
	broker  Broker
	prefix  string
	qos     byte
	timeout time.Duration
}

func NewMQTTPublisher(broker Broker, prefix string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{broker: broker, prefix: prefix, qos: qos, timeout: 5 * time.Second}
}

type warehousePayload struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Type        string   `json:"type"`
	Capacity    int      `json:"capacity"`
	FloorAreaM2 *float64 `json:"floor_area_m2,omitempty"`
	IsActive    bool     `json:"is_active"`
}

type eventPayload struct {
	Event       string            `json:"event"`
	WarehouseID int64             `json:"warehouse_id"`
	OwnerID     int64             `json:"owner_id"`
	OccurredAt  time.Time         `json:"occurred_at"`
	Warehouse   *warehousePayload `json:"warehouse,omitempty"`
}

func (p *MQTTPublisher) Topic(eventType domainWarehouse.EventType) string {
	if p.prefix == "" {
		return "warehouses/" + string(eventType)
	}
	return p.prefix + "/warehouses/" + string(eventType)
}

func (p *MQTTPublisher) Publish(ctx context.Context, event domainWarehouse.Event) error {
	payload := eventPayload{
		Event:       "warehouse." + string(event.Type),
		WarehouseID: event.WarehouseID,
		OwnerID:     event.OwnerID,
		OccurredAt:  event.OccurredAt.UTC(),
	}
	if w := event.Warehouse; w != nil {
		payload.Warehouse = &warehousePayload{
			ID:          w.ID,
			Name:        w.Name,
			Location:    w.Location,
			Type:        string(w.Type),
			Capacity:    w.Capacity,
			FloorAreaM2: w.FloorAreaM2,
			IsActive:    w.IsActive,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.broker.Publish(ctx, p.Topic(event.Type), p.qos, false, body)
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domainWarehouse.Event) error {
	return nil
}
