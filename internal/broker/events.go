package broker

import (
	"context"
	"time"

	"admin-dashboard/internal/models"

	"github.com/google/uuid"
)

// Event types for admin mutations
const (
	EventTypeOrderEdited    = "ORDER_EDITED"
	EventTypeOrderDeleted   = "ORDER_DELETED"
	EventTypeProductCreated = "PRODUCT_CREATED"
	EventTypeProductUpdated = "PRODUCT_UPDATED"
	EventTypeProductDeleted = "PRODUCT_DELETED"
)

// BaseEvent carries fields common to all admin events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderEvent describes an order mutation
type OrderEvent struct {
	BaseEvent
	OrderID string        `json:"order_id"`
	Order   *models.Order `json:"order,omitempty"`
}

// ProductEvent describes a catalog mutation
type ProductEvent struct {
	BaseEvent
	ProductID string          `json:"product_id"`
	Product   *models.Product `json:"product,omitempty"`
}

// EventPublisher publishes admin mutation events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderEdited publishes an OrderEdited event
func (ep *EventPublisher) PublishOrderEdited(ctx context.Context, order models.Order) error {
	event := &OrderEvent{
		BaseEvent: newBaseEvent(EventTypeOrderEdited),
		OrderID:   order.ID,
		Order:     &order,
	}
	return ep.producer.PublishEvent(ctx, "order-"+order.ID, event)
}

// PublishOrderDeleted publishes an OrderDeleted event
func (ep *EventPublisher) PublishOrderDeleted(ctx context.Context, orderID string) error {
	event := &OrderEvent{
		BaseEvent: newBaseEvent(EventTypeOrderDeleted),
		OrderID:   orderID,
	}
	return ep.producer.PublishEvent(ctx, "order-"+orderID, event)
}

// PublishProductCreated publishes a ProductCreated event
func (ep *EventPublisher) PublishProductCreated(ctx context.Context, product models.Product) error {
	event := &ProductEvent{
		BaseEvent: newBaseEvent(EventTypeProductCreated),
		ProductID: product.ID,
		Product:   &product,
	}
	return ep.producer.PublishEvent(ctx, "product-"+product.ID, event)
}

// PublishProductUpdated publishes a ProductUpdated event
func (ep *EventPublisher) PublishProductUpdated(ctx context.Context, product models.Product) error {
	event := &ProductEvent{
		BaseEvent: newBaseEvent(EventTypeProductUpdated),
		ProductID: product.ID,
		Product:   &product,
	}
	return ep.producer.PublishEvent(ctx, "product-"+product.ID, event)
}

// PublishProductDeleted publishes a ProductDeleted event
func (ep *EventPublisher) PublishProductDeleted(ctx context.Context, productID string) error {
	event := &ProductEvent{
		BaseEvent: newBaseEvent(EventTypeProductDeleted),
		ProductID: productID,
	}
	return ep.producer.PublishEvent(ctx, "product-"+productID, event)
}

func newBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
