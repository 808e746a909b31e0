package model

import "context"

type Order struct {
	OrderID    string  `json:"order_id"`
	Email      string  `json:"email"`
	Value      float64 `json:"value"`
	TrackingID string  `json:"tracking_id"`
}

type TrackingEvent struct {
	TS       string `json:"ts"`
	Status   string `json:"status"`
	Location string `json:"location,omitempty"`
}

type Shipment struct {
	TrackingID    string          `json:"tracking_id"`
	Carrier       string          `json:"carrier"`
	CurrentStatus string          `json:"current_status"`
	Timeline      []TrackingEvent `json:"timeline"`
}

type OrderRepository interface {
	// Get retrieves an order document by its id.
	Get(ctx context.Context, orderID string) (*Order, error)

	// Put stores an order document, replacing any existing one.
	Put(ctx context.Context, order *Order) error
}

type ShipmentRepository interface {
	// Get retrieves a shipment document by tracking id.
	Get(ctx context.Context, trackingID string) (*Shipment, error)

	// Put stores a shipment document, replacing any existing one.
	Put(ctx context.Context, shipment *Shipment) error
}
