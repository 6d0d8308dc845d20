package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeUserRegistered  = "USER_REGISTERED"
	EventTypeClientCreated   = "CLIENT_CREATED"
	EventTypeShipmentCreated = "SHIPMENT_CREATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// UserRegisteredEvent published when a new account is created
type UserRegisteredEvent struct {
	BaseEvent
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ClientCreatedEvent published when an admin opens a client suite
type ClientCreatedEvent struct {
	BaseEvent
	ClientID int64  `json:"client_id"`
	UserID   int64  `json:"user_id"`
	SuiteID  string `json:"suite_id"`
}

// ShipmentCreatedEvent published when a shipment is opened
type ShipmentCreatedEvent struct {
	BaseEvent
	ShipmentID int64              `json:"shipment_id"`
	ClientID   int64              `json:"client_id"`
	CarrierID  int64              `json:"carrier_id"`
	TotalCost  decimal.Decimal    `json:"total_cost"`
	Items      []ShipmentItemData `json:"items"`
}

// ShipmentItemData represents item data in events
type ShipmentItemData struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
