package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an account that can log in. Clients get a User at registration;
// admins are provisioned out of band.
type User struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"-"`
	Role     string `db:"role" json:"role"`
}

// Roles
const (
	RoleAdmin  = "ADMIN"
	RoleClient = "CLIENT"
)

// Client is the forwarding-customer profile attached to a User. The suite ID
// is the virtual receiving address printed on inbound packages.
type Client struct {
	ID            int64           `db:"id" json:"id"`
	UserID        int64           `db:"user_id" json:"user_id"`
	FirstName     string          `db:"first_name" json:"first_name"`
	MiddleName    *string         `db:"middle_name" json:"middle_name,omitempty"`
	LastName      string          `db:"last_name" json:"last_name"`
	Document      string          `db:"document" json:"document"`
	Email         string          `db:"email" json:"email"`
	Phone         string          `db:"phone" json:"phone"`
	SuiteID       string          `db:"suite_id" json:"suite_id"`
	Addresses     AddressList     `db:"addresses" json:"addresses"`
	WalletBalance decimal.Decimal `db:"wallet_balance" json:"wallet_balance"`
}

// Address is one entry in a client's address book, stored as JSONB.
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
	Country      string `json:"country"`
}

// Product is a catalog item that can be logged into a suite.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description *string         `db:"description" json:"description,omitempty"`
	NCM         string          `db:"ncm" json:"ncm"`
	Value       decimal.Decimal `db:"value" json:"value"`
}

// Carrier is a shipping company with tiered weight-band pricing.
type Carrier struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Phone        string          `db:"phone" json:"phone"`
	Email        string          `db:"email" json:"email"`
	APIKeys      StringList      `db:"api_keys" json:"api_keys"`
	WeightPrices WeightPriceList `db:"weight_prices" json:"weight_prices"`
}

// WeightPrice is one pricing band: shipments whose weight falls inside
// [MinWeight, MaxWeight] cost Price.
type WeightPrice struct {
	MinWeight float64         `json:"min_weight"`
	MaxWeight float64         `json:"max_weight"`
	Price     decimal.Decimal `json:"price"`
}

// PriceFor returns the price of the first band covering the given weight.
// The second return is false when no band covers it.
func (w WeightPriceList) PriceFor(weight float64) (decimal.Decimal, bool) {
	for _, band := range w {
		if weight >= band.MinWeight && weight <= band.MaxWeight {
			return band.Price, true
		}
	}
	return decimal.Zero, false
}

// Shipment is an outbound consignment of suite products through a carrier.
type Shipment struct {
	ID           int64           `db:"id" json:"id"`
	ClientID     int64           `db:"client_id" json:"client_id"`
	CarrierID    int64           `db:"carrier_id" json:"carrier_id"`
	Status       string          `db:"status" json:"status"`
	TrackingCode *string         `db:"tracking_code" json:"tracking_code,omitempty"`
	TotalCost    decimal.Decimal `db:"total_cost" json:"total_cost"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Shipment statuses
const (
	ShipmentStatusOpen       = "OPEN"
	ShipmentStatusInProgress = "IN_PROGRESS"
	ShipmentStatusCompleted  = "COMPLETED"
)

// ShipmentProduct links a product (with quantity) into a shipment.
type ShipmentProduct struct {
	ID         int64 `db:"id" json:"id"`
	ShipmentID int64 `db:"shipment_id" json:"shipment_id"`
	ProductID  int64 `db:"product_id" json:"product_id"`
	Quantity   int   `db:"quantity" json:"quantity"`
}

// SystemSettings is the singleton row of business rates. Always id=1.
type SystemSettings struct {
	ID                  int64           `db:"id" json:"id"`
	ProductValueTax     decimal.Decimal `db:"product_value_tax" json:"product_value_tax"`
	ShippingTax         decimal.Decimal `db:"shipping_tax" json:"shipping_tax"`
	AssistedPurchaseTax decimal.Decimal `db:"assisted_purchase_tax" json:"assisted_purchase_tax"`
	GroupPurchaseTax    decimal.Decimal `db:"group_purchase_tax" json:"group_purchase_tax"`
	HourlyRate          decimal.Decimal `db:"hourly_rate" json:"hourly_rate"`
}

// ProcessedEvent for worker idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
