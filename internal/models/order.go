package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
)

type Order struct {
	ID                    uuid.UUID
	TotalCents            int64
	Status                string
	Shipping              ShippingDetails
	Items                 LineItems
	PaymentReference      string
	ExternalTransactionID sql.NullString
	ExternalStatus        sql.NullString
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsTerminal reports whether the order can no longer change status.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusFailed
}

// LineItem is a snapshot of a cart line taken at checkout. It is never
// re-read from the catalog.
type LineItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int64  `json:"quantity"`
	ColorName  string `json:"color_name,omitempty"`
	Size       string `json:"size,omitempty"`
}

func (li LineItem) SubtotalCents() int64 {
	return li.PriceCents * li.Quantity
}

type LineItems []LineItem

func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *LineItems) Scan(src interface{}) error {
	return scanJSON(src, l)
}

type ShippingDetails struct {
	FullName   string `json:"fullName,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

func (s ShippingDetails) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *ShippingDetails) Scan(src interface{}) error {
	return scanJSON(src, s)
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
}

// PaymentCustomer is the contact block sent to the payment gateway.
type PaymentCustomer struct {
	Email string
	Phone string
	Name  string
}

type PaymentRequest struct {
	OrderID     uuid.UUID
	Reference   string
	AmountCents int64
	Currency    string
	RedirectURL string
	Customer    PaymentCustomer
}

// OrderNotification is the summary mailed to the store owner once an order
// is paid.
type OrderNotification struct {
	OrderID          uuid.UUID
	Status           string
	TotalCents       int64
	PaymentReference string
	Shipping         ShippingDetails
	Items            LineItems
}
