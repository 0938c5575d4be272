package models

import "time"

type CheckoutResponse struct {
	OK               bool   `json:"ok"`
	OrderID          string `json:"order_id"`
	PaymentReference string `json:"payment_reference"`
	RedirectURL      string `json:"redirect_url"`
	TotalCents       int64  `json:"total_cents"`
	PaymentLink      string `json:"payment_link,omitempty"`
}

// CheckoutErrorResponse is returned when the order exists but the payment
// hand-off failed; the order stays pending and can still be paid later.
type CheckoutErrorResponse struct {
	ErrorResponse
	OrderID          string `json:"order_id,omitempty"`
	PaymentReference string `json:"payment_reference,omitempty"`
	RedirectURL      string `json:"redirect_url,omitempty"`
	TotalCents       int64  `json:"total_cents,omitempty"`
}

type VerifyResponse struct {
	OK        bool   `json:"ok"`
	EmailSent bool   `json:"email_sent"`
	Status    string `json:"status"`
}

type OrderResponse struct {
	ID                    string          `json:"order_id"`
	Status                string          `json:"status"`
	TotalCents            int64           `json:"total_cents"`
	PaymentReference      string          `json:"payment_reference"`
	ExternalTransactionID string          `json:"external_transaction_id,omitempty"`
	ExternalStatus        string          `json:"external_status,omitempty"`
	Shipping              ShippingDetails `json:"shipping"`
	Items                 LineItems       `json:"items"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

type OrderListResponse struct {
	Orders []OrderSummary `json:"orders"`
}

type OrderSummary struct {
	ID           string    `json:"order_id"`
	Status       string    `json:"status"`
	TotalCents   int64     `json:"total_cents"`
	CustomerName string    `json:"customer_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// OrderConfirmationResponse backs the customer's success page. When the
// order cannot be loaded Available is false and Order is omitted.
type OrderConfirmationResponse struct {
	Available bool           `json:"available"`
	Message   string         `json:"message,omitempty"`
	Order     *OrderResponse `json:"order,omitempty"`
}

type ProductSaveResponse struct {
	OK      bool            `json:"ok"`
	ID      string          `json:"id"`
	Changes *AppliedChanges `json:"changes,omitempty"`
	Message string          `json:"message,omitempty"`
}

type ProductListResponse struct {
	Products []ProductSummaryResponse `json:"products"`
}

type ProductSummaryResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PriceCents      int64  `json:"price_cents"`
	PreviewImageURL string `json:"preview_image_url,omitempty"`
	ColorsCount     int    `json:"colors_count"`
	SizesCount      int    `json:"sizes_count"`
}

type ProductResponse struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Description     string                 `json:"description"`
	PriceCents      int64                  `json:"price_cents"`
	Sizes           []string               `json:"sizes"`
	PrimaryImageURL string                 `json:"primary_image_url,omitempty"`
	Colors          []ProductColorResponse `json:"colors"`
	Images          []ProductImageResponse `json:"images"`
}

type ProductColorResponse struct {
	ID        string `json:"id"`
	ColorName string `json:"color_name"`
	ColorHex  string `json:"color_hex,omitempty"`
}

type ProductImageResponse struct {
	URL       string `json:"url"`
	ColorName string `json:"color_name"`
	ColorID   string `json:"color_id,omitempty"`
}

type CommentListResponse struct {
	Comments []Comment `json:"comments"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
