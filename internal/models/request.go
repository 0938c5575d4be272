package models

type CheckoutItemRequest struct {
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	PriceCents int64   `json:"price_cents"`
	Quantity   int64   `json:"quantity"`
	ColorName  *string `json:"color_name,omitempty"`
	Size       *string `json:"size,omitempty"`
}

type CheckoutRequest struct {
	Items    []CheckoutItemRequest `json:"items"`
	Shipping ShippingDetails       `json:"shipping"`
}

type CreateCommentRequest struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
