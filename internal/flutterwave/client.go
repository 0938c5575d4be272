package flutterwave

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gold-lifestyle-backend/internal/models"
	"gold-lifestyle-backend/internal/money"
)

const checkoutTitle = "Gold lifestyle"

// Client talks to the Flutterwave v3 standard checkout API.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

type paymentCustomer struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phonenumber,omitempty"`
	Name        string `json:"name"`
}

type paymentCustomizations struct {
	Title string `json:"title"`
}

type PaymentRequest struct {
	TxRef          string                `json:"tx_ref"`
	Amount         json.Number           `json:"amount"`
	Currency       string                `json:"currency"`
	RedirectURL    string                `json:"redirect_url"`
	Customer       paymentCustomer       `json:"customer"`
	Meta           map[string]string     `json:"meta"`
	Customizations paymentCustomizations `json:"customizations"`
}

type PaymentResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// InitiatePayment creates a hosted payment and returns the link the customer
// is sent to. The call is made once; a failed attempt is not retried.
func (c *Client) InitiatePayment(ctx context.Context, in models.PaymentRequest) (string, error) {
	payload := PaymentRequest{
		TxRef:       in.Reference,
		Amount:      json.Number(money.Format(in.AmountCents)),
		Currency:    in.Currency,
		RedirectURL: in.RedirectURL,
		Customer: paymentCustomer{
			Email:       in.Customer.Email,
			PhoneNumber: in.Customer.Phone,
			Name:        in.Customer.Name,
		},
		Meta:           map[string]string{"order_id": in.OrderID.String()},
		Customizations: paymentCustomizations{Title: checkoutTitle},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/payments"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("failed to initiate payment: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result PaymentResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	if result.Data.Link == "" {
		return "", fmt.Errorf("payment link is empty in response: %s", result.Message)
	}

	return result.Data.Link, nil
}
