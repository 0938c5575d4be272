package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gold-lifestyle-backend/internal/logger"
	"gold-lifestyle-backend/internal/models"
)

type fakeSender struct {
	sent     []*mail.SGMailV3
	response *rest.Response
	err      error
}

func (f *fakeSender) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return f.response, f.err
}

func sampleOrder() models.OrderNotification {
	return models.OrderNotification{
		OrderID:          uuid.MustParse("7b1d3c1e-2f7e-4c1a-9c55-6f0a3d2b8e11"),
		Status:           models.OrderStatusCompleted,
		TotalCents:       3997,
		PaymentReference: "gold_1700000000000_abc",
		Shipping: models.ShippingDetails{
			FullName: "Ada <script>",
			Email:    "ada@example.com",
			City:     "Lagos",
		},
		Items: models.LineItems{
			{ProductID: "p1", Name: "Tee", PriceCents: 999, Quantity: 2, Size: "M"},
			{ProductID: "p2", Name: "Cap", PriceCents: 1999, Quantity: 1, ColorName: "Red"},
		},
	}
}

func TestRenderOrderHTML(t *testing.T) {
	html, err := RenderOrderHTML(sampleOrder())
	require.NoError(t, err)

	assert.Contains(t, html, "New order: 7b1d3c1e-2f7e-4c1a-9c55-6f0a3d2b8e11")
	assert.Contains(t, html, "Total: $39.97")
	assert.Contains(t, html, "Tx Ref: gold_1700000000000_abc")
	assert.Contains(t, html, "Tee · M × 2 = $19.98")
	assert.Contains(t, html, "Cap · Red × 1 = $19.99")
	assert.Contains(t, html, "Ada &lt;script&gt;")
	assert.NotContains(t, html, "<script>")
}

func TestSendGridNotifier_Sends(t *testing.T) {
	fake := &fakeSender{response: &rest.Response{StatusCode: 202}}
	n := &SendGridNotifier{client: fake, from: "shop@example.com", to: "owner@example.com", logger: logger.New("error")}

	err := n.NotifyOrderCompleted(context.Background(), sampleOrder())
	require.NoError(t, err)
	require.Len(t, fake.sent, 1)
	assert.Equal(t, "New order 7b1d3c1e-2f7e-4c1a-9c55-6f0a3d2b8e11", fake.sent[0].Subject)
	assert.Equal(t, "owner@example.com", fake.sent[0].Personalizations[0].To[0].Address)
}

func TestSendGridNotifier_RejectedStatus(t *testing.T) {
	fake := &fakeSender{response: &rest.Response{StatusCode: 401, Body: "unauthorized"}}
	n := &SendGridNotifier{client: fake, from: "shop@example.com", to: "owner@example.com", logger: logger.New("error")}

	err := n.NotifyOrderCompleted(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")
}

func TestSendGridNotifier_TransportError(t *testing.T) {
	fake := &fakeSender{err: errors.New("dial tcp: timeout")}
	n := &SendGridNotifier{client: fake, from: "shop@example.com", to: "owner@example.com", logger: logger.New("error")}

	assert.Error(t, n.NotifyOrderCompleted(context.Background(), sampleOrder()))
}

func TestSendGridNotifier_RequiresRecipient(t *testing.T) {
	n := &SendGridNotifier{client: &fakeSender{}, from: "shop@example.com", logger: logger.New("error")}
	assert.Error(t, n.NotifyOrderCompleted(context.Background(), sampleOrder()))
}
