package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gold-lifestyle-backend/internal/apperr"
	"gold-lifestyle-backend/internal/cart"
	"gold-lifestyle-backend/internal/events"
	"gold-lifestyle-backend/internal/logger"
	"gold-lifestyle-backend/internal/models"
)

type OrderServiceConfig struct {
	Currency        string
	MinPaymentCents int64
	ReferencePrefix string
	StorefrontURL   string
}

// OrderService owns the order lifecycle: pending at checkout, then completed
// or failed once the payment callback is verified.
type OrderService struct {
	orders   OrderStore
	gateway  PaymentGateway
	notifier Notifier
	events   EventPublisher
	logger   *logger.Logger
	cfg      OrderServiceConfig
	now      func() time.Time

	publishTimeout time.Duration
}

// NewOrderService wires the lifecycle. gateway, notifier and publisher may be
// nil: without a gateway checkout returns no payment link, without a
// notifier no email is sent.
func NewOrderService(orders OrderStore, gateway PaymentGateway, notifier Notifier, publisher EventPublisher, log *logger.Logger, cfg OrderServiceConfig) *OrderService {
	if cfg.ReferencePrefix == "" {
		cfg.ReferencePrefix = "gold"
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &OrderService{
		orders:   orders,
		gateway:  gateway,
		notifier: notifier,
		events:   publisher,
		logger:   log,
		cfg:      cfg,
		now:      time.Now,

		publishTimeout: publishTimeout,
	}
}

type CheckoutInput struct {
	Items    []models.LineItem
	Shipping models.ShippingDetails
}

type CheckoutResult struct {
	OrderID          uuid.UUID
	PaymentReference string
	RedirectURL      string
	TotalCents       int64
	PaymentLink      string
}

type FinalizeInput struct {
	OrderID               string
	PaymentReference      string
	ExternalStatus        string
	ExternalTransactionID string
}

type FinalizeResult struct {
	OrderID   uuid.UUID
	Status    string
	EmailSent bool
	// Transitioned is true only for the call that moved the order out of
	// pending.
	Transitioned bool
}

// CreateOrder persists a pending order and asks the gateway for a hosted
// payment link. When the gateway fails the order is kept and the partial
// result is returned together with an upstream error.
func (s *OrderService) CreateOrder(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if len(in.Items) == 0 {
		return nil, apperr.Validation("no items")
	}
	for i, item := range in.Items {
		if item.Quantity < 1 {
			return nil, apperr.Validation(fmt.Sprintf("item %d: quantity must be at least 1", i))
		}
	}
	c, err := cart.FromItems(in.Items)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}

	order, err := s.orders.CreateOrder(ctx, &models.Order{
		TotalCents:       c.TotalCents(),
		Status:           models.OrderStatusPending,
		Shipping:         in.Shipping,
		Items:            c.Lines(),
		PaymentReference: s.newPaymentReference(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	result := &CheckoutResult{
		OrderID:          order.ID,
		PaymentReference: order.PaymentReference,
		RedirectURL:      fmt.Sprintf("%s/success?order_id=%s", s.cfg.StorefrontURL, order.ID),
		TotalCents:       order.TotalCents,
	}
	s.publish(ctx, events.OrderCreated, order.ID.String(), events.OrderCreatedPayload(order.ID, order.TotalCents, order.PaymentReference))

	if s.gateway == nil {
		s.logger.Warn("payment gateway not configured; order %s will not be charged", order.ID)
		return result, nil
	}

	amount := order.TotalCents
	if amount < s.cfg.MinPaymentCents {
		amount = s.cfg.MinPaymentCents
	}
	link, err := s.gateway.InitiatePayment(ctx, models.PaymentRequest{
		OrderID:     order.ID,
		Reference:   order.PaymentReference,
		AmountCents: amount,
		Currency:    s.cfg.Currency,
		RedirectURL: result.RedirectURL,
		Customer:    paymentCustomer(in.Shipping),
	})
	if err != nil {
		s.logger.Error("failed to initiate payment for order %s: %v", order.ID, err)
		return result, apperr.Upstream("failed to initiate payment", err)
	}
	result.PaymentLink = link
	return result, nil
}

// FinalizeOrder records a payment callback and settles the order. It is safe
// to call repeatedly and concurrently for the same order: the status change
// is a conditional update from pending, and only the call that wins it sends
// the notification.
func (s *OrderService) FinalizeOrder(ctx context.Context, in FinalizeInput) (*FinalizeResult, error) {
	if in.OrderID == "" || in.PaymentReference == "" {
		return nil, apperr.Validation("missing order_id or tx_ref")
	}
	orderID, err := uuid.Parse(in.OrderID)
	if err != nil {
		return nil, apperr.NotFound("order not found")
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(order.PaymentReference), []byte(in.PaymentReference)) != 1 {
		s.logger.Warn("payment reference mismatch for order %s", orderID)
		return nil, apperr.NotFound("order not found")
	}

	if err := s.orders.RecordPaymentResult(ctx, orderID, in.PaymentReference, nullString(in.ExternalStatus), nullString(in.ExternalTransactionID)); err != nil {
		return nil, fmt.Errorf("failed to record payment result: %w", err)
	}

	result := &FinalizeResult{OrderID: orderID, Status: order.Status}
	if order.Status != models.OrderStatusPending {
		return result, nil
	}

	target := outcomeStatus(in.ExternalStatus)
	if target == models.OrderStatusPending {
		return result, nil
	}

	transitioned, err := s.orders.TransitionStatus(ctx, orderID, in.PaymentReference, models.OrderStatusPending, target)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !transitioned {
		// Another callback settled the order first.
		if latest, err := s.orders.GetOrder(ctx, orderID); err == nil {
			result.Status = latest.Status
		}
		return result, nil
	}

	result.Status = target
	result.Transitioned = true
	order.Status = target

	if target == models.OrderStatusFailed {
		s.publish(ctx, events.OrderFailed, orderID.String(), events.OrderFailedPayload(orderID, in.ExternalStatus))
		return result, nil
	}

	s.publish(ctx, events.OrderCompleted, orderID.String(), events.OrderCompletedPayload(orderID, order.TotalCents, in.ExternalTransactionID))
	result.EmailSent = s.notify(ctx, order)
	return result, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.orders.GetOrder(ctx, id)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.ListOrders(ctx)
}

// GetOrderForCustomer returns the order only when reference matches it.
func (s *OrderService) GetOrderForCustomer(ctx context.Context, id uuid.UUID, reference string) (*models.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if reference == "" || subtle.ConstantTimeCompare([]byte(order.PaymentReference), []byte(reference)) != 1 {
		return nil, apperr.NotFound("order not found")
	}
	return order, nil
}

func (s *OrderService) notify(ctx context.Context, order *models.Order) bool {
	if s.notifier == nil {
		return false
	}
	err := s.notifier.NotifyOrderCompleted(ctx, models.OrderNotification{
		OrderID:          order.ID,
		Status:           order.Status,
		TotalCents:       order.TotalCents,
		PaymentReference: order.PaymentReference,
		Shipping:         order.Shipping,
		Items:            order.Items,
	})
	if err != nil {
		s.logger.Error("%v", apperr.Partial(fmt.Sprintf("order %s completed but notification failed", order.ID), err))
		return false
	}
	return true
}

func (s *OrderService) publish(ctx context.Context, event, key string, payload map[string]interface{}) {
	publishEvent(ctx, s.events, s.publishTimeout, s.logger, event, key, payload)
}

func (s *OrderService) newPaymentReference() string {
	return fmt.Sprintf("%s_%d_%s", s.cfg.ReferencePrefix, s.now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// outcomeStatus maps the gateway's raw status to an order status. Anything
// that is neither empty, pending, nor a success is a failure.
func outcomeStatus(externalStatus string) string {
	status := strings.ToLower(strings.TrimSpace(externalStatus))
	switch {
	case strings.Contains(status, "success"):
		return models.OrderStatusCompleted
	case status == "" || status == models.OrderStatusPending:
		return models.OrderStatusPending
	default:
		return models.OrderStatusFailed
	}
}

func paymentCustomer(shipping models.ShippingDetails) models.PaymentCustomer {
	customer := models.PaymentCustomer{
		Email: shipping.Email,
		Phone: shipping.Phone,
		Name:  shipping.FullName,
	}
	if customer.Email == "" {
		customer.Email = "guest@example.com"
	}
	if customer.Name == "" {
		customer.Name = "Guest"
	}
	return customer
}
