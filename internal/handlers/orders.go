package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gold-lifestyle-backend/internal/apperr"
	"gold-lifestyle-backend/internal/logger"
	"gold-lifestyle-backend/internal/models"
	"gold-lifestyle-backend/internal/services"
)

const confirmationUnavailable = "order details unavailable"

type OrderService interface {
	CreateOrder(ctx context.Context, in services.CheckoutInput) (*services.CheckoutResult, error)
	FinalizeOrder(ctx context.Context, in services.FinalizeInput) (*services.FinalizeResult, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrderForCustomer(ctx context.Context, id uuid.UUID, reference string) (*models.Order, error)
}

type OrdersHandler struct {
	orders OrderService
	logger *logger.Logger
}

func NewOrdersHandler(orders OrderService, log *logger.Logger) *OrdersHandler {
	return &OrdersHandler{orders: orders, logger: log}
}

// Checkout godoc
// @Summary     Create an order and start payment
// @Description Persists a pending order and returns the hosted payment link.
// @Description When the gateway call fails the order is kept and its id is returned with a 502.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       request body models.CheckoutRequest true "Cart items and shipping details"
// @Success     200 {object} models.CheckoutResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.CheckoutErrorResponse
// @Router      /api/orders/checkout [post]
func (h *OrdersHandler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	in := services.CheckoutInput{Shipping: req.Shipping}
	for _, item := range req.Items {
		line := models.LineItem{
			ProductID:  item.ProductID,
			Name:       item.Name,
			PriceCents: item.PriceCents,
			Quantity:   item.Quantity,
		}
		if item.ColorName != nil {
			line.ColorName = *item.ColorName
		}
		if item.Size != nil {
			line.Size = *item.Size
		}
		in.Items = append(in.Items, line)
	}

	result, err := h.orders.CreateOrder(c.Request.Context(), in)
	if err != nil {
		if result != nil {
			c.JSON(apperr.HTTPStatus(err), models.CheckoutErrorResponse{
				ErrorResponse:    models.ErrorResponse{Error: apperr.Message(err)},
				OrderID:          result.OrderID.String(),
				PaymentReference: result.PaymentReference,
				RedirectURL:      result.RedirectURL,
				TotalCents:       result.TotalCents,
			})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.CheckoutResponse{
		OK:               true,
		OrderID:          result.OrderID.String(),
		PaymentReference: result.PaymentReference,
		RedirectURL:      result.RedirectURL,
		TotalCents:       result.TotalCents,
		PaymentLink:      result.PaymentLink,
	})
}

// Verify godoc
// @Summary     Settle an order from the payment gateway redirect
// @Description Safe to call more than once; the store owner is emailed only by the call that completes the order.
// @Tags        orders
// @Produce     json
// @Param       order_id       query string true  "Order ID (UUID)"
// @Param       tx_ref         query string true  "Payment reference issued at checkout"
// @Param       status         query string false "Gateway status"
// @Param       transaction_id query string false "Gateway transaction id"
// @Success     200 {object} models.VerifyResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/orders/verify [get]
func (h *OrdersHandler) Verify(c *gin.Context) {
	result, err := h.orders.FinalizeOrder(c.Request.Context(), services.FinalizeInput{
		OrderID:               c.Query("order_id"),
		PaymentReference:      c.Query("tx_ref"),
		ExternalStatus:        c.Query("status"),
		ExternalTransactionID: c.Query("transaction_id"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.VerifyResponse{
		OK:        true,
		EmailSent: result.EmailSent,
		Status:    result.Status,
	})
}

// Confirmation backs the customer's success page. It never fails: anything
// that prevents loading the order yields available=false.
func (h *OrdersHandler) Confirmation(c *gin.Context) {
	unavailable := models.OrderConfirmationResponse{Available: false, Message: confirmationUnavailable}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusOK, unavailable)
		return
	}
	order, err := h.orders.GetOrderForCustomer(c.Request.Context(), id, c.Query("tx_ref"))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			h.logger.Warn("order confirmation %s: %v", id, err)
		}
		c.JSON(http.StatusOK, unavailable)
		return
	}

	resp := orderResponse(order)
	c.JSON(http.StatusOK, models.OrderConfirmationResponse{Available: true, Order: &resp})
}

// ListOrders godoc
// @Summary     List orders for the store admin
// @Tags        store
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.OrderListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /api/store/orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := models.OrderListResponse{Orders: make([]models.OrderSummary, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, models.OrderSummary{
			ID:           o.ID.String(),
			Status:       o.Status,
			TotalCents:   o.TotalCents,
			CustomerName: o.Shipping.FullName,
			CreatedAt:    o.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// GetOrder godoc
// @Summary     Get an order for the store admin
// @Tags        store
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Order ID (UUID)"
// @Success     200 {object} models.OrderResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/store/orders/{id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid order id"})
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, orderResponse(order))
}

func orderResponse(o *models.Order) models.OrderResponse {
	items := o.Items
	if items == nil {
		items = models.LineItems{}
	}
	return models.OrderResponse{
		ID:                    o.ID.String(),
		Status:                o.Status,
		TotalCents:            o.TotalCents,
		PaymentReference:      o.PaymentReference,
		ExternalTransactionID: o.ExternalTransactionID.String,
		ExternalStatus:        o.ExternalStatus.String,
		Shipping:              o.Shipping,
		Items:                 items,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}
