package handlers

import (
	"errors"

	"nimwema/internal/services/order"
	"nimwema/internal/services/payment"
	"nimwema/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	orderService   order.Service
	paymentService payment.Service
}

func NewOrderHandler(orderSvc order.Service, paymentSvc payment.Service) *OrderHandler {
	return &OrderHandler{
		orderService:   orderSvc,
		paymentService: paymentSvc,
	}
}

// CreateOrder opens a new voucher order.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var input order.CreateOrderRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	o, err := h.orderService.Create(c.Context(), input)
	if err != nil {
		if errors.Is(err, order.ErrValidation) {
			return response.ValidationError(c, err.Error())
		}
		return response.ServerError(c, err.Error())
	}

	return response.Success(c, "Order created", o)
}

// GetOrder returns a single order with its recipients.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	o, err := h.orderService.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return response.NotFound(c, "Order not found")
		}
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Order found", o)
}

// ListOrders returns a sender's orders.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	phone := c.Query("phone")
	if phone == "" {
		return response.BadRequest(c, "phone query parameter is required")
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	orders, err := h.orderService.ListBySender(c.Context(), phone, limit, offset)
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Orders found", orders)
}

// InitiatePayment starts the provider payment flow for an order.
func (h *OrderHandler) InitiatePayment(c *fiber.Ctx) error {
	result, err := h.paymentService.Initiate(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			return response.NotFound(c, "Order not found")
		case errors.Is(err, payment.ErrOrderNotPayable):
			return response.Conflict(c, err.Error())
		case errors.Is(err, payment.ErrProviderTransient):
			return response.Error(c, fiber.StatusServiceUnavailable, "Payment provider unavailable, try again")
		case errors.Is(err, payment.ErrProviderPermanent):
			return response.BadRequest(c, err.Error())
		default:
			return response.ServerError(c, err.Error())
		}
	}
	return response.Success(c, "Payment initiated", result)
}
