package handlers

import (
	"errors"

	"nimwema/internal/repositories"
	"nimwema/internal/services/order"
	"nimwema/internal/services/payment"
	"nimwema/internal/services/redemption"
	"nimwema/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	orderService      order.Service
	paymentService    payment.Service
	redemptionService redemption.Service
	vouchers          repositories.VoucherRepository
}

func NewAdminHandler(orderSvc order.Service, paymentSvc payment.Service, redemptionSvc redemption.Service, vouchers repositories.VoucherRepository) *AdminHandler {
	return &AdminHandler{
		orderService:      orderSvc,
		paymentService:    paymentSvc,
		redemptionService: redemptionSvc,
		vouchers:          vouchers,
	}
}

// ApproveOrder confirms a manual (cash/bank) payment and issues the
// order's vouchers.
func (h *AdminHandler) ApproveOrder(c *fiber.Ctx) error {
	err := h.paymentService.ConfirmManual(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			return response.NotFound(c, "Order not found")
		case errors.Is(err, order.ErrInvalidTransition):
			return response.Conflict(c, err.Error())
		default:
			return response.ServerError(c, err.Error())
		}
	}
	return response.Success(c, "Order approved", nil)
}

// RejectOrder declines a manual order.
func (h *AdminHandler) RejectOrder(c *fiber.Ctx) error {
	err := h.paymentService.Reject(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			return response.NotFound(c, "Order not found")
		case errors.Is(err, order.ErrInvalidTransition):
			return response.Conflict(c, err.Error())
		default:
			return response.ServerError(c, err.Error())
		}
	}
	return response.Success(c, "Order rejected", nil)
}

// Stats aggregates order counts and volumes by status.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.orderService.Stats(c.Context())
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Order stats", stats)
}

// ListOrderVouchers returns every voucher issued for an order, with
// status and redemption details, for support lookups.
func (h *AdminHandler) ListOrderVouchers(c *fiber.Ctx) error {
	vouchers, err := h.vouchers.ListByOrder(c.Params("id"))
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Vouchers found", vouchers)
}

// ExpireVouchers runs the expiry sweep on demand.
func (h *AdminHandler) ExpireVouchers(c *fiber.Ctx) error {
	expired, err := h.redemptionService.ExpireOld(c.Context())
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Expiry sweep complete", fiber.Map{"expired": expired})
}
