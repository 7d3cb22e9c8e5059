package handlers

import (
	"errors"

	"nimwema/internal/models"
	"nimwema/internal/services/notification"
	"nimwema/internal/services/redemption"
	"nimwema/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type RedemptionHandler struct {
	redemptionService redemption.Service
	notifier          *notification.Service
}

func NewRedemptionHandler(redemptionSvc redemption.Service, notifier *notification.Service) *RedemptionHandler {
	return &RedemptionHandler{
		redemptionService: redemptionSvc,
		notifier:          notifier,
	}
}

// Redeem consumes a voucher on behalf of the authenticated merchant.
// The three failure causes map to distinct responses so support can
// tell a double redemption from a bad or expired code.
func (h *RedemptionHandler) Redeem(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.MerchantClaims)

	var input struct {
		Code     string `json:"code" validate:"required"`
		Location string `json:"location"`
		Notes    string `json:"notes"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.Code == "" {
		return response.ValidationError(c, "Voucher code is required")
	}

	merchant := redemption.MerchantInfo{
		ID:       claims.MerchantID,
		Name:     claims.Name,
		Phone:    claims.Phone,
		Location: input.Location,
		Notes:    input.Notes,
	}

	voucher, receipt, err := h.redemptionService.Redeem(c.Context(), input.Code, merchant)
	if err != nil {
		switch {
		case errors.Is(err, redemption.ErrVoucherNotFound):
			return response.NotFound(c, "Voucher not found")
		case errors.Is(err, redemption.ErrAlreadyRedeemed):
			return response.Conflict(c, "Voucher already redeemed")
		case errors.Is(err, redemption.ErrVoucherExpired):
			return response.Error(c, fiber.StatusGone, "Voucher expired")
		case errors.Is(err, redemption.ErrVoucherNotRedeemable):
			return response.Conflict(c, err.Error())
		default:
			return response.ServerError(c, err.Error())
		}
	}

	if h.notifier != nil {
		h.notifier.RedemptionConfirmed(c.Context(), voucher, receipt)
	}

	return response.Success(c, "Voucher redeemed", fiber.Map{
		"voucher":    voucher,
		"redemption": receipt,
	})
}

// Validate is the read-only pre-flight check merchants run before
// accepting a voucher.
func (h *RedemptionHandler) Validate(c *fiber.Ctx) error {
	valid, err := h.redemptionService.IsValid(c.Context(), c.Params("code"))
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Voucher checked", fiber.Map{"valid": valid})
}
