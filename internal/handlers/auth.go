package handlers

import (
	"errors"

	"nimwema/internal/services/auth"
	"nimwema/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a merchant or admin and returns a JWT.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Phone    string `json:"phone" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	token, merchant, err := h.authService.Login(input.Phone, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return response.Unauthorized(c)
		}
		return response.ServerError(c, err.Error())
	}

	return response.Success(c, "Login successful", fiber.Map{
		"token": token,
		"merchant": fiber.Map{
			"id":    merchant.ID,
			"name":  merchant.Name,
			"phone": merchant.Phone,
			"role":  merchant.Role,
		},
	})
}

// RegisterMerchant creates a merchant account. Admin only.
func (h *AuthHandler) RegisterMerchant(c *fiber.Ctx) error {
	var input struct {
		Name     string `json:"name" validate:"required"`
		Phone    string `json:"phone" validate:"required"`
		Password string `json:"password" validate:"required"`
		Location string `json:"location"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if input.Name == "" || input.Phone == "" || input.Password == "" {
		return response.ValidationError(c, "Name, phone and password are required")
	}

	merchant, err := h.authService.Register(input.Name, input.Phone, input.Password, input.Location, input.Role)
	if err != nil {
		if errors.Is(err, auth.ErrMerchantExists) {
			return response.Conflict(c, "Merchant already registered")
		}
		return response.ServerError(c, err.Error())
	}

	return response.Success(c, "Merchant registered", merchant)
}
