package handlers

import (
	"strings"
	"time"

	"nimwema/internal/models"
	"nimwema/internal/repositories"
	"nimwema/internal/services/notification"
	"nimwema/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type RequestHandler struct {
	requests repositories.RequestRepository
	notifier *notification.Service
	expiry   time.Duration
}

func NewRequestHandler(requests repositories.RequestRepository, notifier *notification.Service, expiry time.Duration) *RequestHandler {
	if expiry <= 0 {
		expiry = 48 * time.Hour
	}
	return &RequestHandler{
		requests: requests,
		notifier: notifier,
		expiry:   expiry,
	}
}

// CreateRequest registers a voucher ask, either on the public waiting
// list or addressed to a known sender.
func (h *RequestHandler) CreateRequest(c *fiber.Ctx) error {
	var input struct {
		RequesterName  string `json:"requester_name" validate:"required"`
		RequesterPhone string `json:"requester_phone" validate:"required"`
		Type           string `json:"type"`
		TargetName     string `json:"target_name"`
		TargetPhone    string `json:"target_phone"`
		Message        string `json:"message"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	if strings.TrimSpace(input.RequesterName) == "" || strings.TrimSpace(input.RequesterPhone) == "" {
		return response.ValidationError(c, "Requester name and phone are required")
	}

	reqType := input.Type
	if reqType != models.RequestTypeKnownSender {
		reqType = models.RequestTypeWaitingList
	}
	if reqType == models.RequestTypeKnownSender && input.TargetPhone == "" {
		return response.ValidationError(c, "Target phone is required for known-sender requests")
	}

	req := &models.Request{
		RequesterName:  input.RequesterName,
		RequesterPhone: input.RequesterPhone,
		Type:           reqType,
		TargetName:     input.TargetName,
		TargetPhone:    input.TargetPhone,
		Message:        input.Message,
		Status:         models.RequestStatusPending,
		ExpiresAt:      time.Now().Add(h.expiry),
	}
	if err := h.requests.Create(req); err != nil {
		return response.ServerError(c, err.Error())
	}

	if h.notifier != nil {
		h.notifier.RequestReceived(c.Context(), req)
	}

	return response.Success(c, "Request created", req)
}

// ListRequests returns open, unexpired requests for senders browsing
// the waiting list.
func (h *RequestHandler) ListRequests(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	requests, err := h.requests.ListOpen(limit, offset)
	if err != nil {
		return response.ServerError(c, err.Error())
	}
	return response.Success(c, "Requests found", requests)
}
