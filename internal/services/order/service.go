package order

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"nimwema/internal/models"
	"nimwema/internal/repositories"

	"github.com/google/uuid"
)

const (
	DefaultFeeRate     = 0.035
	DefaultMaxQuantity = 1000
)

type service struct {
	repo   repositories.OrderRepository
	cache  Cache
	config Config
}

// NewService creates a new order ledger service.
func NewService(repo repositories.OrderRepository, cache Cache, config Config) Service {
	if repo == nil {
		panic("repo is required")
	}
	if config.FeeRate == 0 {
		config.FeeRate = DefaultFeeRate
	}
	if config.MaxQuantity == 0 {
		config.MaxQuantity = DefaultMaxQuantity
	}
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = "USD"
	}

	return &service{
		repo:   repo,
		cache:  cache,
		config: config,
	}
}

func (s *service) Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = s.config.DefaultCurrency
	}

	subtotal := req.Amount * float64(req.Quantity)
	fee := round2(subtotal * s.config.FeeRate)
	total := subtotal
	if req.CoverFees {
		total = round2(subtotal + fee)
	}

	status := models.OrderStatusPending
	if req.PaymentMethod == models.PaymentMethodFlexPayMobile ||
		req.PaymentMethod == models.PaymentMethodFlexPayCard ||
		req.PaymentMethod == models.PaymentMethodCard {
		status = models.OrderStatusPendingPayment
	}

	id := "ORD-" + uuid.New().String()
	o := &models.Order{
		ID:               id,
		SenderName:       req.SenderName,
		SenderPhone:      req.SenderPhone,
		Anonymous:        req.Anonymous,
		Amount:           req.Amount,
		Currency:         currency,
		Quantity:         req.Quantity,
		ServiceFee:       fee,
		Total:            total,
		CoverFees:        req.CoverFees,
		PaymentMethod:    req.PaymentMethod,
		Message:          req.Message,
		Status:           status,
		PaymentReference: id,
	}
	for _, r := range req.Recipients {
		o.Recipients = append(o.Recipients, models.OrderRecipient{
			OrderID:   id,
			Phone:     r.Phone,
			Name:      r.Name,
			RequestID: r.RequestID,
		})
	}

	if err := s.repo.Create(o); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.CacheOrder(ctx, o); err != nil {
			log.Printf("failed to cache order %s: %v", o.ID, err)
		}
	}

	return o, nil
}

func (s *service) validate(req CreateOrderRequest) error {
	if req.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if req.Quantity < 1 || req.Quantity > s.config.MaxQuantity {
		return fmt.Errorf("%w: quantity must be between 1 and %d", ErrValidation, s.config.MaxQuantity)
	}
	if strings.TrimSpace(req.SenderName) == "" || strings.TrimSpace(req.SenderPhone) == "" {
		return fmt.Errorf("%w: sender name and phone are required", ErrValidation)
	}
	switch req.PaymentMethod {
	case models.PaymentMethodFlexPayMobile, models.PaymentMethodFlexPayCard,
		models.PaymentMethodCard, models.PaymentMethodCash, models.PaymentMethodBank:
	default:
		return fmt.Errorf("%w: unknown payment method %q", ErrValidation, req.PaymentMethod)
	}
	if len(req.Recipients) > 0 && len(req.Recipients) != req.Quantity {
		return fmt.Errorf("%w: recipient count %d does not match quantity %d",
			ErrValidation, len(req.Recipients), req.Quantity)
	}
	for _, r := range req.Recipients {
		if strings.TrimSpace(r.Phone) == "" {
			return fmt.Errorf("%w: recipient phone is required", ErrValidation)
		}
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id string) (*models.Order, error) {
	if s.cache != nil {
		if o, err := s.cache.GetOrder(ctx, id); err == nil {
			return o, nil
		}
	}

	o, err := s.repo.GetByID(id)
	if err != nil {
		if err == repositories.ErrOrderNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.CacheOrder(ctx, o); err != nil {
			log.Printf("failed to cache order %s: %v", o.ID, err)
		}
	}
	return o, nil
}

func (s *service) GetByPaymentReference(ctx context.Context, ref string) (*models.Order, error) {
	o, err := s.repo.GetByPaymentReference(ref)
	if err != nil {
		if err == repositories.ErrOrderNotFound {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *service) ListBySender(ctx context.Context, phone string, limit, offset int) ([]*models.Order, error) {
	return s.repo.ListBySender(phone, limit, offset)
}

func (s *service) Transition(ctx context.Context, id, to string) (bool, error) {
	from, ok := allowedFrom[to]
	if !ok {
		return false, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}

	won, err := s.repo.UpdateStatusIf(ctx, id, from, to, timestampColumn[to])
	if err != nil {
		return false, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateOrder(ctx, id); err != nil {
			log.Printf("failed to invalidate order cache %s: %v", id, err)
		}
	}

	if won {
		return true, nil
	}

	// Lost the conditional update: either a replay of a transition that
	// already happened (no-op) or a genuinely illegal move.
	current, err := s.repo.GetByID(id)
	if err != nil {
		if err == repositories.ErrOrderNotFound {
			return false, ErrOrderNotFound
		}
		return false, err
	}
	if current.Status == to {
		return false, nil
	}
	return false, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
}

func (s *service) RecordPaymentInitiated(ctx context.Context, id, providerRef string) error {
	if err := s.repo.SetPaymentInitiated(ctx, id, providerRef); err != nil {
		if err == repositories.ErrOrderNotFound {
			return ErrOrderNotFound
		}
		return err
	}
	if s.cache != nil {
		if err := s.cache.InvalidateOrder(ctx, id); err != nil {
			log.Printf("failed to invalidate order cache %s: %v", id, err)
		}
	}
	return nil
}

func (s *service) Stats(ctx context.Context) ([]models.OrderStats, error) {
	return s.repo.GetStats(ctx)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
