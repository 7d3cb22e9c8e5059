package payment

import (
	"context"
	"errors"
	"fmt"
	"log"

	"nimwema/internal/models"
	"nimwema/internal/services/order"
	"nimwema/internal/services/voucher"
)

type service struct {
	orders   order.Service
	issuer   voucher.Issuer
	notifier Notifier
	gateways map[string]Gateway
}

// NewService creates the payment adapter. Gateways are keyed by
// payment method; manual methods (cash, bank) have none.
func NewService(orders order.Service, issuer voucher.Issuer, notifier Notifier, flexpay, card Gateway) Service {
	if orders == nil {
		panic("order service is required")
	}
	if issuer == nil {
		panic("voucher issuer is required")
	}

	gateways := map[string]Gateway{}
	if flexpay != nil {
		gateways[models.PaymentMethodFlexPayMobile] = flexpay
		gateways[models.PaymentMethodFlexPayCard] = flexpay
	}
	if card != nil {
		gateways[models.PaymentMethodCard] = card
	}

	return &service{
		orders:   orders,
		issuer:   issuer,
		notifier: notifier,
		gateways: gateways,
	}
}

func (s *service) Initiate(ctx context.Context, orderID string) (*InitiationResult, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.OrderStatusPending && o.Status != models.OrderStatusPendingPayment {
		return nil, fmt.Errorf("%w: status %s", ErrOrderNotPayable, o.Status)
	}

	// Manual channels skip the provider entirely: the order waits for
	// an admin to confirm the money arrived.
	if o.PaymentMethod == models.PaymentMethodCash || o.PaymentMethod == models.PaymentMethodBank {
		return &InitiationResult{
			Reference:    o.PaymentReference,
			Instructions: fmt.Sprintf("Pay %.2f %s via %s and quote reference %s.", o.Total, o.Currency, o.PaymentMethod, o.PaymentReference),
		}, nil
	}

	gw, ok := s.gateways[o.PaymentMethod]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, o.PaymentMethod)
	}

	result, err := gw.Initiate(ctx, o)
	if err != nil {
		// Order state untouched: the caller decides whether to retry.
		return nil, err
	}

	if o.Status == models.OrderStatusPending {
		if _, err := s.orders.Transition(ctx, o.ID, models.OrderStatusPendingPayment); err != nil {
			return nil, err
		}
	}
	if err := s.orders.RecordPaymentInitiated(ctx, o.ID, result.ProviderReference); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *service) HandleCallback(ctx context.Context, payload CallbackPayload) error {
	if payload.Reference == "" {
		return ErrUnknownReference
	}

	o, err := s.orders.GetByPaymentReference(ctx, payload.Reference)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownReference, payload.Reference)
		}
		return err
	}

	if payload.Code == "0" {
		return s.confirm(ctx, o)
	}
	return s.fail(ctx, o)
}

func (s *service) CheckStatus(ctx context.Context, reference string) (Status, error) {
	o, err := s.orders.GetByPaymentReference(ctx, reference)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			return StatusPending, fmt.Errorf("%w: %s", ErrUnknownReference, reference)
		}
		return StatusPending, err
	}

	// Already settled: answer from the ledger without polling.
	switch o.Status {
	case models.OrderStatusPaid, models.OrderStatusCompleted:
		return StatusCompleted, nil
	case models.OrderStatusFailed, models.OrderStatusCancelled, models.OrderStatusRejected:
		return StatusFailed, nil
	}

	gw, ok := s.gateways[o.PaymentMethod]
	if !ok {
		return StatusPending, nil
	}
	if o.ProviderReference == "" {
		return StatusPending, ErrMissingProviderRef
	}

	status, err := gw.CheckStatus(ctx, o.ProviderReference)
	if err != nil {
		return StatusPending, err
	}

	switch status {
	case StatusCompleted:
		if err := s.confirm(ctx, o); err != nil {
			return status, err
		}
	case StatusFailed:
		if err := s.fail(ctx, o); err != nil {
			return status, err
		}
	}
	return status, nil
}

func (s *service) ConfirmManual(ctx context.Context, orderID string) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	return s.confirm(ctx, o)
}

func (s *service) Reject(ctx context.Context, orderID string) error {
	_, err := s.orders.Transition(ctx, orderID, models.OrderStatusRejected)
	return err
}

// confirm settles the order as paid and, when this caller wins the
// transition, runs voucher issuance. Replays lose the conditional
// update and return without side effects, which is what makes
// duplicate callbacks safe.
func (s *service) confirm(ctx context.Context, o *models.Order) error {
	won, err := s.orders.Transition(ctx, o.ID, models.OrderStatusPaid)
	if err != nil {
		// A completed order also means "already settled": a callback
		// replay arriving after issuance finished is still a no-op.
		if errors.Is(err, order.ErrInvalidTransition) && s.isSettled(ctx, o.ID) {
			return nil
		}
		return err
	}
	if !won {
		return nil
	}

	paid, err := s.orders.GetByID(ctx, o.ID)
	if err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.PaymentConfirmed(ctx, paid)
	}

	result, err := s.issuer.Issue(ctx, paid)
	if err != nil {
		return fmt.Errorf("voucher issuance failed for order %s: %w", o.ID, err)
	}
	if result.Failed > 0 {
		log.Printf("order %s: issued %d vouchers, %d failed", o.ID, result.Issued, result.Failed)
	}
	return nil
}

func (s *service) fail(ctx context.Context, o *models.Order) error {
	if _, err := s.orders.Transition(ctx, o.ID, models.OrderStatusFailed); err != nil {
		if errors.Is(err, order.ErrInvalidTransition) && s.isSettled(ctx, o.ID) {
			return nil
		}
		return err
	}
	return nil
}

func (s *service) isSettled(ctx context.Context, orderID string) bool {
	current, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return false
	}
	switch current.Status {
	case models.OrderStatusPaid, models.OrderStatusCompleted,
		models.OrderStatusFailed, models.OrderStatusCancelled, models.OrderStatusRejected:
		return true
	}
	return false
}
