package voucher

import (
	"context"
	"fmt"
	"log"
	"time"

	"nimwema/internal/models"
	"nimwema/internal/repositories"
)

type issuer struct {
	vouchers  repositories.VoucherRepository
	requests  repositories.RequestRepository
	orders    OrderLedger
	generator CodeGenerator
	notifier  Notifier
	config    IssuerConfig
}

// NewIssuer creates a new batch issuer.
func NewIssuer(
	vouchers repositories.VoucherRepository,
	requests repositories.RequestRepository,
	orders OrderLedger,
	generator CodeGenerator,
	notifier Notifier,
	config IssuerConfig,
) Issuer {
	if vouchers == nil {
		panic("voucher repository is required")
	}
	if orders == nil {
		panic("order ledger is required")
	}
	if generator == nil {
		panic("code generator is required")
	}

	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	if config.MaxCodeRetries <= 0 {
		config.MaxCodeRetries = DefaultMaxCodeRetries
	}

	return &issuer{
		vouchers:  vouchers,
		requests:  requests,
		orders:    orders,
		generator: generator,
		notifier:  notifier,
		config:    config,
	}
}

// Issue turns the order's recipients into voucher rows in throttled
// batches. A persistence failure for one recipient is counted and
// skipped; the rest of the order still issues. After all batches the
// order is marked completed when every recipient got a voucher,
// otherwise it stays paid. Waiting-list requests behind issued
// recipients are marked fulfilled either way.
func (i *issuer) Issue(ctx context.Context, order *models.Order) (*IssueResult, error) {
	if order.Status != models.OrderStatusPaid {
		return nil, fmt.Errorf("%w: status %s", ErrOrderNotIssuable, order.Status)
	}

	recipients := order.Recipients
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	if len(recipients) > order.Quantity {
		recipients = recipients[:order.Quantity]
	}

	senderName := order.SenderName
	if order.Anonymous {
		senderName = models.AnonymousSender
	}

	result := &IssueResult{}
	var fulfilledRequests []uint

	for start := 0; start < len(recipients); start += i.config.BatchSize {
		if start > 0 {
			if err := i.pause(ctx); err != nil {
				return result, fmt.Errorf("%w: %v", ErrIssuanceInterrupted, err)
			}
		}

		end := start + i.config.BatchSize
		if end > len(recipients) {
			end = len(recipients)
		}

		for _, recipient := range recipients[start:end] {
			v, err := i.issueOne(ctx, order, recipient, senderName)
			if err != nil {
				log.Printf("voucher issuance failed for %s (order %s): %v",
					recipient.Phone, order.ID, err)
				result.Failed++
				continue
			}
			result.Issued++
			result.Vouchers = append(result.Vouchers, v)
			if recipient.RequestID != nil {
				fulfilledRequests = append(fulfilledRequests, *recipient.RequestID)
			}

			if i.notifier != nil {
				i.notifier.VoucherIssued(ctx, v)
			}
		}
	}

	// completed means every voucher for the order exists. On partial
	// failure the order stays paid so the failed recipients can be
	// reissued.
	if result.Failed == 0 {
		if _, err := i.orders.Transition(ctx, order.ID, models.OrderStatusCompleted); err != nil {
			return result, fmt.Errorf("failed to complete order %s: %w", order.ID, err)
		}
	} else {
		log.Printf("order %s left paid: %d of %d vouchers failed to issue",
			order.ID, result.Failed, result.Issued+result.Failed)
	}

	if i.requests != nil && len(fulfilledRequests) > 0 {
		if err := i.requests.MarkFulfilled(ctx, fulfilledRequests); err != nil {
			log.Printf("failed to mark requests fulfilled for order %s: %v", order.ID, err)
		}
	}

	return result, nil
}

func (i *issuer) issueOne(ctx context.Context, order *models.Order, recipient models.OrderRecipient, senderName string) (*models.Voucher, error) {
	now := time.Now()

	for attempt := 0; attempt < i.config.MaxCodeRetries; attempt++ {
		code, err := i.generator.Generate()
		if err != nil {
			return nil, fmt.Errorf("code generation failed: %w", err)
		}

		v := &models.Voucher{
			Code:           code,
			Amount:         order.Amount,
			Currency:       order.Currency,
			RecipientPhone: recipient.Phone,
			RecipientName:  recipient.Name,
			SenderName:     senderName,
			Message:        order.Message,
			Status:         models.VoucherStatusPending,
			OrderID:        order.ID,
			ExpiresAt:      now.Add(i.config.TTL),
		}

		err = i.vouchers.Create(v)
		if err == nil {
			return v, nil
		}
		if err != repositories.ErrDuplicateCode {
			return nil, err
		}
		// Collision: try a fresh code.
	}

	return nil, ErrCodeSpaceExhausted
}

// pause waits the inter-batch delay, or returns early when the context
// is cancelled. A zero pause is a no-op.
func (i *issuer) pause(ctx context.Context) error {
	if i.config.BatchPause <= 0 {
		return nil
	}
	timer := time.NewTimer(i.config.BatchPause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
