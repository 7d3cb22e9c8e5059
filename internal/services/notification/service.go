// Package notification dispatches outbound SMS for voucher, request,
// redemption and payment events. Dispatch failures are recorded and
// returned as results, never as errors that could fail the calling
// operation.
package notification

import (
	"context"
	"fmt"
	"log"

	"nimwema/internal/models"
)

// Service builds templated messages and delegates to the SMS provider.
type Service struct {
	client SMSClient
	config Config
}

// NewService creates a new notification dispatcher.
func NewService(client SMSClient, config Config) *Service {
	if client == nil {
		panic("sms client is required")
	}
	if config.CountryPrefix == "" {
		config.CountryPrefix = "243"
	}
	return &Service{client: client, config: config}
}

// Send renders the template and dispatches it. The returned Result
// carries the provider message id or the failure.
func (s *Service) Send(ctx context.Context, phone string, template TemplateType, params map[string]string) Result {
	message, err := buildMessage(template, params)
	if err != nil {
		return Result{Err: err}
	}

	to := FormatPhone(phone, s.config.CountryPrefix)
	if to == "" {
		return Result{Err: fmt.Errorf("invalid phone number %q", phone)}
	}

	messageID, err := s.client.Send(ctx, to, message)
	if err != nil {
		log.Printf("sms dispatch failed for %s (%s): %v", to, template, err)
		return Result{Err: err}
	}
	return Result{Success: true, MessageID: messageID}
}

// VoucherIssued sends the voucher-issued message to the recipient.
// Implements the issuer's Notifier contract.
func (s *Service) VoucherIssued(ctx context.Context, v *models.Voucher) {
	s.Send(ctx, v.RecipientPhone, TemplateVoucherIssued, map[string]string{
		"sender":   v.SenderName,
		"amount":   fmt.Sprintf("%.2f", v.Amount),
		"currency": v.Currency,
		"code":     v.Code,
		"expires":  v.ExpiresAt.Format("02 Jan 2006"),
		"message":  v.Message,
	})
}

// PaymentConfirmed tells the sender their payment was received.
func (s *Service) PaymentConfirmed(ctx context.Context, o *models.Order) {
	s.Send(ctx, o.SenderPhone, TemplatePaymentConfirmation, map[string]string{
		"amount":   fmt.Sprintf("%.2f", o.Total),
		"currency": o.Currency,
		"order":    o.ID,
	})
}

// RedemptionConfirmed tells the voucher recipient their voucher was
// consumed.
func (s *Service) RedemptionConfirmed(ctx context.Context, v *models.Voucher, r *models.Redemption) {
	s.Send(ctx, v.RecipientPhone, TemplateRedemption, map[string]string{
		"code":     v.Code,
		"merchant": r.MerchantName,
		"amount":   fmt.Sprintf("%.2f", r.Amount),
		"currency": r.Currency,
	})
}

// RequestReceived forwards a voucher request to its target sender.
func (s *Service) RequestReceived(ctx context.Context, req *models.Request) {
	if req.TargetPhone == "" {
		return
	}
	s.Send(ctx, req.TargetPhone, TemplateRequest, map[string]string{
		"requester": req.RequesterName,
		"message":   req.Message,
	})
}
