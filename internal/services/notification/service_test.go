package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"nimwema/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMSClient captures outbound messages.
type fakeSMSClient struct {
	to       []string
	messages []string
	err      error
}

func (f *fakeSMSClient) Send(ctx context.Context, to, message string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.to = append(f.to, to)
	f.messages = append(f.messages, message)
	return "msg-1", nil
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		name   string
		phone  string
		prefix string
		want   string
	}{
		{"already international", "243812345678", "243", "243812345678"},
		{"leading zero", "0812345678", "243", "243812345678"},
		{"bare local number", "812345678", "243", "243812345678"},
		{"plus and spaces stripped", "+243 81 234 56 78", "243", "243812345678"},
		{"dashes stripped", "081-234-5678", "243", "243812345678"},
		{"empty", "", "243", ""},
		{"no digits", "+-() ", "243", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhone(tt.phone, tt.prefix))
		})
	}
}

func TestSend_RendersTemplate(t *testing.T) {
	client := &fakeSMSClient{}
	svc := NewService(client, Config{CountryPrefix: "243"})

	result := svc.Send(context.Background(), "0811111111", TemplateVoucherIssued, map[string]string{
		"sender":   "Chris",
		"amount":   "20.00",
		"currency": "USD",
		"code":     "123456789012",
		"expires":  "27 Nov 2026",
	})

	require.True(t, result.Success)
	assert.Equal(t, "msg-1", result.MessageID)
	require.Len(t, client.messages, 1)
	assert.Equal(t, "243811111111", client.to[0])
	assert.Contains(t, client.messages[0], "Chris sent you")
	assert.Contains(t, client.messages[0], "20.00 USD")
	assert.Contains(t, client.messages[0], "Code: 123456789012")
	assert.Contains(t, client.messages[0], "Valid until 27 Nov 2026")
	assert.NotContains(t, client.messages[0], "Message:")
}

func TestSend_IncludesPersonalMessage(t *testing.T) {
	client := &fakeSMSClient{}
	svc := NewService(client, Config{})

	svc.VoucherIssued(context.Background(), &models.Voucher{
		Code:           "123456789012",
		Amount:         20,
		Currency:       "USD",
		RecipientPhone: "0811111111",
		SenderName:     "Chris",
		Message:        "happy birthday",
		ExpiresAt:      time.Date(2026, 11, 27, 0, 0, 0, 0, time.UTC),
	})

	require.Len(t, client.messages, 1)
	assert.Contains(t, client.messages[0], "Message: happy birthday")
}

func TestSend_ProviderFailureIsAResult(t *testing.T) {
	boom := errors.New("provider down")
	svc := NewService(&fakeSMSClient{err: boom}, Config{})

	result := svc.Send(context.Background(), "0811111111", TemplatePaymentConfirmation, map[string]string{
		"amount": "20.00", "currency": "USD", "order": "ORD-1",
	})

	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, boom)
}

func TestSend_UnknownTemplate(t *testing.T) {
	client := &fakeSMSClient{}
	svc := NewService(client, Config{})

	result := svc.Send(context.Background(), "0811111111", TemplateType("carrier_pigeon"), nil)
	assert.False(t, result.Success)
	assert.Error(t, result.Err)
	assert.Empty(t, client.messages)
}

func TestSend_InvalidPhone(t *testing.T) {
	client := &fakeSMSClient{}
	svc := NewService(client, Config{})

	result := svc.Send(context.Background(), "---", TemplatePaymentConfirmation, map[string]string{
		"amount": "20.00", "currency": "USD", "order": "ORD-1",
	})
	assert.False(t, result.Success)
	assert.Error(t, result.Err)
	assert.Empty(t, client.messages)
}

func TestRequestReceived_SkipsWithoutTarget(t *testing.T) {
	client := &fakeSMSClient{}
	svc := NewService(client, Config{})

	svc.RequestReceived(context.Background(), &models.Request{RequesterName: "Aline"})
	assert.Empty(t, client.messages)

	svc.RequestReceived(context.Background(), &models.Request{
		RequesterName: "Aline",
		TargetPhone:   "0822222222",
		Message:       "groceries for the week",
	})
	require.Len(t, client.messages, 1)
	assert.Contains(t, client.messages[0], "Aline is asking")
}
