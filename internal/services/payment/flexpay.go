package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nimwema/internal/models"
)

// FlexPay transaction types
const (
	flexPayTypeMobile = 1
	flexPayTypeCard   = 2
)

// FlexPayConfig holds the FlexPay provider settings.
type FlexPayConfig struct {
	URL         string
	Token       string
	Merchant    string
	CallbackURL string
	Timeout     time.Duration
}

type flexPayGateway struct {
	config FlexPayConfig
	client *http.Client
}

// NewFlexPayGateway creates a gateway for FlexPay mobile-money and
// card payments.
func NewFlexPayGateway(config FlexPayConfig) Gateway {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &flexPayGateway{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

type flexPayRequest struct {
	Merchant    string  `json:"merchant"`
	Type        int     `json:"type"`
	Phone       string  `json:"phone,omitempty"`
	Reference   string  `json:"reference"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	CallbackURL string  `json:"callbackUrl"`
}

type flexPayResponse struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	OrderNumber string `json:"orderNumber"`
	URL         string `json:"url"`
}

func (g *flexPayGateway) Initiate(ctx context.Context, order *models.Order) (*InitiationResult, error) {
	txType := flexPayTypeMobile
	if order.PaymentMethod == models.PaymentMethodFlexPayCard {
		txType = flexPayTypeCard
	}

	body := flexPayRequest{
		Merchant:    g.config.Merchant,
		Type:        txType,
		Phone:       order.SenderPhone,
		Reference:   order.PaymentReference,
		Amount:      order.Total,
		Currency:    order.Currency,
		CallbackURL: g.config.CallbackURL,
	}

	var resp flexPayResponse
	if err := g.post(ctx, g.config.URL+"/paymentService", body, &resp); err != nil {
		return nil, err
	}
	if resp.Code != "0" {
		return nil, fmt.Errorf("%w: %s", ErrProviderPermanent, resp.Message)
	}

	result := &InitiationResult{
		Reference:         order.PaymentReference,
		ProviderReference: resp.OrderNumber,
	}
	if txType == flexPayTypeCard {
		result.RedirectURL = resp.URL
	} else {
		result.Instructions = "Confirm the payment prompt on your phone."
	}
	return result, nil
}

type flexPayCheckResponse struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Transaction struct {
		Status string `json:"status"`
	} `json:"transaction"`
}

func (g *flexPayGateway) CheckStatus(ctx context.Context, providerRef string) (Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.config.URL+"/check/"+providerRef, nil)
	if err != nil {
		return StatusPending, fmt.Errorf("failed to build check request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.config.Token)

	resp, err := g.client.Do(req)
	if err != nil {
		return StatusPending, fmt.Errorf("%w: %v", ErrProviderTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return StatusPending, fmt.Errorf("%w: provider status %d", ErrProviderTransient, resp.StatusCode)
	}

	var body flexPayCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return StatusPending, fmt.Errorf("%w: bad check response: %v", ErrProviderTransient, err)
	}

	// Only an explicit provider verdict moves the status; ambiguous
	// responses stay pending rather than defaulting to failed.
	switch {
	case body.Code == "0" && body.Transaction.Status == "0":
		return StatusCompleted, nil
	case body.Code == "0" && body.Transaction.Status == "1":
		return StatusFailed, nil
	default:
		return StatusPending, nil
	}
}

func (g *flexPayGateway) post(ctx context.Context, url string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.config.Token)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: provider status %d", ErrProviderTransient, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: provider status %d", ErrProviderPermanent, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: bad provider response: %v", ErrProviderTransient, err)
	}
	return nil
}
