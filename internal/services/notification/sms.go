package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SMSClientConfig holds the external SMS provider settings.
type SMSClientConfig struct {
	URL     string
	Token   string
	Sender  string
	Timeout time.Duration
}

type httpSMSClient struct {
	config SMSClientConfig
	client *http.Client
}

// NewHTTPSMSClient creates an SMS client talking to the provider's
// JSON-over-HTTP endpoint.
func NewHTTPSMSClient(config SMSClientConfig) SMSClient {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &httpSMSClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

func (c *httpSMSClient) Send(ctx context.Context, to, message string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"to":      to,
		"message": message,
		"sender":  c.config.Sender,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.Token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sms provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}

	var body struct {
		MessageID string `json:"message_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode sms response: %w", err)
	}
	return body.MessageID, nil
}
