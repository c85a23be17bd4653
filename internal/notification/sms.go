package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSMSSender implements SMSSender against a JSON SMS provider API.
type HTTPSMSSender struct {
	apiURL   string
	apiKey   string
	senderID string
	client   *http.Client
}

// NewHTTPSMSSender creates an SMS sender for the given provider endpoint.
func NewHTTPSMSSender(apiURL, apiKey, senderID string) *HTTPSMSSender {
	return &HTTPSMSSender{
		apiURL:   apiURL,
		apiKey:   apiKey,
		senderID: senderID,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

var _ SMSSender = (*HTTPSMSSender)(nil)

type smsRequest struct {
	To       string `json:"to"`
	Body     string `json:"body"`
	SenderID string `json:"sender_id,omitempty"`
}

type smsResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// Send posts the message to the provider and returns its message ID.
func (s *HTTPSMSSender) Send(ctx context.Context, phone, body string) (string, error) {
	payload, err := json.Marshal(smsRequest{
		To:       phone,
		Body:     body,
		SenderID: s.senderID,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling SMS request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending SMS: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading SMS response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var provErr smsResponse
		if jsonErr := json.Unmarshal(respBody, &provErr); jsonErr == nil && provErr.Error != "" {
			return "", fmt.Errorf("SMS provider error: %s", provErr.Error)
		}
		return "", fmt.Errorf("SMS provider returned status %d", resp.StatusCode)
	}

	var result smsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decoding SMS response: %w", err)
	}

	return result.MessageID, nil
}
