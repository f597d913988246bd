package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Dhoini/notification-relay/internal/domain"
	"github.com/Dhoini/notification-relay/pkg/logger"
)

const (
	serviceName = "zeptomail"
	// maxResponseBody ограничивает чтение ответа провайдера
	maxResponseBody = 64 << 10
)

// ZeptoMailClient реализует Sender поверх ZeptoMail API
type ZeptoMailClient struct {
	url    string
	token  string
	client *http.Client
	log    *logger.Logger
}

// NewZeptoMailClient создает клиент. timeout ограничивает весь запрос, включая чтение ответа.
func NewZeptoMailClient(url, token string, timeout time.Duration, log *logger.Logger) *ZeptoMailClient {
	return &ZeptoMailClient{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Send выполняет ровно один POST запрос
func (c *ZeptoMailClient) Send(ctx context.Context, req SendRequest) (*SendResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("mail: failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("mail: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", c.token)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.log.Errorw("ZeptoMail request failed", "error", err, "subject", req.Subject)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrExternalServiceUnavailable, serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		c.log.Errorw("Failed to read ZeptoMail response", "error", err, "status_code", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s: read response: %v", domain.ErrExternalServiceUnavailable, serviceName, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Errorw("ZeptoMail API error",
			"status_code", resp.StatusCode,
			"body", string(body),
			"subject", req.Subject,
		)
		return nil, domain.NewExternalServiceError(serviceName, "send_failed", string(body), resp.StatusCode, nil)
	}

	c.log.Debugw("Email accepted by ZeptoMail",
		"status_code", resp.StatusCode,
		"subject", req.Subject,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	sendResp := &SendResponse{StatusCode: resp.StatusCode}
	if json.Valid(body) {
		sendResp.Body = json.RawMessage(body)
	}
	return sendResp, nil
}
