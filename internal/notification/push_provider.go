package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jogapp-api/internal/config"

	"go.uber.org/zap"
)

// PushProvider implements Dispatcher against an HTTP push gateway that
// accepts a JSON array of messages and returns per-message receipts
type PushProvider struct {
	config     config.NotifierConfig
	logger     *zap.Logger
	httpClient *http.Client
}

// gatewayResponse is the receipt envelope returned by the push gateway
type gatewayResponse struct {
	Data []gatewayReceipt `json:"data"`
}

type gatewayReceipt struct {
	Status  string `json:"status"` // "ok" or "error"
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details,omitempty"`
}

// NewPushProvider creates a new push gateway dispatcher
func NewPushProvider(cfg config.NotifierConfig, logger *zap.Logger) *PushProvider {
	return &PushProvider{
		config: cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// SendBatch delivers messages in gateway-sized chunks. Transport failures
// surface as an error for the whole chunk; per-message failures come back in
// the results. Nothing is retried.
func (p *PushProvider) SendBatch(ctx context.Context, messages []Message) ([]DeliveryResult, error) {
	if len(messages) == 0 {
		return nil, nil
	}

	batchSize := p.config.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	results := make([]DeliveryResult, 0, len(messages))
	for start := 0; start < len(messages); start += batchSize {
		end := start + batchSize
		if end > len(messages) {
			end = len(messages)
		}
		chunk := messages[start:end]

		chunkResults, err := p.sendChunk(ctx, chunk)
		if err != nil {
			// The state that triggered these messages is already
			// committed; record the whole chunk as failed and move on.
			p.logger.Error("Push gateway chunk delivery failed",
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err))
			for _, m := range chunk {
				results = append(results, DeliveryResult{To: m.To, OK: false, Error: err.Error()})
			}
			continue
		}
		results = append(results, chunkResults...)
	}
	return results, nil
}

func (p *PushProvider) sendChunk(ctx context.Context, chunk []Message) ([]DeliveryResult, error) {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return nil, NewDispatchError("marshal_batch", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return nil, NewDispatchError("build_request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, NewDispatchError("gateway_request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewDispatchError("read_response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewDispatchError("gateway_status",
			fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed gatewayResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, NewDispatchError("decode_response", err)
	}

	results := make([]DeliveryResult, len(chunk))
	for i, m := range chunk {
		result := DeliveryResult{To: m.To, OK: true}
		if i < len(parsed.Data) {
			receipt := parsed.Data[i]
			if receipt.Status != "ok" {
				result.OK = false
				result.Error = receipt.Message
				if receipt.Details.Error != "" {
					result.Error = receipt.Details.Error
				}
				// A stale token silently suppresses future deliveries for
				// that user until corrected externally.
				p.logger.Warn("Push message rejected by gateway",
					zap.String("to", m.To),
					zap.String("reason", result.Error))
			}
		}
		results[i] = result
	}
	return results, nil
}
