package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jogapp-api/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// HTTPPlanProvider implements the PlanProvider interface against a hosted
// generative model API
type HTTPPlanProvider struct {
	config     config.PlannerConfig
	logger     *zap.Logger
	httpClient *http.Client
	backoff    backoff.BackOff
}

// modelRequest represents the request structure for the model API
type modelRequest struct {
	Contents         []modelContent        `json:"contents"`
	GenerationConfig modelGenerationConfig `json:"generationConfig,omitempty"`
}

type modelContent struct {
	Parts []modelPart `json:"parts"`
	Role  string      `json:"role,omitempty"`
}

type modelPart struct {
	Text string `json:"text"`
}

type modelGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// modelResponse represents the response from the model API
type modelResponse struct {
	Candidates []modelCandidate `json:"candidates"`
	Error      *modelError      `json:"error,omitempty"`
}

type modelCandidate struct {
	Content      modelContent `json:"content"`
	FinishReason string       `json:"finishReason"`
}

type modelError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewHTTPPlanProvider creates a new HTTPPlanProvider instance
func NewHTTPPlanProvider(config config.PlannerConfig, logger *zap.Logger) *HTTPPlanProvider {
	httpClient := &http.Client{
		Timeout: time.Duration(config.Timeout) * time.Second,
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.InitialInterval = 1 * time.Second
	backoffStrategy.MaxInterval = 30 * time.Second
	backoffStrategy.MaxElapsedTime = 2 * time.Minute
	backoffStrategy.Multiplier = 2.0

	backoffWithRetry := backoff.WithMaxRetries(backoffStrategy, uint64(config.MaxRetries))

	return &HTTPPlanProvider{
		config:     config,
		logger:     logger,
		httpClient: httpClient,
		backoff:    backoffWithRetry,
	}
}

// GeneratePlan implements the PlanProvider interface
func (p *HTTPPlanProvider) GeneratePlan(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	p.logger.Info("Generating day plan",
		zap.String("user_id", string(req.UserID)),
		zap.String("date", req.Date))

	if p.config.APIKey == "" {
		return nil, NewConfigurationError("api_key", "API key is required")
	}

	modelReq := modelRequest{
		Contents: []modelContent{
			{
				Parts: []modelPart{{Text: p.buildPrompt(req)}},
				Role:  "user",
			},
		},
		GenerationConfig: modelGenerationConfig{
			Temperature:     0.2,
			MaxOutputTokens: 2048,
		},
	}

	var response *PlanResponse
	var err error

	operation := func() error {
		response, err = p.callAPI(ctx, modelReq)
		if err != nil {
			if IsRetryable(err) {
				p.logger.Warn("Retryable planner error, will retry", zap.Error(err))
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	err = backoff.Retry(operation, backoff.WithContext(p.backoff, ctx))
	if err != nil {
		p.logger.Error("Failed to generate plan after retries",
			zap.String("user_id", string(req.UserID)),
			zap.Error(err))
		return nil, err
	}

	return response, nil
}

// ValidateConnection implements the PlanProvider interface
func (p *HTTPPlanProvider) ValidateConnection(ctx context.Context) error {
	testReq := PlanRequest{
		UserID:      "connection-test",
		Description: "connection test",
		Date:        time.Now().Format("2006-01-02"),
	}

	if _, err := p.GeneratePlan(ctx, testReq); err != nil {
		return fmt.Errorf("connection validation failed: %w", err)
	}
	return nil
}

// buildPrompt creates a structured prompt for the planning model
func (p *HTTPPlanProvider) buildPrompt(req PlanRequest) string {
	return `You are a daily planning assistant for people with ADHD. Turn the
user's description of their day into a list of small, concrete jogs
(reminders). Respond with valid JSON only, no other text.

The JSON must have this exact structure:
{
  "jogs": [
    {
      "jogName": "short actionable title",
      "startTime": "HH:MM in 24h local time",
      "reminderTimes": [5, 30],
      "isStepBased": false,
      "steps": [{"stepName": "...", "startTime": "HH:MM"}],
      "category": "optional single word"
    }
  ],
  "reasoning": "brief explanation"
}

Rules:
- reminderTimes entries must come from: 5, 10, 15, 30, 60
- steps is only present when isStepBased is true
- break activities longer than an hour into steps

Date: ` + req.Date + `
Timezone: ` + req.Timezone + `
Day description: "` + req.Description + `"

Respond with JSON only:`
}

// callAPI makes the actual HTTP request to the model API
func (p *HTTPPlanProvider) callAPI(ctx context.Context, req modelRequest) (*PlanResponse, error) {
	requestBody, err := json.Marshal(req)
	if err != nil {
		return nil, NewMalformedPlanError("failed to marshal request", err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.config.APIEndpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, NewNetworkError("create_request", "failed to create HTTP request", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.config.APIKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewNetworkError("http_request", "failed to make HTTP request", err)
	}
	defer httpResp.Body.Close()

	responseBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewNetworkError("read_response", "failed to read response body", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, p.handleHTTPError(httpResp.StatusCode, responseBody)
	}

	return p.parseModelResponse(responseBody)
}

// parseModelResponse parses the model API response and extracts the plans
func (p *HTTPPlanProvider) parseModelResponse(responseBody []byte) (*PlanResponse, error) {
	var modelResp modelResponse
	if err := json.Unmarshal(responseBody, &modelResp); err != nil {
		return nil, NewMalformedPlanError("failed to parse API response", err.Error())
	}

	if modelResp.Error != nil {
		return nil, NewAPIError(modelResp.Error.Code, modelResp.Error.Status,
			modelResp.Error.Message, "API returned error response")
	}

	if len(modelResp.Candidates) == 0 || len(modelResp.Candidates[0].Content.Parts) == 0 {
		return nil, NewAPIError(http.StatusOK, ErrorCodeServiceUnavailable,
			"empty candidates in API response", string(responseBody))
	}

	responseText := modelResp.Candidates[0].Content.Parts[0].Text
	jsonStr := extractJSON(responseText)

	var planData struct {
		Jogs      []JogPlan `json:"jogs"`
		Reasoning string    `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &planData); err != nil {
		return nil, NewMalformedPlanError("failed to parse plan JSON from response",
			fmt.Sprintf("response text: %s, error: %v", responseText, err))
	}

	return &PlanResponse{
		Plans:     planData.Jogs,
		Reasoning: planData.Reasoning,
	}, nil
}

// extractJSON extracts a JSON object from text that might wrap it in prose
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return text
	}

	braceCount := 0
	for i := start; i < len(text); i++ {
		if text[i] == '{' {
			braceCount++
		} else if text[i] == '}' {
			braceCount--
			if braceCount == 0 {
				return text[start : i+1]
			}
		}
	}
	return text[start:]
}

// handleHTTPError creates an appropriate error based on HTTP status code
func (p *HTTPPlanProvider) handleHTTPError(statusCode int, responseBody []byte) error {
	errorMsg := "Unknown error"
	errorCode := ErrorCodeUnknown

	var modelResp modelResponse
	if err := json.Unmarshal(responseBody, &modelResp); err == nil && modelResp.Error != nil {
		errorMsg = modelResp.Error.Message
		errorCode = modelResp.Error.Status
	} else {
		errorMsg = string(responseBody)
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return NewAPIError(statusCode, ErrorCodeInvalidAPIKey, "Invalid API key or permissions", errorMsg)
	case http.StatusTooManyRequests:
		return NewAPIError(statusCode, ErrorCodeRateLimited, "Rate limited", errorMsg)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return NewAPIError(statusCode, ErrorCodeServiceUnavailable, "Service unavailable", errorMsg)
	default:
		return NewAPIError(statusCode, errorCode, errorMsg, string(responseBody))
	}
}
