// Package risk integrates with the external fraud-analysis API that
// classifies customers into underwriting risk tiers.
package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/protecta/backend/internal/domain/proposal"
	"github.com/protecta/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// HTTPClient calls the fraud-analysis API to classify a customer.
// A customer the API does not know, or a classification outside the known
// set, maps to the NO_INFORMATION tier; transport and server failures
// surface as errors so the caller can leave the proposal untouched.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// HTTPClientOption is a functional option for configuring the client
type HTTPClientOption func(*HTTPClient)

// WithClientLogger sets the logger for the client
func WithClientLogger(logger *zap.Logger) HTTPClientOption {
	return func(c *HTTPClient) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(client *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		c.httpClient = client
	}
}

// NewHTTPClient creates a new fraud-analysis API client
func NewHTTPClient(cfg config.RiskConfig, opts ...HTTPClientOption) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := &HTTPClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type classificationResponse struct {
	CustomerID     string `json:"customer_id"`
	Classification string `json:"classification"`
}

// Classify fetches the customer's risk classification
func (c *HTTPClient) Classify(ctx context.Context, customerID uuid.UUID) (proposal.RiskTier, error) {
	url := fmt.Sprintf("%s/api/v1/customers/%s/risk", c.baseURL, customerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build risk request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("risk service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// parsed below
	case resp.StatusCode == http.StatusNotFound:
		// Unknown customer: underwriting proceeds on the most restrictive tier
		c.logger.Debug("customer unknown to risk service",
			zap.String("customer_id", customerID.String()))
		return proposal.RiskTierNoInformation, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("risk service returned status %d: %s", resp.StatusCode, body)
	}

	var payload classificationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode risk response: %w", err)
	}

	tier := proposal.RiskTier(payload.Classification)
	if !tier.IsValid() {
		c.logger.Warn("unrecognized risk classification, treating as no information",
			zap.String("customer_id", customerID.String()),
			zap.String("classification", payload.Classification))
		return proposal.RiskTierNoInformation, nil
	}
	return tier, nil
}
