package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/scenario-planner/backend-go/internal/domain"
)

const runScenarioPath = "/scenario/run"

// SimulationClient talks to the simulation backend.
type SimulationClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewSimulationClient builds a client for baseURL. A zero timeout leaves the
// request without a deadline.
func NewSimulationClient(baseURL string, timeout time.Duration) *SimulationClient {
	return &SimulationClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RunScenario posts the reduced scenario payload once. Every failure is wrapped
// in domain.ErrBackendUnavailable.
func (c *SimulationClient) RunScenario(ctx context.Context, req domain.SimulationRequest) (*domain.SimulationResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrBackendUnavailable, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+runScenarioPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrBackendUnavailable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrBackendUnavailable, resp.StatusCode, truncate(body, 200))
	}

	return decodeSimulationResponse(body)
}

func decodeSimulationResponse(body []byte) (*domain.SimulationResponse, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrBackendUnavailable, err)
	}

	out := &domain.SimulationResponse{}
	required := []struct {
		key  string
		dest *float64
	}{
		{"total_cost", &out.TotalCost},
		{"expected_delay", &out.ExpectedDelay},
		{"service_level", &out.ServiceLevel},
	}
	for _, field := range required {
		v, ok := raw[field.key]
		if !ok {
			return nil, fmt.Errorf("%w: response missing %s", domain.ErrBackendUnavailable, field.key)
		}
		var n *float64
		if err := json.Unmarshal(v, &n); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrBackendUnavailable, field.key, err)
		}
		if n == nil {
			return nil, fmt.Errorf("%w: response has null %s", domain.ErrBackendUnavailable, field.key)
		}
		*field.dest = *n
		delete(raw, field.key)
	}

	if len(raw) > 0 {
		out.Extra = raw
	}
	return out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
