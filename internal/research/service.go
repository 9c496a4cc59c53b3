package research

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ayush/research-intelligence/internal/models"
)

// ResearchPath is the only endpoint of the report service.
const ResearchPath = "/api/research"

// ReportService produces a research report for a validated request.
type ReportService interface {
	GenerateReport(ctx context.Context, req models.ResearchRequest) (*models.ResearchResponse, error)
}

// checkResp returns a *TransportError if the status is not 2xx.
// The upstream body is kept in the error for logs; it is never parsed.
func checkResp(resp *http.Response, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &TransportError{
		Op:         path,
		StatusCode: resp.StatusCode,
		Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(body))),
	}
}

// ServiceClient calls the external report service over HTTP.
type ServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewServiceClient returns a client for the service at baseURL. A zero timeout
// leaves outbound calls unbounded.
func NewServiceClient(baseURL string, timeout time.Duration) *ServiceClient {
	return &ServiceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GenerateReport calls POST /api/research.
func (c *ServiceClient) GenerateReport(ctx context.Context, req models.ResearchRequest) (*models.ResearchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("report-service %s: encode: %w", ResearchPath, err)
	}
	resp, err := c.post(ctx, ResearchPath, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, ResearchPath); err != nil {
		return nil, err
	}

	var result models.ResearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &TransportError{Op: ResearchPath, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	if !result.Success {
		return nil, &TransportError{
			Op:         ResearchPath,
			StatusCode: resp.StatusCode,
			Err:        errors.New("service reported failure: " + result.Message),
		}
	}
	return &result, nil
}

func (c *ServiceClient) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: path, Err: err}
	}
	return resp, nil
}
