package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"shopfloor-backend/config"
	"shopfloor-backend/internal/model"
)

// Job is an open job header as exposed by the ERP, used to populate the
// job/part dropdowns on the capture forms.
type Job struct {
	JobNumber  string `json:"job_number"`
	PartNumber string `json:"part_number"`
	WorkCenter string `json:"work_center"`
	DueDate    string `json:"due_date"`
}

// Gateway is a token-authenticated HTTP client for the ERP. The token cache
// is owned by the gateway instance, not by package state, so two gateways
// never share credentials.
type Gateway struct {
	baseURL   string
	apiKey    string
	apiSecret string
	client    *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewGateway creates a gateway from config.
func NewGateway(cfg *config.ERPConfig) *Gateway {
	return &Gateway{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// ensureToken re-authenticates only when the cached token is absent or
// expired. A small skew margin keeps a token from expiring mid-request.
func (g *Gateway) ensureToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token != "" && time.Now().Before(g.expiry.Add(-30*time.Second)) {
		return g.token, nil
	}

	body, _ := json.Marshal(map[string]string{"api_key": g.apiKey, "api_secret": g.apiSecret})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/auth", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build ERP auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ERP auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ERP auth returned status %d", resp.StatusCode)
	}

	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return "", fmt.Errorf("failed to decode ERP auth response: %w", err)
	}

	g.token = auth.Token
	g.expiry = time.Now().Add(time.Duration(auth.ExpiresIn) * time.Second)
	return g.token, nil
}

// invalidateToken drops the cached token so the next call re-authenticates.
func (g *Gateway) invalidateToken() {
	g.mu.Lock()
	g.token = ""
	g.mu.Unlock()
}

// do performs one authenticated round trip and decodes a JSON response into
// out (when out is non-nil).
func (g *Gateway) do(ctx context.Context, method, path string, payload, out any) error {
	token, err := g.ensureToken(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal ERP payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build ERP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("ERP request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		g.invalidateToken()
		return fmt.Errorf("ERP rejected token for %s %s", method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ERP request %s %s returned status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode ERP response for %s %s: %w", method, path, err)
		}
	}
	return nil
}

// FetchOpenJobs returns the ERP's open job list.
func (g *Gateway) FetchOpenJobs(ctx context.Context) ([]Job, error) {
	var jobs []Job
	if err := g.do(ctx, http.MethodGet, "/api/jobs?status=open", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// SyncPourReport pushes one pour report to the ERP.
func (g *Gateway) SyncPourReport(ctx context.Context, report *model.PourReport) error {
	return g.do(ctx, http.MethodPost, "/api/pour-reports", report, nil)
}
