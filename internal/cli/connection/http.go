// Package connection provides the admin HTTP client for esriagol-cli.
package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AdminClient talks to the gateway admin API.
type AdminClient struct {
	baseURL  string
	adminKey string
	client   *http.Client
}

// NewAdminClient creates an admin API client. A server address without
// a scheme defaults to http.
func NewAdminClient(server, adminKey string) *AdminClient {
	baseURL := server
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	return &AdminClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		adminKey: adminKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Get performs a GET request against an admin path.
func (c *AdminClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.addHeaders(req)
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *AdminClient) Post(ctx context.Context, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.addHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.client.Do(req)
}

func (c *AdminClient) addHeaders(req *http.Request) {
	if c.adminKey != "" {
		req.Header.Set("X-Admin-Key", c.adminKey)
	}
	req.Header.Set("User-Agent", "esriagol-cli/1.0")
}

// BaseURL returns the resolved base URL.
func (c *AdminClient) BaseURL() string {
	return c.baseURL
}

// ParseResponse decodes a JSON response into target, converting error
// envelopes into Go errors.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details string `json:"details"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Message != "" {
			if errResp.Details != "" {
				return fmt.Errorf("[%s] %s: %s", errResp.Code, errResp.Message, errResp.Details)
			}
			return fmt.Errorf("[%s] %s", errResp.Code, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
