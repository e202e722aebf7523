package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tenant-platform/internal/model"
)

// Client talks to the tenant platform REST API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a new API client. Token may be empty for the
// unauthenticated login calls.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) do(method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Error bodies may still carry partial results, like the number
		// of approvals committed before a batch aborted.
		if out != nil {
			_ = json.Unmarshal(data, out)
		}
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Login performs step one of the two-phase login and returns the pending
// token. The verification code arrives by email.
func (c *Client) Login(username, password string) (string, error) {
	var resp struct {
		Message      string `json:"message"`
		PendingToken string `json:"pending_token"`
	}
	err := c.do("POST", "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.PendingToken, nil
}

// Verify completes the login with the emailed code and returns the
// session token.
func (c *Client) Verify(pendingToken, code string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do("POST", "/auth/verify-2fa", map[string]string{
		"pending_token": pendingToken,
		"code":          code,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Logout closes the current session, or every session when all is true.
func (c *Client) Logout(all bool) error {
	path := "/api/auth/logout"
	if all {
		path = "/api/auth/logout-all"
	}
	return c.do("POST", path, nil, nil)
}

// Sessions returns the caller's login history, newest first.
func (c *Client) Sessions() ([]model.LoginSession, error) {
	var resp struct {
		Sessions []model.LoginSession `json:"sessions"`
	}
	if err := c.do("GET", "/api/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// ListRequests returns signup requests, optionally filtered by status.
func (c *Client) ListRequests(status string) ([]model.TenantRequest, error) {
	path := "/api/admin/tenant-requests"
	if status != "" {
		path += "?status=" + status
	}
	var resp struct {
		Requests []model.TenantRequest `json:"requests"`
	}
	if err := c.do("GET", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Requests, nil
}

// ApproveRequests approves the given pending requests and returns how
// many were provisioned.
func (c *Client) ApproveRequests(ids []uint) (int, error) {
	var resp struct {
		Approved int `json:"approved"`
	}
	err := c.do("POST", "/api/admin/tenant-requests/approve", map[string]interface{}{
		"request_ids": ids,
	}, &resp)
	return resp.Approved, err
}

// RejectRequests rejects the given pending requests.
func (c *Client) RejectRequests(ids []uint) (int64, error) {
	var resp struct {
		Rejected int64 `json:"rejected"`
	}
	err := c.do("POST", "/api/admin/tenant-requests/reject", map[string]interface{}{
		"request_ids": ids,
	}, &resp)
	return resp.Rejected, err
}

// ListTenants returns all provisioned tenants.
func (c *Client) ListTenants() ([]model.Client, error) {
	var resp struct {
		Tenants []model.Client `json:"tenants"`
	}
	if err := c.do("GET", "/api/admin/tenants", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tenants, nil
}

// SuspendTenants suspends the given tenants and returns how many rows
// changed.
func (c *Client) SuspendTenants(ids []uint) (int64, error) {
	return c.updateTenants("/api/admin/tenants/suspend", ids)
}

// ActivateTenants reactivates the given tenants.
func (c *Client) ActivateTenants(ids []uint) (int64, error) {
	return c.updateTenants("/api/admin/tenants/activate", ids)
}

func (c *Client) updateTenants(path string, ids []uint) (int64, error) {
	var resp struct {
		Updated int64 `json:"updated"`
	}
	err := c.do("POST", path, map[string]interface{}{
		"client_ids": ids,
	}, &resp)
	return resp.Updated, err
}

// TenantOrders returns a tenant's subscription orders.
func (c *Client) TenantOrders(tenantID uint) ([]model.SubscriptionOrder, error) {
	var resp struct {
		Orders []model.SubscriptionOrder `json:"orders"`
	}
	path := fmt.Sprintf("/api/admin/tenants/%d/orders", tenantID)
	if err := c.do("GET", path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}
