package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is the entitlement API client used by a connected store.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	now        func() time.Time
}

// Option is a function that configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithClock overrides the clock used for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(client *Client) {
		client.now = now
	}
}

// NewClient creates a new entitlement API client.
//
// Parameters:
//   - baseURL: The API base URL including the version prefix (e.g., "https://licenses.example.com/api/v1")
//   - creds: The store token and secret material issued when the store connected
func NewClient(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		creds:   creds,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromSecret derives credentials from the license secret.
func NewClientFromSecret(baseURL, licenseSecret string, opts ...Option) *Client {
	return NewClient(baseURL, DeriveCredentials(licenseSecret), opts...)
}

// Token returns the store token.
func (c *Client) Token() string {
	return c.creds.Token
}

// Reserve asks for one license slot. A denial returns the result describing
// the store's allowance together with an *APIError.
func (c *Client) Reserve(ctx context.Context, licenseKey, productID string) (*ReserveResult, error) {
	body := map[string]string{"license_key_hash": HashLicenseKey(licenseKey)}
	if productID != "" {
		body["product_id"] = productID
	}

	var result ReserveResult
	if err := c.doSigned(ctx, "/licenses/reserve", body, &result); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
			return &result, err
		}
		return nil, fmt.Errorf("reserve: %w", err)
	}
	return &result, nil
}

// Release frees one license slot. licenseKey may be empty.
func (c *Client) Release(ctx context.Context, licenseKey string) (*ReleaseResult, error) {
	body := map[string]string{}
	if licenseKey != "" {
		body["license_key_hash"] = HashLicenseKey(licenseKey)
	}

	var result ReleaseResult
	if err := c.doSigned(ctx, "/licenses/release", body, &result); err != nil {
		return nil, fmt.Errorf("release: %w", err)
	}
	return &result, nil
}

// Sync reports the plugin's local license count. The server never adopts it.
func (c *Client) Sync(ctx context.Context, reportedCount int) (*SyncResult, error) {
	body := map[string]int{"reported_count": reportedCount}

	var result SyncResult
	if err := c.doSigned(ctx, "/licenses/sync", body, &result); err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}
	return &result, nil
}

// Status retrieves the store's entitlement status. pluginVersion may be
// empty.
func (c *Client) Status(ctx context.Context, pluginVersion string) (*StatusResult, error) {
	endpoint := fmt.Sprintf("%s/stores/%s/status", c.baseURL, url.PathEscape(c.creds.Token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("status: create request: %w", err)
	}
	if pluginVersion != "" {
		req.Header.Set("X-Plugin-Version", pluginVersion)
	}

	var result StatusResult
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	return &result, nil
}

// doSigned posts body with the store token, a timestamp and the body
// signature headers.
func (c *Client) doSigned(ctx context.Context, path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Store-Token", c.creds.Token)
	req.Header.Set("X-Timestamp", timestamp)
	req.Header.Set("X-Signature", Sign(c.creds.SecretMaterial, c.creds.Token, timestamp, data))

	return c.do(req, result)
}

// do performs an HTTP request and decodes the response envelope. The data
// of an error response is still decoded into result when present.
func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var apiResp apiResponse
	decodeErr := json.Unmarshal(respBody, &apiResp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		if decodeErr == nil && apiResp.Error != nil {
			apiErr.Type = apiResp.Error.Type
			apiErr.Message = apiResp.Error.Message
		}
		if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			apiErr.RetryAfter = time.Duration(seconds) * time.Second
		}
		if decodeErr == nil && result != nil && apiResp.Data != nil {
			_ = convertData(apiResp.Data, result)
		}
		return apiErr
	}

	if decodeErr != nil {
		return fmt.Errorf("unmarshal response: %w", decodeErr)
	}
	if result == nil || apiResp.Data == nil {
		return nil
	}
	return convertData(apiResp.Data, result)
}

// convertData re-marshals the generic data field into the target type.
func convertData(data any, result any) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}
	if err := json.Unmarshal(dataBytes, result); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	return nil
}

// IsLimitReached reports whether err is a reservation denied at the plan limit.
func IsLimitReached(err error) bool {
	return hasType(err, ErrorTypeLimitReached)
}

// IsRateLimited reports whether err is a rate limit rejection.
func IsRateLimited(err error) bool {
	return hasType(err, ErrorTypeRateLimited)
}

func hasType(err error, errorType string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == errorType
}
