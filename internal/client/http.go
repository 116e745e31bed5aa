package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/groblegark/confpub/internal/engine"
	"github.com/groblegark/confpub/internal/model"
)

// HTTPClient implements ConfigClient against the confpub HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	actor      engine.Actor
	httpClient *http.Client
}

// Compile-time check that HTTPClient implements ConfigClient.
var _ ConfigClient = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request. The actor identifies the caller on every
// mutating request.
func NewHTTPClient(baseURL, token string, actor engine.Actor) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		actor:      actor,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

func configPath(key model.OwnerKey) string {
	return "/v1/products/" + url.PathEscape(key.ProductID) + "/configs/" + url.PathEscape(key.ConfigKind)
}

func (c *HTTPClient) Statuses(ctx context.Context, productID string) (map[string]model.ConfigStatusInfo, error) {
	var resp struct {
		Configs map[string]model.ConfigStatusInfo `json:"configs"`
	}
	path := "/v1/products/" + url.PathEscape(productID) + "/configs"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Configs, nil
}

func (c *HTTPClient) Get(ctx context.Context, key model.OwnerKey, status model.Status) (*model.ConfigRecord, error) {
	path := configPath(key)
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var rec model.ConfigRecord
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) PutDraft(ctx context.Context, key model.OwnerKey, data json.RawMessage) (*model.ConfigRecord, error) {
	body := map[string]json.RawMessage{"data": data}
	var rec model.ConfigRecord
	if err := c.doJSON(ctx, http.MethodPut, configPath(key), body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) Publish(ctx context.Context, key model.OwnerKey) (*model.ConfigRecord, error) {
	var rec model.ConfigRecord
	if err := c.doJSON(ctx, http.MethodPost, configPath(key)+"/publish", nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) Rollback(ctx context.Context, key model.OwnerKey, historyID string) (*model.ConfigRecord, error) {
	body := map[string]string{"history_id": historyID}
	var rec model.ConfigRecord
	if err := c.doJSON(ctx, http.MethodPost, configPath(key)+"/rollback", body, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *HTTPClient) History(ctx context.Context, productID string, opts HistoryOptions) (*HistoryPage, error) {
	q := url.Values{}
	if opts.ConfigKind != "" {
		q.Set("configType", opts.ConfigKind)
	}
	if opts.Page > 0 {
		q.Set("page", fmt.Sprintf("%d", opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	path := "/v1/products/" + url.PathEscape(productID) + "/history"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page HistoryPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) Export(ctx context.Context, productID string) (*engine.ProductExport, error) {
	var bundle engine.ProductExport
	path := "/v1/products/" + url.PathEscape(productID) + "/export"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &bundle); err != nil {
		return nil, err
	}
	return &bundle, nil
}

func (c *HTTPClient) Import(ctx context.Context, productID string, bundle *engine.ProductExport) ([]string, error) {
	var resp struct {
		Imported []string `json:"imported"`
	}
	path := "/v1/products/" + url.PathEscape(productID) + "/import"
	if err := c.doJSON(ctx, http.MethodPut, path, bundle, &resp); err != nil {
		return nil, err
	}
	return resp.Imported, nil
}

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.actor.ID != "" {
		req.Header.Set("X-Actor", c.actor.ID)
		if c.actor.Name != "" {
			req.Header.Set("X-Actor-Name", c.actor.Name)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content — success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
