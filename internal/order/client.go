package order

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

	"github.com/swiftlogistics/swifttrack/internal/model"
)

// APIError is a non-2xx response from the order gateway, carrying the
// HTTP status and the gateway's message field when one was returned.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("order gateway error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("order gateway error (%d)", e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 from the gateway,
// meaning the session token has expired or was rejected.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// CreateResult is the gateway's acknowledgement of a newly submitted
// order. Processing continues asynchronously; progress arrives through
// the notification stream.
type CreateResult struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

// Client is a thin HTTP client for the order gateway. Every request
// carries the session's bearer token.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an order gateway client. The token is the bearer
// token obtained from the auth service at login.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Create submits a new shipment order.
func (c *Client) Create(
	ctx context.Context,
	form model.OrderForm,
) (*CreateResult, error) {
	var result CreateResult
	err := c.do(ctx, http.MethodPost, "/api/orders", form, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// List fetches every order visible to the authenticated user.
func (c *Client) List(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &orders); err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range orders {
		orders[i].FetchedAt = now
	}
	return orders, nil
}

// Get fetches a single order by ID.
func (c *Client) Get(ctx context.Context, id int64) (*model.Order, error) {
	var o model.Order
	path := fmt.Sprintf("/api/orders/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &o); err != nil {
		return nil, err
	}
	o.FetchedAt = time.Now()
	return &o, nil
}

// do builds a request against the gateway, attaches auth, and decodes
// the JSON response into result.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
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

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gwErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(respBody, &gwErr)
		return &APIError{StatusCode: resp.StatusCode, Message: gwErr.Message}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	return nil
}
