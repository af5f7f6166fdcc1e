package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/swiftlogistics/swifttrack/internal/model"
)

// Client is a thin HTTP client for the notification service REST API.
// Every call is a single request/response; the client never retries on
// its own, retry policy belongs to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a notification store client. The baseURL is the root
// URL of the notification service (e.g., http://localhost:8083).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchAll returns the full authoritative notification list.
func (c *Client) FetchAll(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := c.do(ctx, http.MethodGet, "/api/notifications", &notifications); err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}
	return notifications, nil
}

// FetchUnread returns only the notifications not yet marked read.
func (c *Client) FetchUnread(ctx context.Context) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := c.do(ctx, http.MethodGet, "/api/notifications/unread", &notifications); err != nil {
		return nil, fmt.Errorf("fetching unread notifications: %w", err)
	}
	return notifications, nil
}

// FetchUnreadCount returns the authoritative unread count. It may
// transiently diverge from a locally derived count during concurrent
// mutation.
func (c *Client) FetchUnreadCount(ctx context.Context) (int, error) {
	var payload struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/notifications/count/unread", &payload); err != nil {
		return 0, fmt.Errorf("fetching unread count: %w", err)
	}
	return payload.Count, nil
}

// FetchByOrder returns the notifications for a single order.
func (c *Client) FetchByOrder(ctx context.Context, orderID string) ([]model.Notification, error) {
	var notifications []model.Notification
	path := "/api/notifications/order/" + url.PathEscape(orderID)
	if err := c.do(ctx, http.MethodGet, path, &notifications); err != nil {
		return nil, fmt.Errorf("fetching notifications for order %s: %w", orderID, err)
	}
	return notifications, nil
}

// FetchByCustomer returns the notifications addressed to a customer.
func (c *Client) FetchByCustomer(ctx context.Context, customerName string) ([]model.Notification, error) {
	var notifications []model.Notification
	path := "/api/notifications/customer/" + url.PathEscape(customerName)
	if err := c.do(ctx, http.MethodGet, path, &notifications); err != nil {
		return nil, fmt.Errorf("fetching notifications for customer %s: %w", customerName, err)
	}
	return notifications, nil
}

// MarkRead marks a single notification as read and returns the updated
// record. Marking an already-read notification succeeds and returns it
// unchanged.
func (c *Client) MarkRead(ctx context.Context, id int64) (*model.Notification, error) {
	var n model.Notification
	path := "/api/notifications/" + strconv.FormatInt(id, 10) + "/read"
	if err := c.do(ctx, http.MethodPut, path, &n); err != nil {
		return nil, fmt.Errorf("marking notification %d read: %w", id, err)
	}
	return &n, nil
}

// MarkAllRead marks every notification as read. Idempotent.
func (c *Client) MarkAllRead(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPut, "/api/notifications/read-all", nil); err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}

// do builds the request, surfaces non-2xx statuses as TransportError,
// and decodes the JSON response into result when result is non-nil.
func (c *Client) do(ctx context.Context, method, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	if result == nil || resp.StatusCode == http.StatusNoContent || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &DecodeError{What: "store response", Err: err}
	}
	return nil
}
