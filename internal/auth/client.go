package auth

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

// LoginError is returned when the auth service rejects a login or
// signup attempt. It carries the HTTP status and the service's message.
type LoginError struct {
	StatusCode int
	Message    string
}

func (e *LoginError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth service rejected request (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("auth service rejected request (%d)", e.StatusCode)
}

// IsLoginError reports whether err is a rejection from the auth service,
// as opposed to a transport failure.
func IsLoginError(err error) bool {
	var le *LoginError
	return errors.As(err, &le)
}

// Client is a thin HTTP client for the SwiftTrack auth service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an auth client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Login exchanges an email and password for an authenticated user with
// a bearer token.
func (c *Client) Login(
	ctx context.Context,
	email, password string,
) (*model.User, error) {
	return c.post(ctx, "/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Signup registers a new account and returns the authenticated user.
func (c *Client) Signup(
	ctx context.Context,
	name, email, password string,
) (*model.User, error) {
	return c.post(ctx, "/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

// post sends credentials to an auth endpoint and decodes the user
// response. Non-2xx responses are surfaced as LoginError with the
// service's message field when present.
func (c *Client) post(
	ctx context.Context,
	path string,
	body map[string]string,
) (*model.User, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var svcErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(respBody, &svcErr)
		return nil, &LoginError{
			StatusCode: resp.StatusCode,
			Message:    svcErr.Message,
		}
	}

	var user model.User
	if err := json.Unmarshal(respBody, &user); err != nil {
		return nil, fmt.Errorf("unmarshaling response from POST %s: %w", path, err)
	}
	if user.Token == "" {
		return nil, fmt.Errorf("auth service returned no token for %s", user.Email)
	}

	return &user, nil
}
