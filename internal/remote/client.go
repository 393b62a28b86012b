// Package remote talks to a dayboard-server: account endpoints, the
// collection rows API used as a gateway backend, and a session provider
// that follows the signed in user.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/existflow/dayboard/internal/gateway"
	"github.com/existflow/dayboard/internal/model"
)

// ErrUnauthorized is returned when the server rejects the credentials
var ErrUnauthorized = errors.New("unauthorized")

// Credentials is the persisted remote login
type Credentials struct {
	ServerURL string `json:"server_url"`
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
}

// Client is the dayboard-server client
type Client struct {
	creds      Credentials
	path       string
	httpClient *http.Client
}

// NewClient loads credentials from path. A missing file starts logged out
// against serverURL.
func NewClient(path, serverURL string) (*Client, error) {
	c := &Client{
		path:       path,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	default:
		if err := sonic.Unmarshal(data, &c.creds); err != nil {
			return nil, fmt.Errorf("failed to parse credentials: %w", err)
		}
	}

	if serverURL != "" {
		c.creds.ServerURL = serverURL
	}
	if c.creds.ServerURL == "" {
		c.creds.ServerURL = "http://localhost:8080"
	}
	c.creds.ServerURL = strings.TrimRight(c.creds.ServerURL, "/")
	return c, nil
}

// SetHTTPClient replaces the HTTP client, e.g. for tests
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

func (c *Client) save() error {
	if c.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}

	data, err := sonic.ConfigStd.MarshalIndent(c.creds, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0600)
}

// SetServer sets the server URL and forgets the old login
func (c *Client) SetServer(url string) error {
	c.creds = Credentials{ServerURL: strings.TrimRight(url, "/")}
	return c.save()
}

// Server returns the server base URL
func (c *Client) Server() string {
	return c.creds.ServerURL
}

// IsLoggedIn returns true if a session token is stored
func (c *Client) IsLoggedIn() bool {
	return c.creds.Token != ""
}

// Username returns the logged in user name
func (c *Client) Username() string {
	return c.creds.Username
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    string `json:"user_id"`
}

// Register creates a new account and logs in
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	var res authResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &res)
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}
	return c.remember(username, res)
}

// Login authenticates with username and password
func (c *Client) Login(ctx context.Context, username, password string) error {
	var res authResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/login", map[string]string{
		"username": username,
		"password": password,
	}, &res)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return c.remember(username, res)
}

func (c *Client) remember(username string, res authResponse) error {
	c.creds.Token = res.Token
	c.creds.UserID = res.UserID
	c.creds.Username = username
	return c.save()
}

// Logout ends the server session and clears the stored token
func (c *Client) Logout(ctx context.Context) error {
	var err error
	if c.IsLoggedIn() {
		err = c.do(ctx, http.MethodPost, "/api/v1/logout", nil, nil)
	}
	c.creds = Credentials{ServerURL: c.creds.ServerURL}
	if saveErr := c.save(); saveErr != nil {
		return saveErr
	}
	if errors.Is(err, ErrUnauthorized) {
		return nil
	}
	return err
}

// Me is the account of the current token
type Me struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// Me fetches the current account
func (c *Client) Me(ctx context.Context) (Me, error) {
	var me Me
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, &me); err != nil {
		return Me{}, err
	}
	return me, nil
}

// do sends a JSON request and decodes a JSON response into out
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.creds.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.creds.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.creds.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// statusError maps an error response onto the gateway error kinds
func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if err := sonic.Unmarshal(data, &body); err == nil && body.Error != "" {
		msg = body.Error
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, gateway.ErrNotFound)
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
		return &model.ValidationError{Field: "request", Reason: msg}
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, ErrUnauthorized)
	default:
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, msg)
	}
}
