// Package platform talks to the workspace REST API: identity, warehouse
// state, and app deployment.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 2 * time.Second
)

type User struct {
	ID          string `json:"id"`
	UserName    string `json:"user_name"`
	DisplayName string `json:"display_name"`
}

type Warehouse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"` // RUNNING, STOPPED, STARTING
	Size  string `json:"size"`
}

type Deployment struct {
	ID     string `json:"id"`
	Status string `json:"status"` // PENDING, IN_PROGRESS, SUCCEEDED, FAILED
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type Client struct {
	baseURL      string
	token        string
	httpClient   *http.Client
	retries      int
	pollInterval time.Duration
	logger       *slog.Logger
}

func NewClient(baseURL, token string, retries int, logger *slog.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		retries:      retries,
		pollInterval: defaultPollInterval,
		logger:       logger,
	}
}

// CurrentUser resolves the workspace identity behind the token.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var user User
	if err := c.getJSON(ctx, "/api/v1/me", &user); err != nil {
		return User{}, fmt.Errorf("current user: %w", err)
	}
	return user, nil
}

// WarehouseState reads the compute endpoint's state.
func (c *Client) WarehouseState(ctx context.Context, id string) (Warehouse, error) {
	var wh Warehouse
	if err := c.getJSON(ctx, "/api/v1/warehouses/"+id, &wh); err != nil {
		return Warehouse{}, fmt.Errorf("warehouse %s: %w", id, err)
	}
	return wh, nil
}

// Deploy uploads the app bundle and polls the deployment until it reaches a
// terminal state or the context expires.
func (c *Client) Deploy(ctx context.Context, appName string, bundle []byte) (Deployment, error) {
	var dep Deployment
	path := fmt.Sprintf("/api/v1/apps/%s/deployments", appName)
	if err := c.postBinary(ctx, path, bundle, &dep); err != nil {
		return Deployment{}, fmt.Errorf("start deployment: %w", err)
	}

	c.logger.Info("deployment started", "app", appName, "deployment_id", dep.ID, "status", dep.Status)

	for !terminal(dep.Status) {
		select {
		case <-ctx.Done():
			return dep, fmt.Errorf("deployment %s still %s: %w", dep.ID, dep.Status, ctx.Err())
		case <-time.After(c.pollInterval):
		}

		pollPath := fmt.Sprintf("/api/v1/apps/%s/deployments/%s", appName, dep.ID)
		if err := c.getJSON(ctx, pollPath, &dep); err != nil {
			return dep, fmt.Errorf("poll deployment %s: %w", dep.ID, err)
		}
		c.logger.Debug("deployment status", "deployment_id", dep.ID, "status", dep.Status)
	}

	if dep.Status == "FAILED" {
		return dep, fmt.Errorf("deployment %s failed: %s", dep.ID, dep.Detail)
	}
	return dep, nil
}

func terminal(status string) bool {
	return status == "SUCCEEDED" || status == "FAILED"
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) postBinary(ctx context.Context, path string, body []byte, out any) error {
	return c.do(ctx, http.MethodPost, path, body, "application/octet-stream", out)
}

// do runs the request with retries on transport errors and 5xx responses,
// backing off exponentially between attempts.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * 200 * time.Millisecond
			c.logger.Warn("platform request retrying",
				"method", method, "path", path, "attempt", attempt, "backoff", backoff, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return err
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		lastErr = c.decode(resp, out)
		if lastErr == nil {
			return nil
		}
		if resp.StatusCode < 500 {
			// Client errors do not improve on retry.
			return lastErr
		}
	}

	return fmt.Errorf("request failed after %d retries: %w", c.retries, lastErr)
}

func (c *Client) decode(resp *http.Response, out any) error {
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
