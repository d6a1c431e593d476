// Package client is the browser-side half of the application as a Go
// library: a REST client, a task cache ordered by recency and a sync
// driver that keeps the cache reconciled with the server's
// authoritative state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// Task mirrors the server's task representation. The server's copy is
// authoritative; this one is a derived reflection.
type Task struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"userId"`
	Text        string    `json:"text"`
	Completed   bool      `json:"completed"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// TaskPatch carries the optional fields of a patch request.
type TaskPatch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// APIError is a structured error decoded from a {message} body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// Client talks to the task service. The session cookie issued at
// login is carried by the cookie jar.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// NewWithHTTPClient allows the caller to supply the transport, e.g.
// an httptest client in tests.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out != nil {
		err = json.NewDecoder(resp.Body).Decode(out)
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &user)
	return user, err
}

func (c *Client) Register(ctx context.Context, displayName, email, password string) (User, error) {
	var user User
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"displayName": displayName,
		"email":       email,
		"password":    password,
	}, &user)
	return user, err
}

func (c *Client) DemoLogin(ctx context.Context, userType string) (User, error) {
	var resp struct {
		User User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/demo-login", map[string]string{
		"userType": userType,
	}, &resp)
	return resp.User, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/api/current_user", nil, &user)
	return user, err
}

func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks)
	return tasks, err
}

func (c *Client) CreateTask(ctx context.Context, text string, completed bool) (Task, error) {
	var task Task
	err := c.do(ctx, http.MethodPost, "/tasks", map[string]any{
		"text":      text,
		"completed": completed,
	}, &task)
	return task, err
}

func (c *Client) PatchTask(ctx context.Context, id string, patch TaskPatch) (Task, error) {
	var task Task
	err := c.do(ctx, http.MethodPatch, "/tasks/"+id, patch, &task)
	return task, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil)
}

func (c *Client) ListImages(ctx context.Context) ([]string, error) {
	var urls []string
	err := c.do(ctx, http.MethodGet, "/images", nil, &urls)
	return urls, err
}
