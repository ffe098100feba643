// Package api is the HTTP client for the portal server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (%d)", e.Message, e.StatusCode)
}

// envelope mirrors the server's response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// ServerUser is a user record as the server serializes it
type ServerUser struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Role     string  `json:"role"`
	Name     string  `json:"name"`
	Avatar   *string `json:"avatar"`
}

// ServerTask is a task record as the server serializes it
type ServerTask struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	PolicyNumber *string    `json:"policyNumber"`
	Description  *string    `json:"description"`
	Status       string     `json:"status"`
	DueDate      *time.Time `json:"dueDate"`
	AssignedTo   *string    `json:"assignedTo"`
	CreatedBy    string     `json:"createdBy"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TaskPayload is the server-shaped task creation body. CreatedBy and Amount
// are sent for parity with the historical client even though the server
// overrides the former and discards the latter.
type TaskPayload struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Status       string   `json:"status"`
	DueDate      *string  `json:"dueDate"`
	AssignedTo   *string  `json:"assignedTo,omitempty"`
	CreatedBy    string   `json:"createdBy"`
	PolicyNumber *string  `json:"policyNumber,omitempty"`
	Amount       *float64 `json:"amount,omitempty"`
}

// LoginResult is the login response payload
type LoginResult struct {
	Token string     `json:"token"`
	User  ServerUser `json:"user"`
}

// Client talks to the portal server
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// New creates a client for the given base URL (e.g. http://localhost:5001)
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken sets the bearer token attached to subsequent requests
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token ("" when unauthenticated)
func (c *Client) Token() string {
	return c.token
}

// ClearToken drops the bearer token
func (c *Client) ClearToken() {
	c.token = ""
}

// do performs a request and decodes the envelope's data into out (when
// out is non-nil)
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	_ = json.Unmarshal(raw, &env)

	if resp.StatusCode >= 400 {
		message := env.Error
		if message == "" {
			message = env.Message
		}
		if message == "" {
			message = resp.Status
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Login authenticates and returns the token plus the user record
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTasks fetches the authoritative task list
func (c *Client) ListTasks(ctx context.Context) ([]ServerTask, error) {
	var tasks []ServerTask
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask submits a new task and returns the server's record
func (c *Client) CreateTask(ctx context.Context, payload TaskPayload) (*ServerTask, error) {
	var task ServerTask
	if err := c.do(ctx, http.MethodPost, "/api/tasks", payload, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListUsers fetches the user roster (passwords are never serialized)
func (c *Client) ListUsers(ctx context.Context) ([]ServerUser, error) {
	var users []ServerUser
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
