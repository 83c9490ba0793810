// Package client is a Go client for the flowdeck API. It mirrors the shape of
// the original browser app: a session store holding the authenticated user and
// token (persisted across restarts), and a workflow store caching the fetched
// list plus a currently-viewed record.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// APIError is a non-2xx response decoded into the server's error shape.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to a flowdeck server. All methods are safe for use from a
// single goroutine; the stores guard their own state.
type Client struct {
	baseURL    string
	httpClient *http.Client

	Session   *SessionStore
	Workflows *WorkflowStore
}

// New builds a Client against baseURL (e.g. "http://localhost:5001/api").
// sessionPath is the file the session persists to; pass "" for an in-memory
// session.
func New(baseURL, sessionPath string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		Session:    NewSessionStore(sessionPath),
		Workflows:  NewWorkflowStore(),
	}
}

type authResponse struct {
	User  *User `json:"user"`
	Token string      `json:"token"`
}

// Register creates an account and starts a session.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/users/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, false, &resp)
	if err != nil {
		return nil, err
	}
	c.Session.Begin(resp.User, resp.Token)
	return resp.User, nil
}

// Login authenticates and starts a session.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, false, &resp)
	if err != nil {
		return nil, err
	}
	c.Session.Begin(resp.User, resp.Token)
	return resp.User, nil
}

// Logout drops the session locally. Tokens are stateless server-side, so there
// is nothing to revoke.
func (c *Client) Logout() {
	c.Session.Clear()
	c.Workflows.Reset()
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, true, &user); err != nil {
		return nil, err
	}
	c.Session.SetUser(&user)
	return &user, nil
}

// ProfileUpdate carries the updatable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// UpdateProfile patches the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPatch, "/users/profile", update, true, &user); err != nil {
		return nil, err
	}
	c.Session.SetUser(&user)
	return &user, nil
}

// WorkflowPayload is the body for creating or replacing a workflow.
type WorkflowPayload struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Status      string                 `json:"status,omitempty"`
	Steps       []Step           `json:"steps,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// CreateWorkflow creates a workflow and appends it to the cached list.
func (c *Client) CreateWorkflow(ctx context.Context, payload WorkflowPayload) (*Workflow, error) {
	c.Workflows.requested()
	var workflow Workflow
	if err := c.do(ctx, http.MethodPost, "/workflows", payload, true, &workflow); err != nil {
		c.Workflows.failed(err)
		return nil, err
	}
	c.Workflows.createSucceeded(workflow)
	return &workflow, nil
}

// ListOptions narrows a workflow listing.
type ListOptions struct {
	Page   int
	Limit  int
	Search string
	Status string
}

// Pagination mirrors the server's pagination block.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

// WorkflowPage is one page of workflows.
type WorkflowPage struct {
	Data       []Workflow `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// List fetches a page of workflows and replaces the cached list with it.
func (c *Client) List(ctx context.Context, opts ListOptions) (*WorkflowPage, error) {
	q := url.Values{}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	path := "/workflows"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	c.Workflows.requested()
	var page WorkflowPage
	if err := c.do(ctx, http.MethodGet, path, nil, true, &page); err != nil {
		c.Workflows.failed(err)
		return nil, err
	}
	c.Workflows.listSucceeded(page.Data)
	return &page, nil
}

// Get fetches one workflow and makes it the current one.
func (c *Client) Get(ctx context.Context, id string) (*Workflow, error) {
	c.Workflows.requested()
	var workflow Workflow
	if err := c.do(ctx, http.MethodGet, "/workflows/"+id, nil, true, &workflow); err != nil {
		c.Workflows.failed(err)
		return nil, err
	}
	c.Workflows.getSucceeded(workflow)
	return &workflow, nil
}

// Replace swaps the whole workflow record.
func (c *Client) Replace(ctx context.Context, id string, payload WorkflowPayload) (*Workflow, error) {
	c.Workflows.requested()
	var workflow Workflow
	if err := c.do(ctx, http.MethodPut, "/workflows/"+id, payload, true, &workflow); err != nil {
		c.Workflows.failed(err)
		return nil, err
	}
	c.Workflows.replaceSucceeded(workflow)
	return &workflow, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, authed bool, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := c.Session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var shape struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(data, &shape) == nil && shape.Error != "" {
			apiErr.Message = shape.Error
			apiErr.Code = shape.Code
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
