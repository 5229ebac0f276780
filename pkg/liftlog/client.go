// Package liftlog is the Go client for the LiftLog API. It wraps the HTTP
// surface and carries the local optimistic day view used by frontends.
package liftlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// APIError is a non-2xx response from the service, carrying the RFC 7807
// detail when the server sent one.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("liftlog: %d %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("liftlog: unexpected status %d", e.Status)
}

// Client talks to a LiftLog server.
type Client struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken installs the bearer session token for subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current session token, empty when signed out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do issues a JSON request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var problem struct {
			Detail string `json:"detail"`
		}
		if json.NewDecoder(resp.Body).Decode(&problem) == nil {
			apiErr.Detail = problem.Detail
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// RequestLink asks the server to mail a sign-in link.
func (c *Client) RequestLink(ctx context.Context, email, redirectTo string) error {
	body := map[string]string{"email": email}
	if redirectTo != "" {
		body["redirect_to"] = redirectTo
	}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/link", body, nil)
}

// Verify exchanges a mailed login token for a session. The session token is
// installed on the client.
func (c *Client) Verify(ctx context.Context, token string) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/verify", map[string]string{"token": token}, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

// Session returns the user behind the current session token.
func (c *Client) Session(ctx context.Context) (*User, error) {
	var session Session
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/session", nil, &session); err != nil {
		return nil, err
	}
	return &session.User, nil
}

// SignOut invalidates the session and clears the local token.
func (c *Client) SignOut(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// Library fetches the exercise catalog grouped by category.
func (c *Client) Library(ctx context.Context) (*Library, error) {
	var lib Library
	if err := c.do(ctx, http.MethodGet, "/api/v1/library", nil, &lib); err != nil {
		return nil, err
	}
	return &lib, nil
}

// Routines lists the user's routines ordered by name.
func (c *Client) Routines(ctx context.Context) ([]Routine, error) {
	var routines []Routine
	if err := c.do(ctx, http.MethodGet, "/api/v1/routines", nil, &routines); err != nil {
		return nil, err
	}
	return routines, nil
}

// CreateRoutine creates a routine template.
func (c *Client) CreateRoutine(ctx context.Context, params CreateRoutineParams) (*Routine, error) {
	var routine Routine
	if err := c.do(ctx, http.MethodPost, "/api/v1/routines", params, &routine); err != nil {
		return nil, err
	}
	return &routine, nil
}

// UpdateRoutine replaces a routine's name and complete item list.
func (c *Client) UpdateRoutine(ctx context.Context, routineID string, params CreateRoutineParams) (*Routine, error) {
	var routine Routine
	if err := c.do(ctx, http.MethodPut, "/api/v1/routines/"+url.PathEscape(routineID), params, &routine); err != nil {
		return nil, err
	}
	return &routine, nil
}

// DeleteRoutine removes a routine and its items.
func (c *Client) DeleteRoutine(ctx context.Context, routineID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/routines/"+url.PathEscape(routineID), nil, nil)
}

// DuplicateRoutine deep-copies a routine under a suffixed name.
func (c *Client) DuplicateRoutine(ctx context.Context, routineID string) (*Routine, error) {
	var routine Routine
	if err := c.do(ctx, http.MethodPost, "/api/v1/routines/"+url.PathEscape(routineID)+"/duplicate", nil, &routine); err != nil {
		return nil, err
	}
	return &routine, nil
}

// ApplyRoutine expands a routine into a fresh workout task on the target
// date and returns the refreshed day.
func (c *Client) ApplyRoutine(ctx context.Context, routineID, date string) (*Day, error) {
	var day Day
	if err := c.do(ctx, http.MethodPost, "/api/v1/routines/"+url.PathEscape(routineID)+"/apply", map[string]string{"date": date}, &day); err != nil {
		return nil, err
	}
	return &day, nil
}

// Day fetches the task list for one YYYY-MM-DD date.
func (c *Client) Day(ctx context.Context, date string) (*Day, error) {
	var day Day
	if err := c.do(ctx, http.MethodGet, "/api/v1/tasks?date="+url.QueryEscape(date), nil, &day); err != nil {
		return nil, err
	}
	return &day, nil
}

// CreateTask schedules an ad-hoc task.
func (c *Client) CreateTask(ctx context.Context, params CreateTaskParams) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPost, "/api/v1/tasks", params, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task and its items.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/tasks/"+url.PathEscape(taskID), nil, nil)
}

// DuplicateTask copies a task onto the target date, every item reset to
// incomplete, and returns the refreshed target day.
func (c *Client) DuplicateTask(ctx context.Context, taskID, date string) (*Day, error) {
	var day Day
	if err := c.do(ctx, http.MethodPost, "/api/v1/tasks/"+url.PathEscape(taskID)+"/duplicate", map[string]string{"date": date}, &day); err != nil {
		return nil, err
	}
	return &day, nil
}

// SetTaskCompletion sets the task's completion flag and returns the task as
// the server now sees it.
func (c *Client) SetTaskCompletion(ctx context.Context, taskID string, completed bool) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPut, "/api/v1/tasks/"+url.PathEscape(taskID)+"/completion", map[string]bool{"completed": completed}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// RecordItemProgress marks a task item complete with the performed reps and
// weight.
func (c *Client) RecordItemProgress(ctx context.Context, itemID string, reps int, weight float64) error {
	body := map[string]any{"actual_reps": reps, "actual_weight": weight}
	return c.do(ctx, http.MethodPut, "/api/v1/task-items/"+url.PathEscape(itemID)+"/progress", body, nil)
}
