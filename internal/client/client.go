// Package client talks to the tracker HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"tracker/internal/dto"
	"tracker/internal/model"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("api error (%d): %s %v", e.Status, e.Message, e.Fields)
	}
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// Session is the result of a successful login.
type Session struct {
	Token string   `json:"token"`
	User  dto.User `json:"user"`
}

// Upload is one file sent to AddAttachments.
type Upload struct {
	Name    string
	Content io.Reader
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/login", body, &s); err != nil {
		return Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]dto.Task, error) {
	var tasks []dto.Task
	err := c.doJSON(ctx, http.MethodGet, "/tasks", nil, &tasks)
	return tasks, err
}

func (c *Client) CreateTask(ctx context.Context, input dto.TaskCreate) (dto.Task, error) {
	var t dto.Task
	err := c.doJSON(ctx, http.MethodPost, "/tasks", input, &t)
	return t, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch dto.TaskPatch) (dto.Task, error) {
	var t dto.Task
	err := c.doJSON(ctx, http.MethodPut, "/tasks/"+id, patch, &t)
	return t, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/tasks/"+id, nil, nil)
}

func (c *Client) UpdatePriority(ctx context.Context, id string, p model.Priority) (dto.Task, error) {
	var t dto.Task
	err := c.doJSON(ctx, http.MethodPut, "/tasks/"+id+"/priority", dto.PriorityUpdate{Priority: p}, &t)
	return t, err
}

func (c *Client) AddAttachments(ctx context.Context, id string, files []Upload) (dto.Task, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("attachments", f.Name)
		if err != nil {
			return dto.Task{}, err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return dto.Task{}, fmt.Errorf("reading %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return dto.Task{}, err
	}

	var t dto.Task
	err := c.do(ctx, http.MethodPost, "/tasks/"+id+"/attachments", &buf, w.FormDataContentType(), &t)
	return t, err
}

// ListNotifications returns the raw page body; callers decide how to read it.
func (c *Client) ListNotifications(ctx context.Context, page int) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.doJSON(ctx, http.MethodGet, "/notifications?page="+strconv.Itoa(page), nil, &raw)
	return raw, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPut, "/notifications/"+id+"/read", nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPut, "/notifications/mark-all-read", nil, nil)
}

func (c *Client) ClearNotifications(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/notifications", nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	var r io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		r = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, r, contentType, result)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

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
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		if json.Unmarshal(respBody, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
			apiErr.Fields = payload.Fields
		}
		return apiErr
	}

	if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}
	return nil
}
