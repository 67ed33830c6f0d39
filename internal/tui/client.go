package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"codeberg.org/todoai/server/internal/config"
	"codeberg.org/todoai/server/internal/errors"
	"codeberg.org/todoai/server/todoai/todos"
)

// the assistant may run several tool rounds per update
const requestTimeout = 90 * time.Second

// creates a REST client from the terminal flags
func NewClient(flags config.Flags) *Client {
	endpoint := strings.TrimRight(flags.Endpoint, "/")
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}

	return &Client{
		endpoint: endpoint,
		token:    flags.Token,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// starts a new session with an empty list
func (c *Client) CreateSession(ctx context.Context) (*SessionInfo, error) {
	var out SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/v1/todo/sessions", nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// loads an existing session and its list
func (c *Client) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	var out SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/v1/todo/sessions/"+sessionID, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// sends one natural-language update to the assistant
func (c *Client) Update(ctx context.Context, sessionID, update string) (*todos.ToDoResponse, error) {
	payload := updateRequest{
		Update:    update,
		SessionID: sessionID,
	}

	var out todos.ToDoResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/todo", payload, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// returns a tea.Cmd that resumes sessionID, or creates a session when it is empty
func (c *Client) ConnectCmd(sessionID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var (
			resp *SessionInfo
			err  error
		)

		if sessionID == "" {
			resp, err = c.CreateSession(ctx)
		} else {
			resp, err = c.GetSession(ctx, sessionID)
		}

		if err != nil {
			return ErrorMsg{err: fmt.Errorf("failed to open session: %w", err)}
		}

		return SessionReadyMsg{SessionID: resp.Session.ID, State: resp.State}
	}
}

// returns a tea.Cmd that sends an update
func (c *Client) UpdateCmd(sessionID, update string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		resp, err := c.Update(ctx, sessionID, update)
		if err != nil {
			return ResponseErrorMsg{update: update, err: err}
		}

		return ResponseMsg{update: update, response: *resp}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}

		var errResp errors.ErrorResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			apiErr.Code = errResp.Error
			apiErr.Message = errResp.Message
		}

		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
