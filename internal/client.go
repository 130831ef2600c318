package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Client is a thin JSON client for the analysis backend. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewClient creates a client for baseURL with the given request timeout
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithToken returns a copy of the client bound to a bearer token
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// Token returns the bearer token the client is bound to
func (c *Client) Token() string {
	return c.token
}

// BaseURL returns the backend address
func (c *Client) BaseURL() string {
	return c.baseURL
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// tokenResponse is the login payload
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// do sends a request and decodes a 2xx JSON body into out (when out is non-nil)
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, authenticated bool, out interface{}) error {
	if authenticated && c.token == "" {
		return ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	LogDebug("%s %s", method, path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(respBody),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ParseError{Source: "api", Key: method + " " + path, Err: err}
	}
	return nil
}

// parseDetail extracts a string "detail"; validation error lists are ignored
func parseDetail(body []byte) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) != nil || len(eb.Detail) == 0 {
		return ""
	}
	var detail string
	if json.Unmarshal(eb.Detail, &detail) != nil {
		return ""
	}
	return detail
}

func (c *Client) doJSON(ctx context.Context, method, path string, authenticated bool, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, authenticated, out)
}

// Signup calls POST /api/auth/signup
func (c *Client) Signup(ctx context.Context, email, password, name string) error {
	req := map[string]string{"email": email, "password": password, "name": name}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/signup", false, req, nil)
}

// Login calls POST /api/auth/login with form credentials and returns the access token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var tok tokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", false, &tok)
	if err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", &ParseError{Source: "api", Key: "POST /api/auth/login", Err: fmt.Errorf("response has no access_token")}
	}
	return tok.AccessToken, nil
}

// Me calls GET /api/auth/me
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", true, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ChangePassword calls POST /api/auth/change-password
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	req := map[string]string{"current_password": current, "new_password": next}
	return c.doJSON(ctx, http.MethodPost, "/api/auth/change-password", true, req, nil)
}

// Notifications calls GET /api/notifications
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var items []Notification
	if err := c.doJSON(ctx, http.MethodGet, "/api/notifications", true, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UnreadNotifications calls GET /api/notifications/unread
func (c *Client) UnreadNotifications(ctx context.Context) ([]Notification, error) {
	var items []Notification
	if err := c.doJSON(ctx, http.MethodGet, "/api/notifications/unread", true, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkNotificationRead calls POST /api/notifications/{id}/read
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/notifications/"+url.PathEscape(id)+"/read", true, nil, nil)
}

// MarkAllNotificationsRead calls POST /api/notifications/read-all
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/notifications/read-all", true, nil, nil)
}

// NotificationSettings calls GET /api/notifications/settings
func (c *Client) NotificationSettings(ctx context.Context) (*NotificationSettings, error) {
	var settings NotificationSettings
	if err := c.doJSON(ctx, http.MethodGet, "/api/notifications/settings", true, nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateNotificationSettings calls PUT /api/notifications/settings
func (c *Client) UpdateNotificationSettings(ctx context.Context, settings *NotificationSettings) (*NotificationSettings, error) {
	var saved NotificationSettings
	if err := c.doJSON(ctx, http.MethodPut, "/api/notifications/settings", true, settings, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// chatRequest keeps session_id as an explicit null on the first message
type chatRequest struct {
	Message   string  `json:"message"`
	SessionID *string `json:"session_id"`
}

// SendChat calls POST /api/chat. An empty sessionID asks the server to open a session.
func (c *Client) SendChat(ctx context.Context, message, sessionID string) (*ChatReply, error) {
	req := chatRequest{Message: message}
	if sessionID != "" {
		req.SessionID = &sessionID
	}
	var reply ChatReply
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", true, req, &reply); err != nil {
		return nil, err
	}
	if reply.Message.Role == "" {
		reply.Message.Role = RoleAssistant
	}
	return &reply, nil
}

// ChatSessions calls GET /api/chat/sessions
func (c *Client) ChatSessions(ctx context.Context) ([]ChatSession, error) {
	var sessions []ChatSession
	if err := c.doJSON(ctx, http.MethodGet, "/api/chat/sessions", true, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ChatHistory calls GET /api/chat/sessions/{id}/messages
func (c *Client) ChatHistory(ctx context.Context, sessionID string) ([]Message, error) {
	var messages []Message
	path := "/api/chat/sessions/" + url.PathEscape(sessionID) + "/messages"
	if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// Documents calls GET /api/analyze
func (c *Client) Documents(ctx context.Context) ([]Document, error) {
	var docs []Document
	if err := c.doJSON(ctx, http.MethodGet, "/api/analyze", true, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// AnalysisResult calls GET /api/analyze/{id}/result
func (c *Client) AnalysisResult(ctx context.Context, documentID string) (*AnalysisResult, error) {
	var result AnalysisResult
	path := "/api/analyze/" + url.PathEscape(documentID) + "/result"
	if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteDocument calls DELETE /api/analyze/{id}
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/analyze/"+url.PathEscape(documentID), true, nil, nil)
}

// UploadDocument posts a PDF as multipart field "file" to POST /api/analyze
func (c *Client) UploadDocument(ctx context.Context, filename string, r io.Reader) (*Document, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	var doc Document
	if err := c.do(ctx, http.MethodPost, "/api/analyze", &buf, mw.FormDataContentType(), true, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SubmitContact calls POST /api/contact
func (c *Client) SubmitContact(ctx context.Context, req *ContactRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/api/contact", true, req, nil)
}

// AdminInquiries calls GET /api/contact/admin, filtered by status when it is set
func (c *Client) AdminInquiries(ctx context.Context, status InquiryStatus) ([]Inquiry, error) {
	path := "/api/contact/admin"
	if status != "" {
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}
	var items []Inquiry
	if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateInquiryStatus calls PATCH /api/contact/admin/{id}
func (c *Client) UpdateInquiryStatus(ctx context.Context, id string, status InquiryStatus) error {
	req := map[string]InquiryStatus{"status": status}
	return c.doJSON(ctx, http.MethodPatch, "/api/contact/admin/"+url.PathEscape(id), true, req, nil)
}

// Ping reports whether the backend answers HTTP at all; any status counts as reachable
func (c *Client) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
