package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

// Error codes carried in 409 responses
const (
	CodeVersionConflict = "version_conflict"
	CodeSessionClosed   = "session_closed"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Envelope is the JSON shape of every store API response
type Envelope struct {
	Status string          `json:"status,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Count  *int            `json:"count,omitempty"`
	Error  string          `json:"error,omitempty"`
	Code   string          `json:"code,omitempty"`
}

// HTTPClient is a Store backed by the remote store API. A client is scoped to
// one business: every request carries a bearer token minted for it.
type HTTPClient struct {
	baseURL    string
	businessID uuid.UUID
	doer       Doer
	tokens     *auth.JWTService

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// HTTPOption configures an HTTPClient
type HTTPOption func(*HTTPClient)

// WithDoer replaces the default *http.Client
func WithDoer(d Doer) HTTPOption {
	return func(c *HTTPClient) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithTokens enables bearer authentication
func WithTokens(tokens *auth.JWTService) HTTPOption {
	return func(c *HTTPClient) {
		c.tokens = tokens
	}
}

// NewHTTPClient creates a store client for one business
func NewHTTPClient(baseURL string, businessID uuid.UUID, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		businessID: businessID,
		doer:       &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) bearer() (string, error) {
	if !c.tokens.Enabled() {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Refresh a little before expiry
	if c.token != "" && time.Until(c.expiresAt) > 30*time.Second {
		return c.token, nil
	}
	token, expiresAt, err := c.tokens.GenerateToken(c.businessID, "chat-runtime")
	if err != nil {
		return "", err
	}
	c.token, c.expiresAt = token, expiresAt
	return token, nil
}

// request performs one call and decodes the envelope's data into out (if non-nil)
func (c *HTTPClient) request(ctx context.Context, method, path string, query url.Values, body interface{}, header http.Header, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	token, err := c.bearer()
	if err != nil {
		return fmt.Errorf("failed to mint store token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}

	// error bodies are not always JSON (fiber's default 404 is plain text)
	var env Envelope
	var decodeErr error
	if len(raw) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		switch env.Code {
		case CodeSessionClosed:
			return ErrSessionClosed
		default:
			return ErrVersionConflict
		}
	case resp.StatusCode >= 300:
		return fmt.Errorf("%s %s: store returned %d: %s", method, path, resp.StatusCode, env.Error)
	case decodeErr != nil:
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, decodeErr)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: failed to decode data: %w", method, path, err)
		}
	}
	return nil
}

func businessQuery(id uuid.UUID) url.Values {
	return url.Values{"business_id": {id.String()}}
}

// ---- settings ----

func (c *HTTPClient) LatestSettings(ctx context.Context, businessID uuid.UUID) (*models.WidgetSettings, error) {
	var s models.WidgetSettings
	if err := c.request(ctx, http.MethodGet, "/settings", businessQuery(businessID), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) SaveSettings(ctx context.Context, settings *models.WidgetSettings) error {
	return c.request(ctx, http.MethodPut, "/settings", businessQuery(settings.BusinessID), settings, nil, settings)
}

// ---- rules ----

func (c *HTTPClient) ListAutoReplies(ctx context.Context, businessID uuid.UUID) ([]models.AutoReplyRule, error) {
	rules := make([]models.AutoReplyRule, 0)
	if err := c.request(ctx, http.MethodGet, "/auto-replies", businessQuery(businessID), nil, nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (c *HTTPClient) CreateAutoReply(ctx context.Context, rule *models.AutoReplyRule) error {
	return c.request(ctx, http.MethodPost, "/auto-replies", nil, rule, nil, rule)
}

func (c *HTTPClient) UpdateAutoReply(ctx context.Context, rule *models.AutoReplyRule) error {
	return c.request(ctx, http.MethodPut, "/auto-replies/"+rule.ID.String(), nil, rule, nil, rule)
}

func (c *HTTPClient) DeleteAutoReply(ctx context.Context, id uuid.UUID) error {
	return c.request(ctx, http.MethodDelete, "/auto-replies/"+id.String(), nil, nil, nil, nil)
}

func (c *HTTPClient) ImportAutoReplies(ctx context.Context, businessID uuid.UUID, rules []models.AutoReplyRule) ([]models.AutoReplyRule, error) {
	created := make([]models.AutoReplyRule, 0, len(rules))
	if err := c.request(ctx, http.MethodPost, "/auto-replies/import", businessQuery(businessID), rules, nil, &created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *HTTPClient) ListAdvancedReplies(ctx context.Context, businessID uuid.UUID) ([]models.AdvancedReplyRule, error) {
	rules := make([]models.AdvancedReplyRule, 0)
	if err := c.request(ctx, http.MethodGet, "/advanced-replies", businessQuery(businessID), nil, nil, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (c *HTTPClient) CreateAdvancedReply(ctx context.Context, rule *models.AdvancedReplyRule) error {
	return c.request(ctx, http.MethodPost, "/advanced-replies", nil, rule, nil, rule)
}

func (c *HTTPClient) UpdateAdvancedReply(ctx context.Context, rule *models.AdvancedReplyRule) error {
	return c.request(ctx, http.MethodPut, "/advanced-replies/"+rule.ID.String(), nil, rule, nil, rule)
}

func (c *HTTPClient) DeleteAdvancedReply(ctx context.Context, id uuid.UUID) error {
	return c.request(ctx, http.MethodDelete, "/advanced-replies/"+id.String(), nil, nil, nil, nil)
}

func (c *HTTPClient) ImportAdvancedReplies(ctx context.Context, businessID uuid.UUID, rules []models.AdvancedReplyRule) ([]models.AdvancedReplyRule, error) {
	created := make([]models.AdvancedReplyRule, 0, len(rules))
	if err := c.request(ctx, http.MethodPost, "/advanced-replies/import", businessQuery(businessID), rules, nil, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// ---- sessions ----

func (c *HTTPClient) ListSessions(ctx context.Context, businessID uuid.UUID, status models.SessionStatus) ([]models.Session, error) {
	query := businessQuery(businessID)
	if status != "" {
		query.Set("status", string(status))
	}
	sessions := make([]models.Session, 0)
	if err := c.request(ctx, http.MethodGet, "/sessions", query, nil, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var s models.Session
	if err := c.request(ctx, http.MethodGet, "/sessions/"+id.String(), nil, nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) CreateSession(ctx context.Context, session *models.Session) error {
	return c.request(ctx, http.MethodPost, "/sessions", nil, session, nil, session)
}

func (c *HTTPClient) PatchSession(ctx context.Context, id uuid.UUID, patch models.SessionPatch, ifVersion int) (*models.Session, error) {
	var header http.Header
	if ifVersion > 0 {
		header = http.Header{"If-Match": {strconv.Itoa(ifVersion)}}
	}
	var s models.Session
	if err := c.request(ctx, http.MethodPatch, "/sessions/"+id.String(), nil, patch, header, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ---- messages ----

func (c *HTTPClient) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	query := url.Values{"session_id": {sessionID.String()}}
	if err := c.request(ctx, http.MethodGet, "/messages", query, nil, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *HTTPClient) AppendMessage(ctx context.Context, message *models.Message) error {
	return c.request(ctx, http.MethodPost, "/messages", nil, message, nil, message)
}

var _ Store = (*HTTPClient)(nil)
