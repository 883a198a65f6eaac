package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/auth"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

type testAPI struct {
	app      *fiber.App
	mem      *store.Memory
	jwt      *auth.JWTService
	business uuid.UUID
	token    string
}

func newTestAPI(t *testing.T, secret string) *testAPI {
	t.Helper()
	api := &testAPI{
		app:      fiber.New(),
		mem:      store.NewMemory(),
		jwt:      auth.NewJWTService(secret, time.Minute),
		business: uuid.New(),
	}
	RegisterRoutes(api.app, api.mem, api.jwt, NewHealthHandler("store-api", nil))
	if secret != "" {
		token, _, err := api.jwt.GenerateToken(api.business, "test")
		require.NoError(t, err)
		api.token = token
	}
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, header map[string]string) (int, store.Envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env store.Envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env))
	} else {
		env.Data = raw
	}
	return resp.StatusCode, env
}

func (a *testAPI) q() string {
	return "?business_id=" + a.business.String()
}

func decode[T any](t *testing.T, env store.Envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, "secret")
	api.token = ""
	status, _ := api.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, status)

	app := fiber.New()
	app.Get("/health", NewHealthHandler("store-api", func(context.Context) error { return errors.New("db down") }).GetHealth)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSettingsLatestRowAndUpsert(t *testing.T) {
	api := newTestAPI(t, "")

	status, _ := api.do(t, http.MethodGet, "/settings"+api.q(), nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env := api.do(t, http.MethodPut, "/settings"+api.q(), models.WidgetSettings{BusinessName: "Acme"}, nil)
	require.Equal(t, http.StatusOK, status)
	first := decode[models.WidgetSettings](t, env)

	status, env = api.do(t, http.MethodPut, "/settings"+api.q(), models.WidgetSettings{BusinessName: "Acme Cakes"}, nil)
	require.Equal(t, http.StatusOK, status)
	second := decode[models.WidgetSettings](t, env)
	assert.Equal(t, first.ID, second.ID)

	status, env = api.do(t, http.MethodGet, "/settings"+api.q(), nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Acme Cakes", decode[models.WidgetSettings](t, env).BusinessName)
}

func TestBusinessQueryRequired(t *testing.T) {
	api := newTestAPI(t, "")
	status, env := api.do(t, http.MethodGet, "/settings", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "business_id is required", env.Error)

	status, _ = api.do(t, http.MethodGet, "/settings?business_id=nope", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAutoReplyCRUD(t *testing.T) {
	api := newTestAPI(t, "")

	status, env := api.do(t, http.MethodPost, "/auto-replies", models.AutoReplyRule{
		BusinessID:   api.business,
		MatchingType: "telepathy",
		Response:     "x",
	}, nil)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", env.Error)

	for _, kw := range []string{"price", "hours"} {
		status, _ = api.do(t, http.MethodPost, "/auto-replies", models.AutoReplyRule{
			BusinessID:   api.business,
			Keywords:     []string{kw},
			MatchingType: models.MatchWord,
			Response:     "about " + kw,
		}, nil)
		require.Equal(t, http.StatusCreated, status)
	}

	status, env = api.do(t, http.MethodGet, "/auto-replies"+api.q(), nil, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)
	rules := decode[[]models.AutoReplyRule](t, env)
	assert.Equal(t, []int{1, 2}, []int{rules[0].Position, rules[1].Position})

	update := rules[0]
	update.Response = "from $10"
	status, env = api.do(t, http.MethodPut, "/auto-replies/"+update.ID.String(), update, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "from $10", decode[models.AutoReplyRule](t, env).Response)

	status, _ = api.do(t, http.MethodDelete, "/auto-replies/"+rules[1].ID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = api.do(t, http.MethodDelete, "/auto-replies/"+rules[1].ID.String(), nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdvancedReplyImportExport(t *testing.T) {
	api := newTestAPI(t, "")
	label := "Book now"

	status, env := api.do(t, http.MethodPost, "/advanced-replies/import"+api.q(), []models.AdvancedReplyRule{
		{Keywords: []string{"book"}, MatchingType: models.MatchWord, ResponseType: models.ResponseURL, Response: "https://acme.test/book", ButtonText: &label},
		{Keywords: []string{"menu"}, MatchingType: models.MatchFuzzy, ResponseType: models.ResponseText, Response: "See our menu"},
	}, nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 2, *env.Count)

	status, env = api.do(t, http.MethodGet, "/advanced-replies/export"+api.q(), nil, nil)
	require.Equal(t, http.StatusOK, status)
	exported := decode[[]models.AdvancedReplyRule](t, env)
	require.Len(t, exported, 2)
	assert.Equal(t, "https://acme.test/book", exported[0].Response)
	assert.Equal(t, api.business, exported[1].BusinessID)

	status, _ = api.do(t, http.MethodPost, "/advanced-replies/import"+api.q(), []models.AdvancedReplyRule{
		{Keywords: []string{"x"}, MatchingType: models.MatchWord, ResponseType: "carousel", Response: "x"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func createSession(t *testing.T, api *testAPI) models.Session {
	t.Helper()
	status, env := api.do(t, http.MethodPost, "/sessions", models.Session{BusinessID: api.business, VisitorID: "v1"}, nil)
	require.Equal(t, http.StatusCreated, status)
	return decode[models.Session](t, env)
}

func TestSessionPatchVersioning(t *testing.T) {
	api := newTestAPI(t, "")
	s := createSession(t, api)
	assert.Equal(t, 1, s.Version)
	assert.Equal(t, models.SessionStatusActive, s.Status)

	patch := models.SessionPatch{Metadata: models.Metadata{"note": "vip"}}
	status, env := api.do(t, http.MethodPatch, "/sessions/"+s.ID.String(), patch, map[string]string{"If-Match": "1"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, decode[models.Session](t, env).Version)

	status, env = api.do(t, http.MethodPatch, "/sessions/"+s.ID.String(), patch, map[string]string{"If-Match": "1"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, store.CodeVersionConflict, env.Code)

	status, _ = api.do(t, http.MethodPatch, "/sessions/"+s.ID.String(), patch, map[string]string{"If-Match": "abc"})
	assert.Equal(t, http.StatusBadRequest, status)

	closed := models.SessionStatusClosed
	status, _ = api.do(t, http.MethodPatch, "/sessions/"+s.ID.String(), models.SessionPatch{Status: &closed}, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = api.do(t, http.MethodPatch, "/sessions/"+s.ID.String(), patch, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, store.CodeSessionClosed, env.Code)

	status, env = api.do(t, http.MethodGet, "/sessions"+api.q()+"&status=active", nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, *env.Count)

	status, _ = api.do(t, http.MethodGet, "/sessions"+api.q()+"&status=archived", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMessagesAppendIsIdempotent(t *testing.T) {
	api := newTestAPI(t, "")
	s := createSession(t, api)

	msg := models.NewMessage(s.ID, models.SenderUser, "hello", false)
	for i := 0; i < 2; i++ {
		status, _ := api.do(t, http.MethodPost, "/messages", msg, nil)
		require.Equal(t, http.StatusCreated, status)
	}

	status, env := api.do(t, http.MethodGet, "/messages?session_id="+s.ID.String(), nil, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, *env.Count)

	orphan := models.NewMessage(uuid.New(), models.SenderUser, "hello", false)
	status, _ = api.do(t, http.MethodPost, "/messages", orphan, nil)
	assert.Equal(t, http.StatusNotFound, status)

	bad := models.NewMessage(s.ID, "robot", "hello", false)
	status, _ = api.do(t, http.MethodPost, "/messages", bad, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAuthScopesRequestsToTokenBusiness(t *testing.T) {
	api := newTestAPI(t, "secret")
	s := createSession(t, api)

	token := api.token
	api.token = ""
	status, _ := api.do(t, http.MethodGet, "/sessions/"+s.ID.String(), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	other, _, err := api.jwt.GenerateToken(uuid.New(), "test")
	require.NoError(t, err)
	api.token = other

	status, _ = api.do(t, http.MethodGet, "/sessions"+api.q(), nil, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = api.do(t, http.MethodGet, "/sessions/"+s.ID.String(), nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = api.do(t, http.MethodGet, "/messages?session_id="+s.ID.String(), nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	api.token = token
	status, _ = api.do(t, http.MethodGet, "/sessions/"+s.ID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRuleOfAnotherBusinessIsHidden(t *testing.T) {
	api := newTestAPI(t, "secret")

	foreign := &models.AutoReplyRule{BusinessID: uuid.New(), Keywords: []string{"x"}, MatchingType: models.MatchWord, Response: "x"}
	require.NoError(t, api.mem.CreateAutoReply(context.Background(), foreign))

	status, _ := api.do(t, http.MethodDelete, "/auto-replies/"+foreign.ID.String(), nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	rules, err := api.mem.ListAutoReplies(context.Background(), foreign.BusinessID)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
	assert.Equal(t, 1, rules[0].Position)
}

type recordingStore struct {
	*store.Memory
	entries map[uuid.UUID][]audit.Entry
}

func (r *recordingStore) SessionHistory(ctx context.Context, sessionID uuid.UUID, limit int) ([]audit.Entry, error) {
	entries := r.entries[sessionID]
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func TestSessionHistoryServedWhenRecorded(t *testing.T) {
	api := newTestAPI(t, "")
	session := createSession(t, api)

	// plain memory store records nothing
	status, _ := api.do(t, http.MethodGet, "/sessions/"+session.ID.String()+"/history", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	rec := &recordingStore{Memory: api.mem, entries: map[uuid.UUID][]audit.Entry{
		session.ID: {
			{SessionID: session.ID, Action: audit.ActionClose, Version: 3},
			{SessionID: session.ID, Action: audit.ActionUpdateMetadata, Version: 2},
		},
	}}
	api.app = fiber.New()
	RegisterRoutes(api.app, rec, api.jwt, NewHealthHandler("store-api", nil))

	status, env := api.do(t, http.MethodGet, "/sessions/"+session.ID.String()+"/history?limit=1", nil, nil)
	require.Equal(t, http.StatusOK, status)
	entries := decode[[]audit.Entry](t, env)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionClose, entries[0].Action)

	status, _ = api.do(t, http.MethodGet, "/sessions/"+uuid.New().String()+"/history", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
