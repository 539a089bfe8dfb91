package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/biosecret/go-todo/config"
	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		Port:        "0",
		DatabaseURI: "memory://",
		JWTSecret:   "integration-secret",
		LogLevel:    "info",
		CORSOrigins: "*",
	}
	broker := events.NewBroker()
	return New(cfg, database.NewMemoryStore(), broker, events.Multi{broker}, zap.NewNop())
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

type authBody struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

func TestTodoLifecycle(t *testing.T) {
	app := newTestApp(t)

	var signup authBody
	status := call(t, app, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "a@x.com", "password": "pw1", "name": "A",
	}, &signup)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, models.PublicUser{Email: "a@x.com", Name: "A"}, signup.User)

	var login authBody
	status = call(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "pw1",
	}, &login)
	require.Equal(t, http.StatusOK, status)
	token := login.Token
	require.NotEmpty(t, token)

	var created models.Todo
	status = call(t, app, http.MethodPost, "/api/todos", token, map[string]string{"title": "Buy milk"}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Buy milk", created.Title)
	assert.False(t, created.Completed)

	var updated models.Todo
	status = call(t, app, http.MethodPut, "/api/todos/"+created.ID, token, map[string]bool{"completed": true}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Title)

	var removed map[string]string
	status = call(t, app, http.MethodDelete, "/api/todos/"+created.ID, token, nil, &removed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Todo removed", removed["message"])

	var list []models.Todo
	status = call(t, app, http.MethodGet, "/api/todos", token, nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/todos", "/api/todos/events", "/api/auth/me"} {
		var body map[string]string
		status := call(t, app, http.MethodGet, path, "", nil, &body)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.Equal(t, "missing token", body["error"], path)
	}
}

func TestUnknownRouteUsesErrorShape(t *testing.T) {
	app := newTestApp(t)

	var body map[string]string
	status := call(t, app, http.MethodGet, "/api/nope", "", nil, &body)
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, body["error"])
}

func TestHealthAndDocs(t *testing.T) {
	app := newTestApp(t)

	var health map[string]string
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/health", "", nil, &health))
	assert.Equal(t, "ok", health["status"])

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil), -1)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/todos", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
}
