package client

import (
	"errors"
	"net"
	"net/http"
	"testing"

	"github.com/biosecret/go-todo/app"
	"github.com/biosecret/go-todo/config"
	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"go.uber.org/zap"
)

// newTestClient serves the real API over an in-memory listener.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := &config.Config{JWTSecret: "client-secret", DatabaseURI: "memory://", CORSOrigins: "*"}
	broker := events.NewBroker()
	srv := app.New(cfg, database.NewMemoryStore(), broker, broker, zap.NewNop())

	ln := fasthttputil.NewInmemoryListener()
	go func() { _ = srv.Listener(ln) }()
	t.Cleanup(func() {
		_ = srv.Shutdown()
		_ = ln.Close()
	})

	return New("http://todo.test/", &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return ln.Dial() },
	})
}

func TestClientAuth(t *testing.T) {
	c := newTestClient(t)

	res, err := c.Signup("a@x.com", "pw1", "A")
	require.NoError(t, err)
	assert.Equal(t, models.PublicUser{Email: "a@x.com", Name: "A"}, res.User)
	assert.NotEmpty(t, res.Token)

	_, err = c.Signup("a@x.com", "pw1", "A")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Email already registered", apiErr.Message)

	_, err = c.Login("a@x.com", "nope")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid login credentials", apiErr.Message)

	login, err := c.Login("a@x.com", "pw1")
	require.NoError(t, err)
	c.SetToken(login.Token)

	me, err := c.Me()
	require.NoError(t, err)
	assert.Equal(t, "A", me.Name)
}

func TestClientTodos(t *testing.T) {
	c := newTestClient(t)

	res, err := c.Signup("a@x.com", "pw1", "A")
	require.NoError(t, err)
	c.SetToken(res.Token)

	todo, err := c.CreateTodo("Buy milk", "2 litres")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", todo.Title)
	assert.Equal(t, "2 litres", todo.Description)

	done := true
	updated, err := c.UpdateTodo(todo.ID, models.TodoPatch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.Equal(t, "2 litres", updated.Description)

	list, err := c.ListTodos()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, todo.ID, list[0].ID)

	require.NoError(t, c.DeleteTodo(todo.ID))

	err = c.DeleteTodo(todo.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Todo not found", apiErr.Message)

	list, err = c.ListTodos()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClientWithoutToken(t *testing.T) {
	c := newTestClient(t)

	_, err := c.ListTodos()
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "missing token", apiErr.Message)
}

func TestClientNetworkError(t *testing.T) {
	c := New("http://todo.test", &fasthttp.Client{
		Dial: func(string) (net.Conn, error) { return nil, errors.New("connection refused") },
	})

	_, err := c.ListTodos()
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestDecodeAPIError(t *testing.T) {
	assert.Equal(t, &APIError{Status: 400, Message: "Please add a title"}, decodeAPIError(400, []byte(`{"error":"Please add a title"}`)))
	assert.Equal(t, &APIError{Status: 404, Message: "gone"}, decodeAPIError(404, []byte(`{"message":"gone"}`)))
	assert.Equal(t, &APIError{Status: 502, Message: "Bad Gateway"}, decodeAPIError(502, []byte(`<html>`)))
}
