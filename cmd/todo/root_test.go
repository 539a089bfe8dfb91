package main

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	server "github.com/biosecret/go-todo/app"
	"github.com/biosecret/go-todo/client"
	"github.com/biosecret/go-todo/client/dashboard"
	"github.com/biosecret/go-todo/config"
	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type cli struct {
	apiURL  string
	credDir string
	config  string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv(client.TokenEnv, "")
	t.Setenv(client.APIURLEnv, "")

	cfg := &config.Config{JWTSecret: "cli-secret", DatabaseURI: "memory://", CORSOrigins: "*"}
	broker := events.NewBroker()
	srv := server.New(cfg, database.NewMemoryStore(), broker, broker, zap.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Listener(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	dir := t.TempDir()
	return &cli{
		apiURL:  "http://" + ln.Addr().String(),
		credDir: filepath.Join(dir, "creds"),
		config:  filepath.Join(dir, "config.toml"),
	}
}

func (c *cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return c.runWithInput(t, nil, args...)
}

func (c *cli) runWithInput(t *testing.T, in io.Reader, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := newApp(&out)
	root := a.rootCmd()
	root.SetErr(io.Discard)
	if in != nil {
		root.SetIn(in)
	}
	root.SetArgs(append([]string{
		"--api-url", c.apiURL,
		"--credentials-dir", c.credDir,
		"--config", c.config,
	}, args...))
	err := root.Execute()
	return out.String(), err
}

var addedID = regexp.MustCompile(`\(([^)]+)\)`)

func TestCLIWorkflow(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(t, "signup", "--email", "a@x.com", "--password", "pw1", "--name", "A")
	require.NoError(t, err)
	assert.Contains(t, out, "signed up as A <a@x.com>")

	out, err = c.run(t, "me")
	require.NoError(t, err)
	assert.Equal(t, "A <a@x.com>\n", out)

	out, err = c.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no todos")

	out, err = c.run(t, "add", "Buy", "milk", "-d", "2 litres")
	require.NoError(t, err)
	m := addedID.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	out, err = c.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "1 total, 0 completed, 1 pending")

	out, err = c.run(t, "toggle", id)
	require.NoError(t, err)
	assert.Contains(t, out, "is now completed")

	out, err = c.run(t, "rm", id)
	require.NoError(t, err)
	assert.Contains(t, out, "removed "+id)

	_, err = c.run(t, "rm", id)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Todo not found", apiErr.Message)

	_, err = c.run(t, "logout")
	require.NoError(t, err)

	_, err = c.run(t, "me")
	assert.ErrorIs(t, err, dashboard.ErrNotLoggedIn)
}

func TestCLILoginFailure(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "signup", "--email", "a@x.com", "--password", "pw1", "--name", "A")
	require.NoError(t, err)
	_, err = c.run(t, "logout")
	require.NoError(t, err)

	_, err = c.run(t, "login", "--email", "a@x.com", "--password", "wrong")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid login credentials", apiErr.Message)

	out, err := c.run(t, "login", "--email", "a@x.com", "--password", "pw1")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as A")
}

func TestCLIToggleUnknownID(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "signup", "--email", "a@x.com", "--password", "pw1", "--name", "A")
	require.NoError(t, err)

	_, err = c.run(t, "toggle", "nope")
	assert.EqualError(t, err, "no todo with id nope")
}

func TestCLIPasswordFromPipedInput(t *testing.T) {
	c := newCLI(t)

	out, err := c.runWithInput(t, strings.NewReader("pw1\n"), "signup", "--email", "a@x.com", "--name", "A")
	require.NoError(t, err)
	assert.Contains(t, out, "signed up as A")
	_, err = c.run(t, "logout")
	require.NoError(t, err)

	// A regular file is not a terminal, so the line reader still serves it.
	path := filepath.Join(t.TempDir(), "password")
	require.NoError(t, os.WriteFile(path, []byte("pw1\n"), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	out, err = c.runWithInput(t, f, "login", "--email", "a@x.com")
	require.NoError(t, err)
	assert.Contains(t, out, "logged in as A")
}
