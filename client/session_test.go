package client

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("whatever"))
	require.NoError(t, err)
	return s
}

func TestSessionStoreRoundTrip(t *testing.T) {
	t.Setenv(TokenEnv, "")
	dir := filepath.Join(t.TempDir(), "gotodo")
	store := NewSessionStore(dir)

	sess, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, exp)
	_, err = store.Save("Bearer " + token)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, credFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	sess, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, token, sess.Token)
	assert.Equal(t, "file", sess.Source)
	require.NotNil(t, sess.ExpiresAt)
	assert.True(t, exp.Equal(*sess.ExpiresAt))
	assert.False(t, sess.Expired(time.Now()))
	assert.True(t, sess.Expired(exp.Add(time.Second)))

	require.NoError(t, store.Clear())
	sess, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, sess)

	require.NoError(t, store.Clear())
}

func TestSessionStoreEnvOverride(t *testing.T) {
	store := NewSessionStore(t.TempDir())
	_, err := store.Save("from-file")
	require.NoError(t, err)

	t.Setenv(TokenEnv, "bearer from-env")
	sess, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", sess.Token)
	assert.Equal(t, "env", sess.Source)
	assert.Nil(t, sess.ExpiresAt)
}

func TestSessionStoreRejectsEmptyToken(t *testing.T) {
	_, err := NewSessionStore(t.TempDir()).Save("  ")
	assert.Error(t, err)
}

func TestLoadSettings(t *testing.T) {
	t.Setenv(APIURLEnv, "")

	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, s.APIURL)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("api_url = \"https://todo.example.com/\"\n"), 0o600))
	s, err = LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "https://todo.example.com", s.APIURL)

	t.Setenv(APIURLEnv, "http://127.0.0.1:8080")
	s, err = LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", s.APIURL)
}

func TestLoadSettingsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("api_url = "), 0o600))
	_, err := LoadSettings(path)
	assert.Error(t, err)
}
