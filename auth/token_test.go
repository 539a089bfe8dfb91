package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewTokenService([]byte("secret"), 0)
	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }

	token, expiresAt, err := svc.Issue("u1")
	require.NoError(t, err)
	assert.WithinDuration(t, issuedAt.Add(24*time.Hour), expiresAt, time.Second)

	userID, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}

func TestVerifyRejectsExpired(t *testing.T) {
	svc := NewTokenService([]byte("secret"), 0)
	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }

	token, _, err := svc.Issue("u1")
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(23 * time.Hour) }
	_, err = svc.Verify(token)
	assert.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(24*time.Hour + time.Second) }
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenService([]byte("other"), 0).Issue("u1")
	require.NoError(t, err)

	_, err = NewTokenService([]byte("secret"), 0).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	svc := NewTokenService([]byte("secret"), 0)
	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenService([]byte("secret"), 0).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRequiresExpiry(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenService([]byte("secret"), 0).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
