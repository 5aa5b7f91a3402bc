package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueVerify(t *testing.T) {
	m := NewTokenManager("s3cret", "healthmate", time.Hour)

	token, exp, err := m.Issue("alice@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	login, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", login)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("s3cret", "healthmate", time.Minute)
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	token, _, err := m.Issue("alice@example.com")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("s3cret", "healthmate", time.Hour)
	good, _, err := m.Issue("alice@example.com")
	require.NoError(t, err)

	otherSecret, _, err := NewTokenManager("other", "healthmate", time.Hour).Issue("alice@example.com")
	require.NoError(t, err)
	otherIssuer, _, err := NewTokenManager("s3cret", "someone-else", time.Hour).Issue("alice@example.com")
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:  "healthmate",
		Subject: "alice@example.com",
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    "healthmate",
		Subject:   "alice@example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"tampered":     good + "x",
		"wrong secret": otherSecret,
		"wrong issuer": otherIssuer,
		"no expiry":    noExpiry,
		"none alg":     noneAlg,
		"empty":        "",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(raw)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestTokenManager_Disabled(t *testing.T) {
	m := NewTokenManager("", "healthmate", time.Hour)
	assert.False(t, m.Enabled())

	_, _, err := m.Issue("alice@example.com")
	assert.Error(t, err)

	_, err = m.Verify("anything")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
