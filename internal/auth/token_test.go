package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTokens(t *testing.T, at time.Time) *TokenService {
	t.Helper()
	s, err := NewTokenService("test-secret", 12*time.Hour, 15*time.Minute)
	require.NoError(t, err)
	s.now = func() time.Time { return at }
	return s
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour, time.Minute)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	issued := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := newTokens(t, issued)
	id := primitive.NewObjectID()

	token, err := s.IssueSession(id)
	require.NoError(t, err)

	got, err := s.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	s.now = func() time.Time { return issued.Add(12*time.Hour + time.Second) }
	_, err = s.VerifySession(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestResetCredentialRoundTrip(t *testing.T) {
	s := newTokens(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	first, err := s.IssueReset("alice@g.bracu.ac.bd")
	require.NoError(t, err)
	second, err := s.IssueReset("alice@g.bracu.ac.bd")
	require.NoError(t, err)

	a, err := s.VerifyReset(first)
	require.NoError(t, err)
	b, err := s.VerifyReset(second)
	require.NoError(t, err)

	assert.Equal(t, "alice@g.bracu.ac.bd", a.Email)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 15*time.Minute, a.ExpiresAt.Sub(a.IssuedAt.Time))
}

func TestTokenPurposeIsEnforced(t *testing.T) {
	s := newTokens(t, time.Now())

	session, err := s.IssueSession(primitive.NewObjectID())
	require.NoError(t, err)
	reset, err := s.IssueReset("alice@g.bracu.ac.bd")
	require.NoError(t, err)

	_, err = s.VerifyReset(session)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.VerifySession(reset)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsForeignSignatures(t *testing.T) {
	s := newTokens(t, time.Now())
	other := newTokens(t, time.Now())
	other.secret = []byte("another-secret")

	foreign, err := other.IssueSession(primitive.NewObjectID())
	require.NoError(t, err)
	_, err = s.VerifySession(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		AccountID: primitive.NewObjectID().Hex(),
		Purpose:   purposeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.VerifySession(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.VerifySession("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWithoutExpiryIsRejected(t *testing.T) {
	s := newTokens(t, time.Now())
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		AccountID: primitive.NewObjectID().Hex(),
		Purpose:   purposeSession,
	})
	raw, err := token.SignedString(s.secret)
	require.NoError(t, err)

	_, err = s.VerifySession(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
