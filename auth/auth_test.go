package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestVerifier() *Verifier {
	return NewVerifier("test-secret").WithClock(func() time.Time { return fixedNow })
}

func TestVerifyValidToken(t *testing.T) {
	v := newTestVerifier()
	token, err := v.Sign("user-1", fixedNow.Add(time.Hour))
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)

	id, err := v.ActorID(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestVerifyRejections(t *testing.T) {
	v := newTestVerifier()
	expired, err := v.Sign("user-1", fixedNow.Add(-time.Minute))
	require.NoError(t, err)
	expiresNow, err := v.Sign("user-1", fixedNow)
	require.NoError(t, err)
	otherSecret, err := NewVerifier("other").WithClock(v.now).Sign("user-1", fixedNow.Add(time.Hour))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-1"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", ErrMissingToken},
		{"blank", "   ", ErrMissingToken},
		{"malformed", "not.a.jwt", ErrInvalidToken},
		{"wrong secret", otherSecret, ErrInvalidToken},
		{"alg none", none, ErrInvalidToken},
		{"expired", expired, ErrExpiredToken},
		{"expires now", expiresNow, ErrExpiredToken},
		{"no expiry", noExpiry, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestActorIDRequiresUserID(t *testing.T) {
	v := newTestVerifier()
	token, err := v.Sign("", fixedNow.Add(time.Hour))
	require.NoError(t, err)

	_, err = v.ActorID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc"))
	assert.Equal(t, "", BearerToken("abc"))
	assert.Equal(t, "", BearerToken("Bearer "))
	assert.Equal(t, "", BearerToken(""))
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), &Claims{UserID: "u"})
	claims, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u", claims.UserID)
}
