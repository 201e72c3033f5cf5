package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCodec(t *testing.T, opts ...CodecOption) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec([]byte("test-secret"), opts...)
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodec_EmptySecret(t *testing.T) {
	_, err := NewTokenCodec(nil)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	codec := newCodec(t)

	tests := []struct {
		name   string
		userID int64
		login  string
	}{
		{"plain", 1, "alice"},
		{"large id", 9_000_000_000, "bob"},
		{"unicode login", 42, "пользователь"},
		{"empty login", 7, ""},
		{"punctuation", 3, `we"ird.login`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := codec.Issue(tt.userID, tt.login)
			require.NoError(t, err)
			assert.Len(t, strings.Split(token, "."), 3)

			claims, err := codec.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.login, claims.Login)
			assert.Equal(t, claims.IssuedAt+int64(DefaultTTL/time.Second), claims.ExpiresAt)
		})
	}
}

func TestTokenHeaderAndSegments(t *testing.T) {
	token, err := newCodec(t).Issue(1, "alice")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	for _, p := range parts {
		assert.NotContains(t, p, "=")
		assert.NotContains(t, p, "+")
		assert.NotContains(t, p, "/")
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"alg":"HS256","typ":"JWT"}`, string(raw))
}

func TestTokenExpiry(t *testing.T) {
	past := time.Now().Add(-25 * time.Hour)
	issuer := newCodec(t, WithClock(func() time.Time { return past }))

	token, err := issuer.Issue(1, "alice")
	require.NoError(t, err)

	_, err = newCodec(t).Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenExpiryBoundary(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	issuer := newCodec(t, WithClock(func() time.Time { return issued }))
	token, err := issuer.Issue(1, "alice")
	require.NoError(t, err)

	// exactly at exp the token is no longer valid
	atExpiry := newCodec(t, WithClock(func() time.Time { return issued.Add(DefaultTTL) }))
	_, err = atExpiry.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	justBefore := newCodec(t, WithClock(func() time.Time { return issued.Add(DefaultTTL - time.Second) }))
	_, err = justBefore.Verify(token)
	assert.NoError(t, err)
}

func TestTokenTamperResistance(t *testing.T) {
	codec := newCodec(t)
	token, err := codec.Issue(12, "alice")
	require.NoError(t, err)

	for i := range len(token) {
		if token[i] == '.' {
			continue
		}
		flipped := []byte(token)
		if flipped[i] == 'A' {
			flipped[i] = 'B'
		} else {
			flipped[i] = 'A'
		}
		_, err := codec.Verify(string(flipped))
		assert.Error(t, err, "flipping byte %d must invalidate the token", i)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := newCodec(t).Issue(1, "alice")
	require.NoError(t, err)

	other, err := NewTokenCodec([]byte("other-secret"))
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMalformed(t *testing.T) {
	codec := newCodec(t)
	for _, token := range []string{"", "abc", "a.b", "a.b.c.d", "..", "a.b.c"} {
		_, err := codec.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestTokenForgedPayload(t *testing.T) {
	codec := newCodec(t)
	token, err := codec.Issue(1, "alice")
	require.NoError(t, err)
	parts := strings.Split(token, ".")

	forged, err := json.Marshal(Claims{UserID: 1, Login: "admin", ExpiresAt: time.Now().Add(time.Hour).Unix()})
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString(forged)

	_, err = codec.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}
