// Package auth issues and verifies stateless bearer tokens, hashes
// passwords, and resolves a presented token to a stored user.
//
// # Token format
//
// A token is three base64url (unpadded) segments joined by ".":
//
//	base64url(header) "." base64url(payload) "." base64url(signature)
//
// The header is {"alg":"HS256","typ":"JWT"}. The payload carries the user
// id, login, issued-at and expiry as Unix seconds. The signature is
// HMAC-SHA256 over the first two encoded segments joined by "." under the
// server secret.
//
// Tokens are never stored. A token stays valid until its expiry no matter
// what happens on the server, so a leaked token can only be contained by
// rotating the secret.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTTL is the lifetime of an issued token.
const DefaultTTL = 24 * time.Hour

var (
	// ErrInvalidToken is returned for malformed tokens and signature mismatches.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a correctly signed token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the decoded token payload.
type Claims struct {
	UserID    int64  `json:"userId"`
	Login     string `json:"login"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

type tokenHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// encodedHeader is constant for every token this codec issues.
var encodedHeader = mustEncodeHeader()

func mustEncodeHeader() string {
	raw, err := json.Marshal(tokenHeader{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// TokenCodec signs and verifies tokens with a single secret. It is safe for
// concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption configures a TokenCodec.
type CodecOption func(*TokenCodec)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) CodecOption {
	return func(c *TokenCodec) { c.ttl = ttl }
}

// WithClock sets the time source used for issue and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) { c.now = now }
}

// NewTokenCodec constructs a codec. The secret must not be empty.
func NewTokenCodec(secret []byte, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty token secret")
	}
	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue creates a signed token for the given user.
func (c *TokenCodec) Issue(userID int64, login string) (string, error) {
	now := c.now()
	claims := Claims{
		UserID:    userID,
		Login:     login,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(c.ttl).Unix(),
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("encode claims: %w", err)
	}

	signingInput := encodedHeader + "." + base64.RawURLEncoding.EncodeToString(payload)
	return signingInput + "." + c.sign(signingInput), nil
}

// Verify checks the signature and expiry of token and returns its claims.
// The signature is compared in constant time. The expiry must be strictly
// after the current time.
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrInvalidToken
	}

	expected := c.sign(parts[0] + "." + parts[1])
	if !hmac.Equal([]byte(parts[2]), []byte(expected)) {
		return nil, ErrInvalidToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt <= c.now().Unix() {
		return nil, ErrTokenExpired
	}
	return &claims, nil
}

func (c *TokenCodec) sign(signingInput string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(signingInput))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
