package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Shivanand-hulikatti/tickethub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers map[int64]*model.User

func (s stubUsers) ByID(_ context.Context, id int64) (*model.User, error) {
	if id < 0 {
		return nil, errors.New("storage down")
	}
	u, ok := s[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return u, nil
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "", BearerToken("bearer abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}

func TestAuthenticator(t *testing.T) {
	codec := newCodec(t)
	users := stubUsers{
		1: {ID: 1, Login: "alice"},
		2: {ID: 2, Login: "root", IsAdmin: true},
	}
	a := NewAuthenticator(codec, users)
	ctx := context.Background()

	aliceToken, err := codec.Issue(1, "alice")
	require.NoError(t, err)
	rootToken, err := codec.Issue(2, "root")
	require.NoError(t, err)
	ghostToken, err := codec.Issue(99, "ghost")
	require.NoError(t, err)
	brokenToken, err := codec.Issue(-1, "broken")
	require.NoError(t, err)

	user, err := a.Authenticate(ctx, "Bearer "+aliceToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)

	_, err = a.Authenticate(ctx, "")
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	_, err = a.Authenticate(ctx, "Bearer nonsense")
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	_, err = a.Authenticate(ctx, "Bearer "+ghostToken)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	_, err = a.Authenticate(ctx, "Bearer "+brokenToken)
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrUnauthenticated)

	_, err = a.RequireAdmin(ctx, "Bearer "+aliceToken)
	assert.ErrorIs(t, err, model.ErrForbidden)

	admin, err := a.RequireAdmin(ctx, "Bearer "+rootToken)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(4)
	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, h.Verify("s3cret", hash))
	assert.False(t, h.Verify("wrong", hash))
	assert.False(t, h.Verify("s3cret", "not-a-hash"))
}

func TestPasswordHasher_TooLong(t *testing.T) {
	h := NewPasswordHasher(4)

	_, err := h.Hash(strings.Repeat("p", MaxPasswordBytes))
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("p", MaxPasswordBytes+1))
	require.Error(t, err)
	assert.True(t, model.IsValidation(err), err.Error())
}

func TestGeneratePassword(t *testing.T) {
	pw, err := GeneratePassword()
	require.NoError(t, err)
	require.Len(t, pw, 10)
	assert.Contains(t, upperChars, pw[0:1])
	assert.Contains(t, lowerChars, pw[2:3])
	assert.Contains(t, digitChars, pw[6:7])
	assert.Contains(t, specialChars, pw[9:10])
}

func TestGenerateCode(t *testing.T) {
	for range 20 {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		assert.NotEqual(t, byte('0'), code[0])
	}
}
