package services

import (
	"testing"
	"time"

	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/testhelpers"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAuthenticateLogout(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")

	token, err := env.auth.Login(env.ctx, LoginInput{Email: alice.Email, Password: "alice-password"})
	require.NoError(t, err)
	require.NotEmpty(t, token.AuthToken)
	assert.Equal(t, int64(1), count(t, env.db, &models.AuthToken{}))

	user, err := env.auth.Authenticate(env.ctx, token.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	require.NoError(t, env.auth.Logout(env.ctx, token.AuthToken))
	_, err = env.auth.Authenticate(env.ctx, token.AuthToken)
	requireKind(t, err, types.KindUnauthenticated, "auth.invalid_token")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")

	_, err := env.auth.Login(env.ctx, LoginInput{Email: alice.Email, Password: "nope"})
	requireKind(t, err, types.KindValidation, "auth.invalid_credentials")

	_, err = env.auth.Login(env.ctx, LoginInput{Email: "ghost@example.com", Password: "nope"})
	requireKind(t, err, types.KindValidation, "auth.invalid_credentials")

	_, err = env.auth.Login(env.ctx, LoginInput{})
	requireKind(t, err, types.KindValidation, "auth.validation.required")
}

func TestAuthenticateRejectsForeignAndExpiredTokens(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")

	other := NewAuthService(env.db, "other-secret", time.Hour)
	token, err := other.Login(env.ctx, LoginInput{Email: alice.Email, Password: "alice-password"})
	require.NoError(t, err)
	_, err = env.auth.Authenticate(env.ctx, token.AuthToken)
	requireKind(t, err, types.KindUnauthenticated, "auth.invalid_token")

	_, err = env.auth.Authenticate(env.ctx, "garbage")
	requireKind(t, err, types.KindUnauthenticated, "auth.invalid_token")

	expiring := NewAuthService(env.db, "test-secret", time.Hour)
	token, err = expiring.Login(env.ctx, LoginInput{Email: alice.Email, Password: "alice-password"})
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&models.AuthToken{}).Where("1 = 1").Update("expires_at", time.Now().Add(-time.Minute)).Error)
	_, err = env.auth.Authenticate(env.ctx, token.AuthToken)
	requireKind(t, err, types.KindUnauthenticated, "auth.token_expired")
}
