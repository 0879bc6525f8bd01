package services

import (
	"testing"

	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/testhelpers"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func registration() RegisterInput {
	return RegisterInput{
		Email:     "new@example.com",
		Username:  "newcomer",
		FirstName: "New",
		LastName:  "Comer",
		Password:  "s3cret-pass",
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	view, err := env.users.Register(env.ctx, registration())
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
	assert.Equal(t, "newcomer", view.Username)

	var stored models.User
	require.NoError(t, env.db.First(&stored, view.ID).Error)
	assert.NotEqual(t, "s3cret-pass", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret-pass")))

	_, err = env.users.Register(env.ctx, registration())
	requireKind(t, err, types.KindValidation, "users.validation.taken")
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		mutate    func(*RegisterInput)
		errorType string
	}{
		{"missing email", func(in *RegisterInput) { in.Email = "" }, "users.validation.required"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "users.validation.email"},
		{"bad username", func(in *RegisterInput) { in.Username = "with space" }, "users.validation.username"},
		{"reserved username", func(in *RegisterInput) { in.Username = "me" }, "users.validation.username_reserved"},
		{"short password", func(in *RegisterInput) { in.Password = "short" }, "users.validation.password_length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := registration()
			tt.mutate(&in)
			_, err := env.users.Register(env.ctx, in)
			requireKind(t, err, types.KindValidation, tt.errorType)
		})
	}
	assert.Zero(t, count(t, env.db, &models.User{}))
}

func TestListAndGetUsers(t *testing.T) {
	env := newTestEnv(t)
	carol := testhelpers.CreateUser(t, env.db, "carol")
	alice := testhelpers.CreateUser(t, env.db, "alice")
	testhelpers.Subscribe(t, env.db, alice, carol)

	page, err := env.users.List(env.ctx, ViewerOf(alice), PageRequest{}.Normalize(6))
	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "alice", page.Results[0].Username)
	assert.False(t, page.Results[0].IsSubscribed)
	assert.True(t, page.Results[1].IsSubscribed)
	assert.Nil(t, page.Results[1].Avatar)

	anon, err := env.users.Get(env.ctx, Viewer{}, carol.ID)
	require.NoError(t, err)
	assert.False(t, anon.IsSubscribed)

	_, err = env.users.Get(env.ctx, Viewer{}, 404)
	requireKind(t, err, types.KindNotFound, "users.not_found")

	_, err = env.users.Me(env.ctx, Viewer{})
	requireKind(t, err, types.KindUnauthenticated, "auth.required")
}

func TestSetPassword(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")

	err := env.users.SetPassword(env.ctx, ViewerOf(alice), SetPasswordInput{CurrentPassword: "wrong", NewPassword: "another-pass"})
	requireKind(t, err, types.KindValidation, "users.validation.current_password")

	require.NoError(t, env.users.SetPassword(env.ctx, ViewerOf(alice), SetPasswordInput{
		CurrentPassword: "alice-password",
		NewPassword:     "another-pass",
	}))
	_, err = env.auth.Login(env.ctx, LoginInput{Email: alice.Email, Password: "another-pass"})
	require.NoError(t, err)
}

func TestAvatarLifecycle(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")

	err := env.users.DeleteAvatar(env.ctx, ViewerOf(alice))
	requireKind(t, err, types.KindNotFound, "users.avatar_not_found")

	_, err = env.users.SetAvatar(env.ctx, ViewerOf(alice), AvatarInput{Avatar: "data:image/png;base64,@@"})
	requireKind(t, err, types.KindValidation, "users.validation.avatar_invalid")

	avatar, err := env.users.SetAvatar(env.ctx, ViewerOf(alice), AvatarInput{Avatar: testhelpers.PNGDataURI})
	require.NoError(t, err)
	assert.Contains(t, avatar.Avatar, "http://localhost:3000/media/users/")

	me, err := env.users.Me(env.ctx, ViewerOf(alice))
	require.NoError(t, err)
	require.NotNil(t, me.Avatar)
	assert.Equal(t, avatar.Avatar, *me.Avatar)

	require.NoError(t, env.users.DeleteAvatar(env.ctx, ViewerOf(alice)))
	me, err = env.users.Me(env.ctx, ViewerOf(alice))
	require.NoError(t, err)
	assert.Nil(t, me.Avatar)
}

func TestPromote(t *testing.T) {
	env := newTestEnv(t)
	alice := testhelpers.CreateUser(t, env.db, "alice")

	require.NoError(t, env.users.Promote(env.ctx, alice.ID))
	var stored models.User
	require.NoError(t, env.db.First(&stored, alice.ID).Error)
	assert.True(t, stored.IsStaff)
	assert.True(t, ViewerOf(&stored).CanEdit(alice.ID+100))

	requireKind(t, env.users.Promote(env.ctx, 9999), types.KindNotFound, "users.not_found")
}
