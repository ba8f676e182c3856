package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchparty/server/internal/repository/gormdb"
)

func newTestService(t *testing.T) *service {
	t.Helper()

	db, err := gormdb.Open(":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gormdb.AutoMigrate(db))

	logger := slog.Default()

	return NewService(gormdb.NewRepo(db, logger), &Config{
		Secret:   "test-secret",
		TokenTTL: time.Hour,
	}, logger)
}

func TestSignUpAndLogIn(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.SignUp(ctx, &SignUpParams{
		Email:    "Alice@Example.com",
		Name:     "alice",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", signedUp.User.Email, "email is normalized")
	assert.NotEmpty(t, signedUp.Token)

	// the issued token resolves back to the user
	userId, err := svc.ParseToken(signedUp.Token)
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.Id, userId)

	_, err = svc.SignUp(ctx, &SignUpParams{
		Email:    "alice@example.com",
		Name:     "alice again",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	loggedIn, err := svc.LogIn(ctx, &LogInParams{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.Id, loggedIn.User.Id)

	_, err = svc.LogIn(ctx, &LogInParams{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// unknown accounts fail with the same error as a wrong password
	_, err = svc.LogIn(ctx, &LogInParams{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := newTestService(t)
	other.secret = []byte("different-secret")
	resp, err := other.SignUp(context.Background(), &SignUpParams{
		Email:    "bob@example.com",
		Name:     "bob",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.ParseToken(resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken, "tokens signed with another secret are rejected")
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.SignUp(ctx, &SignUpParams{
		Email:    "alice@example.com",
		Name:     "alice",
		Password: "password123",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, &ChangePasswordParams{
		UserId:          signedUp.User.Id,
		CurrentPassword: "wrong",
		NewPassword:     "newpassword1",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, &ChangePasswordParams{
		UserId:          signedUp.User.Id,
		CurrentPassword: "password123",
		NewPassword:     "newpassword1",
	})
	require.NoError(t, err)

	_, err = svc.LogIn(ctx, &LogInParams{Email: "alice@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.LogIn(ctx, &LogInParams{Email: "alice@example.com", Password: "newpassword1"})
	require.NoError(t, err)
}

func TestGetProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.SignUp(ctx, &SignUpParams{
		Email:    "alice@example.com",
		Name:     "alice",
		Password: "password123",
	})
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, signedUp.User.Id)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Name)
	assert.Empty(t, profile.Providers)

	_, err = svc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
