package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/auth"
	domainerrors "github.com/ecomindsapp/ecominds-server/internal/errors"
	"github.com/ecomindsapp/ecominds-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthService(t *testing.T) (*testEnv, *AuthService) {
	t.Helper()

	env := setupTestEnv(t)

	keyHex, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(keyHex, time.Hour)
	require.NoError(t, err)

	svc := NewAuthService(env.store, tokens, validation.New(), env.progression,
		slog.New(slog.DiscardHandler))
	return env, svc
}

func TestRegisterAndLogin(t *testing.T) {
	env, svc := setupAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{
		Email:       "maya@example.com",
		Password:    "correct horse battery",
		DisplayName: "Maya",
		Grade:       "8",
		College:     "Green Valley",
	})
	require.NoError(t, err)
	require.NotEmpty(t, registered.AccessToken)
	assert.Empty(t, registered.User.PasswordHash)

	claims, err := svc.Verify(registered.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, "maya@example.com", claims.Email)

	loggedIn, err := svc.Login(ctx, LoginRequest{
		Email:    "maya@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
	assert.Empty(t, loggedIn.User.PasswordHash)

	// The login counted as today's progression event.
	progress, err := env.store.GetProgress(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.LoginCount)

	streak, err := env.store.GetStreak(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.Current)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	_, svc := setupAuthService(t)
	ctx := context.Background()

	req := RegisterRequest{
		Email:       "maya@example.com",
		Password:    "correct horse battery",
		DisplayName: "Maya",
	}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	requireCode(t, err, domainerrors.CodeAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	_, svc := setupAuthService(t)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "not-an-email",
		Password:    "short",
		DisplayName: "Maya",
	})
	requireCode(t, err, domainerrors.CodeValidation)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Email:       "maya@example.com",
		Password:    "correct horse battery",
		DisplayName: "Maya",
		Grade:       "13",
	})
	requireCode(t, err, domainerrors.CodeValidation)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	_, svc := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Email:       "maya@example.com",
		Password:    "correct horse battery",
		DisplayName: "Maya",
	})
	require.NoError(t, err)

	// Wrong password and unknown email read identically.
	_, err = svc.Login(ctx, LoginRequest{Email: "maya@example.com", Password: "wrong"})
	requireCode(t, err, domainerrors.CodeInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "wrong"})
	requireCode(t, err, domainerrors.CodeInvalidCredentials)
}

func TestVerify_BadToken(t *testing.T) {
	_, svc := setupAuthService(t)

	_, err := svc.Verify("v4.local.garbage")
	requireCode(t, err, domainerrors.CodeUnauthorized)
}
