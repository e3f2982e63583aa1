package impl

import (
	"context"
	"testing"
	"time"

	deliverycontext "chrono/internal/delivery/context"
	domainerrors "chrono/internal/domain/errors"
	"chrono/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	user, err := f.auth.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	output, err := f.auth.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Len(t, output.Token, 32)
	assert.Equal(t, user.ID, output.UserID)
	assert.Equal(t, f.clock.Now().Add(24*time.Hour), output.ExpiresAt)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	input := &usecase.RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "correct horse"}
	_, err := f.auth.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = f.auth.Register(context.Background(), input)
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
	assert.Len(t, f.store.users, 1)
}

func TestAuthService_LoginWrongPasswordLeavesNoSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Register(context.Background(), &usecase.RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = f.auth.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "wrong horse",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	assert.Empty(t, f.store.sessions)
}

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Login(context.Background(), &usecase.LoginInput{
		Email:    "ghost@example.com",
		Password: "whatever!",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	assert.Empty(t, f.store.sessions)
}

func TestAuthService_ResolveWithoutToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Resolve(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrSessionNotSet)
}

func TestAuthService_ResolveUnknownToken(t *testing.T) {
	f := newFixture(t)

	ctx := deliverycontext.WithSessionToken(context.Background(), "00000000000000000000000000000000")
	_, err := f.auth.Resolve(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrSessionInvalid)
}

func TestAuthService_ResolveExpiredToken(t *testing.T) {
	f := newFixture(t)
	ctx, userID := f.loginAs(t, "Alice", "alice@example.com")

	resolved, err := f.auth.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)

	f.clock.Advance(24*time.Hour + time.Second)

	_, err = f.auth.Resolve(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrSessionInvalid)
}

func TestAuthService_LogoutEndsSession(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.loginAs(t, "Alice", "alice@example.com")

	require.NoError(t, f.auth.Logout(ctx))

	_, err := f.auth.Resolve(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrSessionInvalid)
}

func TestAuthService_LogoutWithoutToken(t *testing.T) {
	f := newFixture(t)

	err := f.auth.Logout(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrSessionNotSet)
}

func TestAuthService_ConcurrentSessionsResolveIndependently(t *testing.T) {
	f := newFixture(t)
	ctxFirst, userID := f.loginAs(t, "Alice", "alice@example.com")

	output, err := f.auth.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	ctxSecond := deliverycontext.WithSessionToken(context.Background(), output.Token)

	require.NoError(t, f.auth.Logout(ctxFirst))

	resolved, err := f.auth.Resolve(ctxSecond)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)
}
