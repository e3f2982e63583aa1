package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	deliverycontext "chrono/internal/delivery/context"
	"chrono/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fixture wires the real services against the in-memory fakes.
type fixture struct {
	store        *fakeStore
	clock        *fakeClock
	auth         usecase.AuthUsecase
	appointments usecase.AppointmentUsecase
	history      usecase.HistoryUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newFakeStore()
	clock := newFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	auth := NewAuthService(AuthServiceParams{
		TxManager: store,
		Hasher:    fakeHasher{},
		Tokens:    &fakeTokenSource{},
		Clock:     clock,
		Logger:    logger,
	})
	appointments := NewAppointmentService(AppointmentServiceParams{
		TxManager: store,
		Auth:      auth,
		Clock:     clock,
		Logger:    logger,
	})
	history := NewHistoryService(HistoryServiceParams{
		TxManager: store,
		Auth:      auth,
		Clock:     clock,
		Logger:    logger,
	})

	return &fixture{
		store:        store,
		clock:        clock,
		auth:         auth,
		appointments: appointments,
		history:      history,
	}
}

// loginAs registers a fresh user and returns a context with their session
// token bound, plus their identity id.
func (f *fixture) loginAs(t *testing.T, name, email string) (context.Context, uuid.UUID) {
	t.Helper()

	_, err := f.auth.Register(context.Background(), &usecase.RegisterInput{
		Name:     name,
		Email:    email,
		Password: "correct horse",
	})
	require.NoError(t, err)

	output, err := f.auth.Login(context.Background(), &usecase.LoginInput{
		Email:    email,
		Password: "correct horse",
	})
	require.NoError(t, err)

	return deliverycontext.WithSessionToken(context.Background(), output.Token), output.UserID
}
