package impl

import (
	"context"
	"testing"
	"time"

	"chrono/internal/domain/entity"
	domainerrors "chrono/internal/domain/errors"
	"chrono/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renameTwice drives the appointment through title A -> B -> C and returns
// the instants just before each rename.
func renameTwice(t *testing.T, f *fixture, ctx context.Context, id uuid.UUID) (beforeFirst, beforeSecond time.Time) {
	t.Helper()

	f.clock.Advance(time.Hour)
	beforeFirst = f.clock.Now()
	f.clock.Advance(time.Hour)
	_, err := f.appointments.Update(ctx, id, &usecase.UpdateAppointmentInput{Title: strPtr("B")})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	beforeSecond = f.clock.Now()
	f.clock.Advance(time.Hour)
	_, err = f.appointments.Update(ctx, id, &usecase.UpdateAppointmentInput{Title: strPtr("C")})
	require.NoError(t, err)

	return beforeFirst, beforeSecond
}

func TestHistoryService_ReconstructWalksBackThroughRenames(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.loginAs(t, "Alice", "alice@example.com")
	appointment := f.createAppointment(t, ctx, "A")
	beforeFirst, beforeSecond := renameTwice(t, f, ctx, appointment.ID)

	// Cutoff before any change reproduces the earliest captured value.
	state, err := f.history.Reconstruct(ctx, entity.EntityTypeAppointment, appointment.ID, beforeFirst)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "A"}, state)

	// Cutoff between the two renames sees only the later chain.
	state, err = f.history.Reconstruct(ctx, entity.EntityTypeAppointment, appointment.ID, beforeSecond)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "B"}, state)

	// Cutoff after everything yields an empty partial state.
	state, err = f.history.Reconstruct(ctx, entity.EntityTypeAppointment, appointment.ID, f.clock.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, state)
}

func TestHistoryService_ReconstructUntrackedType(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.loginAs(t, "Alice", "alice@example.com")

	_, err := f.history.Reconstruct(ctx, "user", uuid.New(), f.clock.Now())
	assert.ErrorIs(t, err, domainerrors.ErrConstraintViolation)
}

func TestHistoryService_ReconstructDeletedAppointment(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.loginAs(t, "Alice", "alice@example.com")
	appointment := f.createAppointment(t, ctx, "Standup")
	cutoff := f.clock.Now()

	f.clock.Advance(time.Hour)
	require.NoError(t, f.appointments.Delete(ctx, appointment.ID))

	state, err := f.history.Reconstruct(ctx, entity.EntityTypeAppointment, appointment.ID, cutoff)
	require.NoError(t, err)
	assert.Equal(t, "Standup", state["title"])
	assert.Equal(t, appointment.OwnerID.String(), state["owner_id"])
}

func TestHistoryService_HistoryOwnerOnlyNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.loginAs(t, "Alice", "alice@example.com")
	strangerCtx, _ := f.loginAs(t, "Mallory", "mallory@example.com")
	appointment := f.createAppointment(t, ctx, "A")
	renameTwice(t, f, ctx, appointment.ID)

	records, err := f.history.History(ctx, appointment.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, map[string]any{"title": "B"}, records[0].Payload)
	assert.Equal(t, map[string]any{"title": "A"}, records[1].Payload)
	assert.Greater(t, records[0].ID, records[1].ID)

	_, err = f.history.History(strangerCtx, appointment.ID, time.Time{})
	assert.ErrorIs(t, err, domainerrors.ErrPermissionDenied)
}

func TestHistoryService_RollbackRestoresIntermediateState(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.loginAs(t, "Alice", "alice@example.com")
	appointment := f.createAppointment(t, ctx, "A")
	_, beforeSecond := renameTwice(t, f, ctx, appointment.ID)

	f.clock.Advance(time.Hour)
	restored, err := f.history.Rollback(ctx, appointment.ID, beforeSecond)
	require.NoError(t, err)
	assert.Equal(t, "B", restored.Title)

	live, err := f.appointments.Get(ctx, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", live.Title)

	// The restoration itself is an audited mutation capturing the prior value.
	require.Len(t, f.store.records, 3)
	assert.Equal(t, map[string]any{"title": "C"}, f.store.records[2].Payload)
}

func TestHistoryService_RollbackIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.loginAs(t, "Alice", "alice@example.com")
	appointment := f.createAppointment(t, ctx, "A")
	_, beforeSecond := renameTwice(t, f, ctx, appointment.ID)

	f.clock.Advance(time.Hour)
	_, err := f.history.Rollback(ctx, appointment.ID, beforeSecond)
	require.NoError(t, err)
	recordsAfterFirst := len(f.store.records)

	f.clock.Advance(time.Hour)
	restored, err := f.history.Rollback(ctx, appointment.ID, beforeSecond)
	require.NoError(t, err)
	assert.Equal(t, "B", restored.Title)
	assert.Len(t, f.store.records, recordsAfterFirst, "second rollback must append nothing")
}

func TestHistoryService_RollbackResurrectsDeletedCascade(t *testing.T) {
	f := newFixture(t)
	ownerCtx, _ := f.loginAs(t, "Alice", "alice@example.com")
	bobCtx, bobID := f.loginAs(t, "Bob", "bob@example.com")
	appointment := f.createAppointment(t, ownerCtx, "Standup")

	f.clock.Advance(time.Hour)
	signup, err := f.appointments.Join(bobCtx, appointment.ID)
	require.NoError(t, err)
	joinedAt := signup.CreatedAt

	f.clock.Advance(time.Hour)
	cutoff := f.clock.Now()

	f.clock.Advance(time.Hour)
	_, err = f.appointments.Update(ownerCtx, appointment.ID, &usecase.UpdateAppointmentInput{Title: strPtr("Retro")})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	require.NoError(t, f.appointments.Delete(ownerCtx, appointment.ID))
	assert.Empty(t, f.store.appointments)
	assert.Empty(t, f.store.signups)

	f.clock.Advance(time.Hour)
	restored, err := f.history.Rollback(ownerCtx, appointment.ID, cutoff)
	require.NoError(t, err)

	assert.Equal(t, appointment.ID, restored.ID)
	assert.Equal(t, "Standup", restored.Title)
	assert.Equal(t, appointment.CreatedAt.UTC(), restored.CreatedAt.UTC())

	live, ok := f.store.signups[signup.ID]
	require.True(t, ok, "cascaded signup must be re-inserted with its original id")
	assert.Equal(t, bobID, live.UserID)
	assert.Equal(t, joinedAt.UTC(), live.CreatedAt.UTC())
	assert.Equal(t, entity.SignupStatusConfirmed, live.Status)
}

func TestHistoryService_RollbackDeletesPostCutoffSignups(t *testing.T) {
	f := newFixture(t)
	ownerCtx, _ := f.loginAs(t, "Alice", "alice@example.com")
	bobCtx, _ := f.loginAs(t, "Bob", "bob@example.com")
	carolCtx, _ := f.loginAs(t, "Carol", "carol@example.com")
	appointment := f.createAppointment(t, ownerCtx, "Standup")

	f.clock.Advance(time.Hour)
	earlySignup, err := f.appointments.Join(bobCtx, appointment.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	cutoff := f.clock.Now()

	f.clock.Advance(time.Hour)
	lateSignup, err := f.appointments.Join(carolCtx, appointment.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	_, err = f.history.Rollback(ownerCtx, appointment.ID, cutoff)
	require.NoError(t, err)

	_, stillThere := f.store.signups[earlySignup.ID]
	assert.True(t, stillThere)
	_, gone := f.store.signups[lateSignup.ID]
	assert.False(t, gone, "signup created after the cutoff must be removed")

	require.Len(t, f.store.records, 1)
	record := f.store.records[0]
	assert.Equal(t, entity.ChangeKindRemoved, record.Kind)
	assert.Equal(t, lateSignup.ID, record.EntityID)
}

func TestHistoryService_RollbackToEarlierCutoffRemovesResurrectedSignup(t *testing.T) {
	f := newFixture(t)
	ownerCtx, _ := f.loginAs(t, "Alice", "alice@example.com")
	bobCtx, _ := f.loginAs(t, "Bob", "bob@example.com")
	appointment := f.createAppointment(t, ownerCtx, "Standup")

	f.clock.Advance(time.Hour)
	earlierCutoff := f.clock.Now()

	f.clock.Advance(time.Hour)
	signup, err := f.appointments.Join(bobCtx, appointment.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	laterCutoff := f.clock.Now()

	f.clock.Advance(time.Hour)
	require.NoError(t, f.appointments.Delete(ownerCtx, appointment.ID))

	// Rolling back to after the join resurrects the signup.
	f.clock.Advance(time.Hour)
	_, err = f.history.Rollback(ownerCtx, appointment.ID, laterCutoff)
	require.NoError(t, err)
	_, alive := f.store.signups[signup.ID]
	require.True(t, alive)

	// Rolling back again to before the join must sweep the resurrected
	// signup away: it was not part of the membership at that cutoff.
	f.clock.Advance(time.Hour)
	_, err = f.history.Rollback(ownerCtx, appointment.ID, earlierCutoff)
	require.NoError(t, err)
	_, alive = f.store.signups[signup.ID]
	assert.False(t, alive, "signup joined after the cutoff must not survive a rollback to before the join")
}

func TestHistoryService_SignupStateScopedToParticipant(t *testing.T) {
	f := newFixture(t)
	ownerCtx, _ := f.loginAs(t, "Alice", "alice@example.com")
	bobCtx, _ := f.loginAs(t, "Bob", "bob@example.com")
	appointment := f.createAppointment(t, ownerCtx, "Standup")

	f.clock.Advance(time.Hour)
	cutoff := f.clock.Now()

	f.clock.Advance(time.Hour)
	signup, err := f.appointments.Join(bobCtx, appointment.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	require.NoError(t, f.appointments.Leave(bobCtx, appointment.ID))

	// The participant can reconstruct their own signup, live or removed.
	state, err := f.history.Reconstruct(bobCtx, entity.EntityTypeSignup, signup.ID, cutoff)
	require.NoError(t, err)
	assert.Equal(t, appointment.ID.String(), state["appointment_id"])

	// The appointment owner is not the signup's participant.
	_, err = f.history.Reconstruct(ownerCtx, entity.EntityTypeSignup, signup.ID, cutoff)
	assert.ErrorIs(t, err, domainerrors.ErrPermissionDenied)
}

func TestHistoryService_RollbackByNonOwnerDenied(t *testing.T) {
	f := newFixture(t)
	ownerCtx, _ := f.loginAs(t, "Alice", "alice@example.com")
	strangerCtx, _ := f.loginAs(t, "Mallory", "mallory@example.com")
	appointment := f.createAppointment(t, ownerCtx, "A")
	_, beforeSecond := renameTwice(t, f, ownerCtx, appointment.ID)

	f.clock.Advance(time.Hour)
	_, err := f.history.Rollback(strangerCtx, appointment.ID, beforeSecond)
	assert.ErrorIs(t, err, domainerrors.ErrPermissionDenied)

	live, err := f.appointments.Get(ownerCtx, appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, "C", live.Title, "denied rollback must leave the appointment untouched")
}

func TestHistoryService_RollbackFutureCutoffIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.loginAs(t, "Alice", "alice@example.com")
	appointment := f.createAppointment(t, ctx, "A")
	renameTwice(t, f, ctx, appointment.ID)
	recordsBefore := len(f.store.records)
	updatedBefore := f.store.appointments[appointment.ID].UpdatedAt

	f.clock.Advance(time.Hour)
	restored, err := f.history.Rollback(ctx, appointment.ID, f.clock.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "C", restored.Title)
	assert.Len(t, f.store.records, recordsBefore)
	assert.Equal(t, updatedBefore, f.store.appointments[appointment.ID].UpdatedAt,
		"a no-op rollback must not touch the live row")
}

func TestHistoryService_RollbackUnknownAppointment(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.loginAs(t, "Alice", "alice@example.com")

	_, err := f.history.Rollback(ctx, uuid.New(), f.clock.Now())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestHistoryService_RollbackOfDeleteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ownerCtx, _ := f.loginAs(t, "Alice", "alice@example.com")
	bobCtx, _ := f.loginAs(t, "Bob", "bob@example.com")
	appointment := f.createAppointment(t, ownerCtx, "Standup")

	f.clock.Advance(time.Hour)
	_, err := f.appointments.Join(bobCtx, appointment.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	cutoff := f.clock.Now()

	f.clock.Advance(time.Hour)
	require.NoError(t, f.appointments.Delete(ownerCtx, appointment.ID))

	f.clock.Advance(time.Hour)
	_, err = f.history.Rollback(ownerCtx, appointment.ID, cutoff)
	require.NoError(t, err)
	recordsAfterFirst := len(f.store.records)
	signupsAfterFirst := len(f.store.signups)

	f.clock.Advance(time.Hour)
	_, err = f.history.Rollback(ownerCtx, appointment.ID, cutoff)
	require.NoError(t, err)
	assert.Len(t, f.store.records, recordsAfterFirst)
	assert.Len(t, f.store.signups, signupsAfterFirst)
}
