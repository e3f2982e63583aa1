package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "chrono/internal/delivery/context"
	"chrono/internal/domain/diff"
	"chrono/internal/domain/entity"
	domainerrors "chrono/internal/domain/errors"
	"chrono/internal/domain/repository"
	"chrono/internal/domain/service"
	"chrono/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// historyService implements the HistoryUsecase interface. Reconstruction and
// rollback both run against a single transactional read of the change log, so
// a concurrent writer can never split the chain they fold.
type historyService struct {
	txManager repository.TransactionManager
	auth      usecase.AuthUsecase
	clock     service.Clock
	recorder  *changeRecorder
	logger    *slog.Logger
}

// HistoryServiceParams holds dependencies for historyService, injected by Fx.
type HistoryServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Auth      usecase.AuthUsecase
	Clock     service.Clock
	Logger    *slog.Logger
}

// NewHistoryService is the constructor for historyService.
func NewHistoryService(params HistoryServiceParams) usecase.HistoryUsecase {
	return &historyService{
		txManager: params.TxManager,
		auth:      params.Auth,
		clock:     params.Clock,
		recorder:  newChangeRecorder(params.Clock),
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *historyService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// foldChain folds a newest-first chain of change records into the field
// values that held at the cutoff. Each record's payload carries the values
// from before its mutation, so walking toward older records and letting them
// win per field lands on the oldest captured value, the one in effect at the
// cutoff. A cutoff predating the whole chain reproduces the first before
// image in full.
func foldChain(records []*entity.ChangeRecord) map[string]any {
	state := map[string]any{}
	for _, record := range records {
		state = diff.Merge(state, record.Payload)
	}

	return state
}

// History lists the raw change chain of an appointment, newest first.
func (srv *historyService) History(ctx context.Context, appointmentID uuid.UUID, since time.Time) ([]*entity.ChangeRecord, error) {
	callerID, err := srv.auth.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	var records []*entity.ChangeRecord

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		chain, err := repoFactory.ChangeLogRepo().Chain(ctx, entity.EntityTypeAppointment, appointmentID, since)
		if err != nil {
			return errors.Wrap(err, "failed to read change chain")
		}

		owner, err := srv.appointmentOwner(ctx, repoFactory, appointmentID, chain)
		if err != nil {
			return err
		}
		if err := requireOwner(callerID, owner); err != nil {
			return err
		}

		records = chain

		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Reconstruct folds the entity's diff chain into the field values that held
// at the cutoff. Works for live and deleted entities alike.
func (srv *historyService) Reconstruct(ctx context.Context, entityType string, entityID uuid.UUID, since time.Time) (map[string]any, error) {
	if !entity.TrackedEntityType(entityType) {
		return nil, domainerrors.ErrConstraintViolation.WrapMessage("untracked entity type: " + entityType)
	}

	callerID, err := srv.auth.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	var reconstructed map[string]any

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		chain, err := repoFactory.ChangeLogRepo().Chain(ctx, entityType, entityID, since)
		if err != nil {
			return errors.Wrap(err, "failed to read change chain")
		}

		folded := foldChain(chain)

		owner, err := srv.entityOwner(ctx, repoFactory, entityType, entityID, folded)
		if err != nil {
			return err
		}
		if err := requireOwner(callerID, owner); err != nil {
			return err
		}

		reconstructed = folded

		return nil
	})
	if err != nil {
		return nil, err
	}

	return reconstructed, nil
}

// Rollback restores an appointment to its state at the cutoff, resurrecting
// it if a delete removed it, then reconciles its signups in two phases:
// re-insert the ones a cascading delete swept away within the window, delete
// the ones created after the cutoff. The whole restoration is one
// transaction and running it twice with the same cutoff changes nothing the
// second time.
func (srv *historyService) Rollback(ctx context.Context, appointmentID uuid.UUID, since time.Time) (*entity.Appointment, error) {
	callerID, err := srv.auth.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	var restored *entity.Appointment

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		appointmentRepo := repoFactory.AppointmentRepo()
		changeLog := repoFactory.ChangeLogRepo()

		chain, err := changeLog.Chain(ctx, entity.EntityTypeAppointment, appointmentID, since)
		if err != nil {
			return errors.Wrap(err, "failed to read change chain")
		}
		reconstructed := foldChain(chain)

		live, err := appointmentRepo.FindByID(ctx, appointmentID)
		liveExists := err == nil
		if err != nil && !errors.Is(err, repository.ErrAppointmentNotFound) {
			return errors.Wrap(err, "failed to find appointment")
		}
		if !liveExists && len(reconstructed) == 0 {
			return domainerrors.ErrNotFound.WrapMessage("appointment has no recoverable state")
		}

		// Fields untouched since the cutoff keep their live value; the
		// reconstructed values win for everything the window captured.
		target := &entity.Appointment{ID: appointmentID}
		if liveExists {
			target = live.Clone()
		}
		if err := target.ApplySnapshot(reconstructed); err != nil {
			return errors.Wrap(err, "failed to apply reconstructed state")
		}

		if liveExists {
			if err := requireOwner(callerID, live); err != nil {
				return err
			}

			// An empty reconstruction means no tracked field changed at or
			// after the cutoff; the live row stays untouched.
			if len(reconstructed) > 0 {
				target.UpdatedAt = srv.clock.Now()
				before := live.Snapshot()
				if err := appointmentRepo.Update(ctx, target); err != nil {
					return errors.Wrap(err, "failed to restore appointment")
				}
				if err := srv.recorder.recordUpdate(ctx, changeLog, callerID,
					entity.EntityTypeAppointment, appointmentID, before, target.Snapshot()); err != nil {
					return errors.Wrap(err, "failed to record restoration")
				}
			}
		} else {
			if err := requireOwner(callerID, target); err != nil {
				return err
			}

			target.UpdatedAt = srv.clock.Now()
			if err := appointmentRepo.Create(ctx, target); err != nil {
				return errors.Wrap(err, "failed to resurrect appointment")
			}
		}

		if err := srv.reconcileSignups(ctx, repoFactory, callerID, appointmentID, since); err != nil {
			return err
		}

		restored = target

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Rollback failed",
			slog.Any("appointmentID", appointmentID), slog.Time("since", since), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Rolled back appointment",
		slog.Any("appointmentID", appointmentID), slog.Time("since", since))

	return restored, nil
}

// reconcileSignups runs the two-phase cascade reconcile for a rolled-back
// appointment.
func (srv *historyService) reconcileSignups(ctx context.Context, repoFactory repository.RepositoryFactory, callerID, appointmentID uuid.UUID, since time.Time) error {
	signupRepo := repoFactory.SignupRepo()
	changeLog := repoFactory.ChangeLogRepo()

	// Phase 1: resurrect signups that were removed within the window and
	// existed at the cutoff.
	removed, err := changeLog.RemovedSince(ctx, entity.EntityTypeSignup, "appointment_id", appointmentID, since)
	if err != nil {
		return errors.Wrap(err, "failed to read removed signups")
	}

	seen := make(map[uuid.UUID]bool, len(removed))
	preserved := make(map[uuid.UUID]bool, len(removed))
	for _, record := range removed {
		if seen[record.EntityID] {
			continue
		}
		seen[record.EntityID] = true

		live, err := signupRepo.FindByID(ctx, record.EntityID)
		if err == nil {
			// Already live, possibly from an earlier rollback with a later
			// cutoff. It belongs in the target membership only if it existed
			// at this cutoff; otherwise phase 2 sweeps it.
			preserved[record.EntityID] = !live.CreatedAt.After(since)

			continue
		}
		if !errors.Is(err, repository.ErrSignupNotFound) {
			return errors.Wrap(err, "failed to check removed signup")
		}

		childChain, err := changeLog.Chain(ctx, entity.EntityTypeSignup, record.EntityID, since)
		if err != nil {
			return errors.Wrap(err, "failed to read signup chain")
		}

		signup := &entity.Signup{ID: record.EntityID}
		if err := signup.ApplySnapshot(foldChain(childChain)); err != nil {
			return errors.Wrap(err, "failed to apply reconstructed signup state")
		}

		// A signup created after the cutoff did not exist at the cutoff.
		if signup.CreatedAt.After(since) {
			continue
		}
		preserved[record.EntityID] = true

		if err := signupRepo.Create(ctx, signup); err != nil {
			return errors.Wrap(err, "failed to resurrect signup")
		}
	}

	// Phase 2: delete signups that joined after the cutoff.
	liveSignups, err := signupRepo.FindByAppointmentID(ctx, appointmentID)
	if err != nil {
		return errors.Wrap(err, "failed to list signups")
	}

	for _, signup := range liveSignups {
		if !signup.CreatedAt.After(since) || preserved[signup.ID] {
			continue
		}

		if err := signupRepo.Delete(ctx, signup.ID); err != nil {
			return errors.Wrap(err, "failed to delete post-cutoff signup")
		}
		if err := srv.recorder.recordRemove(ctx, changeLog, callerID,
			entity.EntityTypeSignup, signup.ID, signup.Snapshot()); err != nil {
			return errors.Wrap(err, "failed to record signup removal")
		}
	}

	return nil
}

// appointmentOwner resolves who owns an appointment, falling back to the
// owner captured in its chain when the live row is gone.
func (srv *historyService) appointmentOwner(ctx context.Context, repoFactory repository.RepositoryFactory, appointmentID uuid.UUID, chain []*entity.ChangeRecord) (entity.Owned, error) {
	live, err := repoFactory.AppointmentRepo().FindByID(ctx, appointmentID)
	if err == nil {
		return live, nil
	}
	if !errors.Is(err, repository.ErrAppointmentNotFound) {
		return nil, errors.Wrap(err, "failed to find appointment")
	}

	folded := foldChain(chain)
	if len(folded) == 0 {
		return nil, domainerrors.ErrNotFound.WrapMessage("appointment not found")
	}

	ghost := &entity.Appointment{ID: appointmentID}
	if err := ghost.ApplySnapshot(folded); err != nil {
		return nil, errors.Wrap(err, "failed to apply reconstructed state")
	}

	return ghost, nil
}

// entityOwner resolves who owns a tracked entity, live or reconstructed.
func (srv *historyService) entityOwner(ctx context.Context, repoFactory repository.RepositoryFactory, entityType string, entityID uuid.UUID, folded map[string]any) (entity.Owned, error) {
	switch entityType {
	case entity.EntityTypeAppointment:
		live, err := repoFactory.AppointmentRepo().FindByID(ctx, entityID)
		if err == nil {
			return live, nil
		}
		if !errors.Is(err, repository.ErrAppointmentNotFound) {
			return nil, errors.Wrap(err, "failed to find appointment")
		}

		if len(folded) == 0 {
			return nil, domainerrors.ErrNotFound.WrapMessage("appointment not found")
		}

		ghost := &entity.Appointment{ID: entityID}
		if err := ghost.ApplySnapshot(folded); err != nil {
			return nil, errors.Wrap(err, "failed to apply reconstructed state")
		}

		return ghost, nil
	case entity.EntityTypeSignup:
		live, err := repoFactory.SignupRepo().FindByID(ctx, entityID)
		if err == nil {
			return live, nil
		}
		if !errors.Is(err, repository.ErrSignupNotFound) {
			return nil, errors.Wrap(err, "failed to find signup")
		}

		if len(folded) == 0 {
			return nil, domainerrors.ErrNotFound.WrapMessage("signup not found")
		}

		ghost := &entity.Signup{ID: entityID}
		if err := ghost.ApplySnapshot(folded); err != nil {
			return nil, errors.Wrap(err, "failed to apply reconstructed state")
		}

		return ghost, nil
	default:
		return nil, domainerrors.ErrConstraintViolation.WrapMessage("untracked entity type: " + entityType)
	}
}
