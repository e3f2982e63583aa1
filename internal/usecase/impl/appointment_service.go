package impl

import (
	"context"
	"log/slog"

	deliverycontext "chrono/internal/delivery/context"
	"chrono/internal/domain/entity"
	domainerrors "chrono/internal/domain/errors"
	"chrono/internal/domain/repository"
	"chrono/internal/domain/service"
	"chrono/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// appointmentService implements the AppointmentUsecase interface. Every
// update and delete runs through the change recorder inside one transaction.
type appointmentService struct {
	txManager repository.TransactionManager
	auth      usecase.AuthUsecase
	clock     service.Clock
	recorder  *changeRecorder
	logger    *slog.Logger
}

// AppointmentServiceParams holds dependencies for appointmentService, injected by Fx.
type AppointmentServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Auth      usecase.AuthUsecase
	Clock     service.Clock
	Logger    *slog.Logger
}

// NewAppointmentService is the constructor for appointmentService.
func NewAppointmentService(params AppointmentServiceParams) usecase.AppointmentUsecase {
	return &appointmentService{
		txManager: params.TxManager,
		auth:      params.Auth,
		clock:     params.Clock,
		recorder:  newChangeRecorder(params.Clock),
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *appointmentService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Create inserts a new appointment owned by the resolved identity. Creation
// is not intercepted; history starts with the first update or delete.
func (srv *appointmentService) Create(ctx context.Context, input *usecase.CreateAppointmentInput) (*entity.Appointment, error) {
	callerID, err := srv.auth.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	now := srv.clock.Now()
	appointment := &entity.Appointment{
		OwnerID:   callerID,
		Title:     input.Title,
		Location:  input.Location,
		Notes:     input.Notes,
		Capacity:  input.Capacity,
		StartsAt:  input.StartsAt,
		Extras:    input.Extras,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.AppointmentRepo().Create(ctx, appointment)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to create appointment", slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Created appointment", slog.Any("appointmentID", appointment.ID))

	return appointment, nil
}

// Get returns an appointment readable by the resolved identity: its owner or
// one of its participants.
func (srv *appointmentService) Get(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	callerID, err := srv.auth.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	var appointment *entity.Appointment

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.AppointmentRepo().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrAppointmentNotFound) {
				return domainerrors.ErrNotFound.WrapMessage("appointment not found")
			}

			return errors.Wrap(err, "failed to find appointment")
		}

		if found.OwnerID != callerID {
			_, err := repoFactory.SignupRepo().FindByAppointmentAndUser(ctx, id, callerID)
			if errors.Is(err, repository.ErrSignupNotFound) {
				return domainerrors.ErrPermissionDenied.WrapMessage("caller is neither owner nor participant")
			}
			if err != nil {
				return errors.Wrap(err, "failed to check participation")
			}
		}

		appointment = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return appointment, nil
}

// Update applies a partial update; owner only. The before image is captured
// before writing and reduced against the after image inside the same
// transaction as the write itself.
func (srv *appointmentService) Update(ctx context.Context, id uuid.UUID, input *usecase.UpdateAppointmentInput) (*entity.Appointment, error) {
	callerID, err := srv.auth.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	var updated *entity.Appointment

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		appointmentRepo := repoFactory.AppointmentRepo()

		current, err := appointmentRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrAppointmentNotFound) {
				return domainerrors.ErrNotFound.WrapMessage("appointment not found")
			}

			return errors.Wrap(err, "failed to find appointment")
		}

		if err := requireOwner(callerID, current); err != nil {
			return err
		}

		before := current.Snapshot()

		next := current.Clone()
		applyAppointmentUpdate(next, input)
		next.UpdatedAt = srv.clock.Now()

		if err := appointmentRepo.Update(ctx, next); err != nil {
			return errors.Wrap(err, "failed to update appointment")
		}

		if err := srv.recorder.recordUpdate(ctx, repoFactory.ChangeLogRepo(), callerID,
			entity.EntityTypeAppointment, id, before, next.Snapshot()); err != nil {
			return errors.Wrap(err, "failed to record update")
		}

		updated = next

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to update appointment", slog.Any("appointmentID", id), slog.Any("error", err))

		return nil, err
	}

	return updated, nil
}

// Delete removes an appointment and cascades to its signups. The parent and
// every swept-away child each get a REMOVED record carrying their full prior
// state, all in one transaction.
func (srv *appointmentService) Delete(ctx context.Context, id uuid.UUID) error {
	callerID, err := srv.auth.Resolve(ctx)
	if err != nil {
		return err
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		appointmentRepo := repoFactory.AppointmentRepo()
		signupRepo := repoFactory.SignupRepo()
		changeLog := repoFactory.ChangeLogRepo()

		current, err := appointmentRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrAppointmentNotFound) {
				return domainerrors.ErrNotFound.WrapMessage("appointment not found")
			}

			return errors.Wrap(err, "failed to find appointment")
		}

		if err := requireOwner(callerID, current); err != nil {
			return err
		}

		signups, err := signupRepo.FindByAppointmentID(ctx, id)
		if err != nil {
			return errors.Wrap(err, "failed to list signups")
		}

		for _, signup := range signups {
			if err := signupRepo.Delete(ctx, signup.ID); err != nil {
				return errors.Wrap(err, "failed to cascade delete signup")
			}
			if err := srv.recorder.recordRemove(ctx, changeLog, callerID,
				entity.EntityTypeSignup, signup.ID, signup.Snapshot()); err != nil {
				return errors.Wrap(err, "failed to record signup removal")
			}
		}

		if err := appointmentRepo.Delete(ctx, id); err != nil {
			return errors.Wrap(err, "failed to delete appointment")
		}

		return srv.recorder.recordRemove(ctx, changeLog, callerID,
			entity.EntityTypeAppointment, id, current.Snapshot())
	})
	if err != nil {
		srv.log(ctx).Error("Failed to delete appointment", slog.Any("appointmentID", id), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Deleted appointment", slog.Any("appointmentID", id))

	return nil
}

// Join signs the resolved identity up for an appointment. Creation of a
// signup is not intercepted, mirroring appointment creation.
func (srv *appointmentService) Join(ctx context.Context, appointmentID uuid.UUID) (*entity.Signup, error) {
	callerID, err := srv.auth.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	var signup *entity.Signup

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		appointmentRepo := repoFactory.AppointmentRepo()
		signupRepo := repoFactory.SignupRepo()

		appointment, err := appointmentRepo.FindByID(ctx, appointmentID)
		if err != nil {
			if errors.Is(err, repository.ErrAppointmentNotFound) {
				return domainerrors.ErrNotFound.WrapMessage("appointment not found")
			}

			return errors.Wrap(err, "failed to find appointment")
		}

		existing, err := signupRepo.FindByAppointmentAndUser(ctx, appointmentID, callerID)
		if err == nil {
			signup = existing

			return nil
		}
		if !errors.Is(err, repository.ErrSignupNotFound) {
			return errors.Wrap(err, "failed to check existing signup")
		}

		status := entity.SignupStatusConfirmed
		if appointment.Capacity > 0 {
			confirmed, err := signupRepo.FindByAppointmentID(ctx, appointmentID)
			if err != nil {
				return errors.Wrap(err, "failed to count signups")
			}
			if len(confirmed) >= appointment.Capacity {
				status = entity.SignupStatusWaitlisted
			}
		}

		signup = &entity.Signup{
			AppointmentID: appointmentID,
			UserID:        callerID,
			Status:        status,
			CreatedAt:     srv.clock.Now(),
		}

		return signupRepo.Create(ctx, signup)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to join appointment", slog.Any("appointmentID", appointmentID), slog.Any("error", err))

		return nil, err
	}

	return signup, nil
}

// Leave removes the resolved identity's signup, recording a REMOVED record in
// the same transaction.
func (srv *appointmentService) Leave(ctx context.Context, appointmentID uuid.UUID) error {
	callerID, err := srv.auth.Resolve(ctx)
	if err != nil {
		return err
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		signupRepo := repoFactory.SignupRepo()

		signup, err := signupRepo.FindByAppointmentAndUser(ctx, appointmentID, callerID)
		if err != nil {
			if errors.Is(err, repository.ErrSignupNotFound) {
				return domainerrors.ErrNotFound.WrapMessage("signup not found")
			}

			return errors.Wrap(err, "failed to find signup")
		}

		if err := signupRepo.Delete(ctx, signup.ID); err != nil {
			return errors.Wrap(err, "failed to delete signup")
		}

		return srv.recorder.recordRemove(ctx, repoFactory.ChangeLogRepo(), callerID,
			entity.EntityTypeSignup, signup.ID, signup.Snapshot())
	})
	if err != nil {
		srv.log(ctx).Error("Failed to leave appointment", slog.Any("appointmentID", appointmentID), slog.Any("error", err))

		return err
	}

	return nil
}

// applyAppointmentUpdate copies the set fields of a partial update onto the
// appointment.
func applyAppointmentUpdate(appointment *entity.Appointment, input *usecase.UpdateAppointmentInput) {
	if input.Title != nil {
		appointment.Title = *input.Title
	}
	if input.Location != nil {
		appointment.Location = *input.Location
	}
	if input.NotesSet {
		appointment.Notes = input.Notes
	}
	if input.Capacity != nil {
		appointment.Capacity = *input.Capacity
	}
	if input.StartsAt != nil {
		appointment.StartsAt = *input.StartsAt
	}
	if input.Extras != nil {
		appointment.Extras = input.Extras
	}
}
