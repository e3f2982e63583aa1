package impl

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"chrono/internal/domain/entity"
	domainerrors "chrono/internal/domain/errors"
	"chrono/internal/domain/repository"

	"github.com/google/uuid"
)

// fakeStore is a single in-memory database shared by all fake repositories.
// Execute snapshots the maps up front and restores them when the callback
// fails, giving tests real all-or-nothing semantics. Stored entities are
// cloned on the way in and out, so the snapshot can share pointers safely.
type fakeStore struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*entity.User
	sessions     map[string]*entity.Session
	appointments map[uuid.UUID]*entity.Appointment
	signups      map[uuid.UUID]*entity.Signup
	records      []*entity.ChangeRecord
	nextRecordID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[uuid.UUID]*entity.User),
		sessions:     make(map[string]*entity.Session),
		appointments: make(map[uuid.UUID]*entity.Appointment),
		signups:      make(map[uuid.UUID]*entity.Signup),
	}
}

func (s *fakeStore) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make(map[uuid.UUID]*entity.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	sessions := make(map[string]*entity.Session, len(s.sessions))
	for k, v := range s.sessions {
		sessions[k] = v
	}
	appointments := make(map[uuid.UUID]*entity.Appointment, len(s.appointments))
	for k, v := range s.appointments {
		appointments[k] = v
	}
	signups := make(map[uuid.UUID]*entity.Signup, len(s.signups))
	for k, v := range s.signups {
		signups[k] = v
	}
	records := make([]*entity.ChangeRecord, len(s.records))
	copy(records, s.records)
	nextRecordID := s.nextRecordID

	if err := fn(s); err != nil {
		s.users = users
		s.sessions = sessions
		s.appointments = appointments
		s.signups = signups
		s.records = records
		s.nextRecordID = nextRecordID

		return err
	}

	return nil
}

func (s *fakeStore) UserRepo() repository.UserRepository               { return (*fakeUserRepo)(s) }
func (s *fakeStore) SessionRepo() repository.SessionRepository         { return (*fakeSessionRepo)(s) }
func (s *fakeStore) AppointmentRepo() repository.AppointmentRepository { return (*fakeAppointmentRepo)(s) }
func (s *fakeStore) SignupRepo() repository.SignupRepository           { return (*fakeSignupRepo)(s) }
func (s *fakeStore) ChangeLogRepo() repository.ChangeLogRepository     { return (*fakeChangeLogRepo)(s) }

type fakeUserRepo fakeStore

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cloned := *user

	return &cloned, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			cloned := *user

			return &cloned, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cloned := *user
	r.users[user.ID] = &cloned

	return nil
}

type fakeSessionRepo fakeStore

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	cloned := *session
	r.sessions[session.Token] = &cloned

	return nil
}

func (r *fakeSessionRepo) FindByToken(_ context.Context, token string) (*entity.Session, error) {
	session, ok := r.sessions[token]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	cloned := *session

	return &cloned, nil
}

func (r *fakeSessionRepo) DeleteByToken(_ context.Context, token string) error {
	delete(r.sessions, token)

	return nil
}

type fakeAppointmentRepo fakeStore

func (r *fakeAppointmentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Appointment, error) {
	appointment, ok := r.appointments[id]
	if !ok {
		return nil, repository.ErrAppointmentNotFound
	}

	return appointment.Clone(), nil
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appointment *entity.Appointment) error {
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	r.appointments[appointment.ID] = appointment.Clone()

	return nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, appointment *entity.Appointment) error {
	if _, ok := r.appointments[appointment.ID]; !ok {
		return repository.ErrAppointmentNotFound
	}
	r.appointments[appointment.ID] = appointment.Clone()

	return nil
}

func (r *fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.appointments, id)

	return nil
}

type fakeSignupRepo fakeStore

func (r *fakeSignupRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Signup, error) {
	signup, ok := r.signups[id]
	if !ok {
		return nil, repository.ErrSignupNotFound
	}
	cloned := *signup

	return &cloned, nil
}

func (r *fakeSignupRepo) FindByAppointmentAndUser(_ context.Context, appointmentID, userID uuid.UUID) (*entity.Signup, error) {
	for _, signup := range r.signups {
		if signup.AppointmentID == appointmentID && signup.UserID == userID {
			cloned := *signup

			return &cloned, nil
		}
	}

	return nil, repository.ErrSignupNotFound
}

func (r *fakeSignupRepo) FindByAppointmentID(_ context.Context, appointmentID uuid.UUID) ([]*entity.Signup, error) {
	var result []*entity.Signup
	for _, signup := range r.signups {
		if signup.AppointmentID == appointmentID {
			cloned := *signup
			result = append(result, &cloned)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (r *fakeSignupRepo) Create(_ context.Context, signup *entity.Signup) error {
	if signup.ID == uuid.Nil {
		signup.ID = uuid.New()
	}
	for _, existing := range r.signups {
		if existing.AppointmentID == signup.AppointmentID && existing.UserID == signup.UserID {
			return repository.ErrDuplicateSignup
		}
	}
	cloned := *signup
	r.signups[signup.ID] = &cloned

	return nil
}

func (r *fakeSignupRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.signups, id)

	return nil
}

type fakeChangeLogRepo fakeStore

func (r *fakeChangeLogRepo) Append(_ context.Context, record *entity.ChangeRecord) error {
	if !entity.TrackedEntityType(record.EntityType) {
		return domainerrors.ErrConstraintViolation.WrapMessage("unknown entity type: " + record.EntityType)
	}

	r.nextRecordID++
	cloned := *record
	cloned.ID = r.nextRecordID
	r.records = append(r.records, &cloned)

	return nil
}

func (r *fakeChangeLogRepo) Chain(_ context.Context, entityType string, entityID uuid.UUID, since time.Time) ([]*entity.ChangeRecord, error) {
	var result []*entity.ChangeRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		record := r.records[i]
		if record.EntityType == entityType && record.EntityID == entityID && !record.CapturedAt.Before(since) {
			result = append(result, record)
		}
	}

	return result, nil
}

func (r *fakeChangeLogRepo) RemovedSince(_ context.Context, entityType, parentField string, parentID uuid.UUID, since time.Time) ([]*entity.ChangeRecord, error) {
	var result []*entity.ChangeRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		record := r.records[i]
		if record.EntityType != entityType || record.Kind != entity.ChangeKindRemoved || record.CapturedAt.Before(since) {
			continue
		}
		if record.Payload[parentField] == parentID.String() {
			result = append(result, record)
		}
	}

	return result, nil
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeHasher trades bcrypt for something inspectable.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Check(password, hash string) bool { return hash == "hashed:"+password }

// fakeTokenSource mints deterministic 32-character tokens.
type fakeTokenSource struct {
	mu      sync.Mutex
	counter int
}

func (t *fakeTokenSource) NewToken() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counter++

	return fmt.Sprintf("%032d", t.counter), nil
}
