package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/careforms/intake-service/internal/cache"
	"github.com/careforms/intake-service/internal/models"
	"github.com/careforms/intake-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// MockFormRepository is a mock implementation of FormRepository
type MockFormRepository struct {
	mock.Mock
}

func (m *MockFormRepository) Create(ctx context.Context, f *models.IntakeForm) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFormRepository) GetByID(ctx context.Context, id uint) (*models.IntakeForm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IntakeForm), args.Error(1)
}

func (m *MockFormRepository) Update(ctx context.Context, f *models.IntakeForm) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFormRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFormRepository) List(ctx context.Context, filters repositories.FormFilters) ([]*models.IntakeForm, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.IntakeForm), args.Get(1).(int64), args.Error(2)
}

func (m *MockFormRepository) GetActiveByOffering(ctx context.Context, offeringID uint) (*models.IntakeForm, error) {
	args := m.Called(ctx, offeringID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IntakeForm), args.Error(1)
}

func (m *MockFormRepository) HasSessions(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, s *models.IntakeSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id uint) (*models.IntakeSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IntakeSession), args.Error(1)
}

func (m *MockSessionRepository) GetByIDWithForm(ctx context.Context, id uint) (*models.IntakeSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IntakeSession), args.Error(1)
}

func (m *MockSessionRepository) Update(ctx context.Context, s *models.IntakeSession) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) List(ctx context.Context, filters repositories.SessionFilters) ([]*models.IntakeSession, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.IntakeSession), args.Get(1).(int64), args.Error(2)
}

func (m *MockSessionRepository) GetCompletedByForm(ctx context.Context, formID uint) ([]*models.IntakeSession, error) {
	args := m.Called(ctx, formID)
	return args.Get(0).([]*models.IntakeSession), args.Error(1)
}

func (m *MockSessionRepository) UpdateStatus(ctx context.Context, id uint, status models.SessionStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockOfferingRepository is a mock implementation of OfferingRepository
type MockOfferingRepository struct {
	mock.Mock
}

func (m *MockOfferingRepository) Create(ctx context.Context, o *models.ServiceOffering) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOfferingRepository) GetByID(ctx context.Context, id uint) (*models.ServiceOffering, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceOffering), args.Error(1)
}

func (m *MockOfferingRepository) GetBySlug(ctx context.Context, slug string) (*models.ServiceOffering, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ServiceOffering), args.Error(1)
}

func (m *MockOfferingRepository) Update(ctx context.Context, o *models.ServiceOffering) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOfferingRepository) List(ctx context.Context, activeOnly bool) ([]*models.ServiceOffering, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]*models.ServiceOffering), args.Error(1)
}

func (m *MockOfferingRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *uint) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockAppointmentRepository is a mock implementation of AppointmentRepository
type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, a *models.Appointment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Update(ctx context.Context, a *models.Appointment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAppointmentRepository) List(ctx context.Context, filters repositories.AppointmentFilters) ([]*models.Appointment, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Appointment), args.Get(1).(int64), args.Error(2)
}

func (m *MockAppointmentRepository) GetBookedStarts(ctx context.Context, offeringID uint, dayStart, dayEnd time.Time) ([]time.Time, error) {
	args := m.Called(ctx, offeringID, dayStart, dayEnd)
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockAppointmentRepository) ExistsAtSlot(ctx context.Context, offeringID uint, startsAt time.Time) (bool, error) {
	args := m.Called(ctx, offeringID, startsAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockAppointmentRepository) UpdateStatus(ctx context.Context, id uint, status models.AppointmentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockRepository is a mock implementation of the main Repository interface
type MockRepository struct {
	formRepo        *MockFormRepository
	sessionRepo     *MockSessionRepository
	offeringRepo    *MockOfferingRepository
	appointmentRepo *MockAppointmentRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		formRepo:        &MockFormRepository{},
		sessionRepo:     &MockSessionRepository{},
		offeringRepo:    &MockOfferingRepository{},
		appointmentRepo: &MockAppointmentRepository{},
	}
}

func (m *MockRepository) Form() repositories.FormRepository               { return m.formRepo }
func (m *MockRepository) Session() repositories.SessionRepository         { return m.sessionRepo }
func (m *MockRepository) Offering() repositories.OfferingRepository       { return m.offeringRepo }
func (m *MockRepository) Appointment() repositories.AppointmentRepository { return m.appointmentRepo }

// fakeCache is an in-memory CacheService for tests
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = encoded
	return nil
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	encoded, ok := f.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(encoded, dest)
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			delete(f.data, key)
		}
	}
	return nil
}
