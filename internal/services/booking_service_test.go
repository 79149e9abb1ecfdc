package services

import (
	"context"
	"testing"
	"time"

	"github.com/careforms/intake-service/internal/events"
	"github.com/careforms/intake-service/internal/models"
	"github.com/careforms/intake-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

const mondaySchedule = `{
	"hours": {"monday": [{"start": "09:00", "end": "12:00"}]},
	"duration_minutes": 30
}`

// 2025-06-02 is a Monday
var bookingDay = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

type bookingFixture struct {
	svc       BookingService
	repo      *MockRepository
	publisher *events.MockEventPublisher
}

func newBookingFixture() *bookingFixture {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	return &bookingFixture{
		svc:       NewBookingService(repo, publisher, testLogger(), utils.NewValidator()),
		repo:      repo,
		publisher: publisher,
	}
}

func (f *bookingFixture) withOffering(schedule string) {
	offering := &models.ServiceOffering{
		ID:     1,
		Slug:   "travel-clinic",
		Name:   "Travel Clinic",
		Active: true,
	}
	if schedule != "" {
		offering.Schedule = datatypes.JSON(schedule)
	}
	f.repo.offeringRepo.On("GetByID", mock.Anything, uint(1)).Return(offering, nil)
}

func TestBookingService_CreateOffering(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.offeringRepo.On("ExistsBySlug", mock.Anything, "flu-jab", (*uint)(nil)).Return(false, nil)
		f.repo.offeringRepo.On("Create", mock.Anything, mock.MatchedBy(func(o *models.ServiceOffering) bool {
			return o.Slug == "flu-jab" && o.Active
		})).Return(nil)

		offering, err := f.svc.CreateOffering(context.Background(), &CreateOfferingRequest{
			Slug: "flu-jab",
			Name: "Flu Vaccination",
		})
		require.NoError(t, err)
		assert.Equal(t, "flu-jab", offering.Slug)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.offeringRepo.On("ExistsBySlug", mock.Anything, "flu-jab", (*uint)(nil)).Return(true, nil)

		_, err := f.svc.CreateOffering(context.Background(), &CreateOfferingRequest{
			Slug: "flu-jab",
			Name: "Flu Vaccination",
		})
		require.ErrorIs(t, err, ErrOfferingDuplicateSlug)
		assert.True(t, IsConflict(err))
	})

	t.Run("invalid slug", func(t *testing.T) {
		f := newBookingFixture()

		_, err := f.svc.CreateOffering(context.Background(), &CreateOfferingRequest{
			Slug: "Flu Jab!",
			Name: "Flu Vaccination",
		})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})
}

func TestBookingService_Slots(t *testing.T) {
	t.Run("builds day slots with booked starts marked", func(t *testing.T) {
		f := newBookingFixture()
		f.withOffering(mondaySchedule)
		f.repo.appointmentRepo.On("GetBookedStarts", mock.Anything, uint(1), bookingDay, bookingDay.AddDate(0, 0, 1)).
			Return([]time.Time{bookingDay.Add(9*time.Hour + 30*time.Minute)}, nil)

		slots, err := f.svc.Slots(context.Background(), 1, bookingDay)
		require.NoError(t, err)

		require.Len(t, slots, 6)
		assert.True(t, slots[0].Available)
		assert.False(t, slots[1].Available)
		assert.Equal(t, bookingDay.Add(9*time.Hour+30*time.Minute), slots[1].Start)
	})

	t.Run("offering without schedule", func(t *testing.T) {
		f := newBookingFixture()
		f.withOffering("")

		_, err := f.svc.Slots(context.Background(), 1, bookingDay)
		require.ErrorIs(t, err, ErrOfferingNoSchedule)
	})
}

func TestBookingService_Book(t *testing.T) {
	completedSession := func() *models.IntakeSession {
		return &models.IntakeSession{ID: 20, FormID: 1, Status: models.SessionCompleted}
	}
	tenAM := bookingDay.Add(10 * time.Hour)

	t.Run("successful booking", func(t *testing.T) {
		f := newBookingFixture()
		f.withOffering(mondaySchedule)
		f.repo.sessionRepo.On("GetByID", mock.Anything, uint(20)).Return(completedSession(), nil)
		f.repo.appointmentRepo.On("GetBookedStarts", mock.Anything, uint(1), mock.Anything, mock.Anything).
			Return([]time.Time{}, nil)
		f.repo.appointmentRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Appointment) bool {
			return a.SessionID == 20 && a.StartsAt.Equal(tenAM) && a.EndsAt.Equal(tenAM.Add(30*time.Minute))
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Appointment).ID = 7
		}).Return(nil)

		appointment, err := f.svc.Book(context.Background(), &BookAppointmentRequest{
			SessionID:  20,
			OfferingID: 1,
			StartsAt:   tenAM,
		})
		require.NoError(t, err)
		assert.Equal(t, uint(7), appointment.ID)

		published := f.publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventAppointmentBooked, published[0].Type)
		payload := published[0].Data.(events.AppointmentBookedEvent)
		assert.Equal(t, "travel-clinic", payload.OfferingSlug)
	})

	t.Run("taken slot", func(t *testing.T) {
		f := newBookingFixture()
		f.withOffering(mondaySchedule)
		f.repo.sessionRepo.On("GetByID", mock.Anything, uint(20)).Return(completedSession(), nil)
		f.repo.appointmentRepo.On("GetBookedStarts", mock.Anything, uint(1), mock.Anything, mock.Anything).
			Return([]time.Time{tenAM}, nil)

		_, err := f.svc.Book(context.Background(), &BookAppointmentRequest{
			SessionID:  20,
			OfferingID: 1,
			StartsAt:   tenAM,
		})
		require.ErrorIs(t, err, ErrSlotUnavailable)
	})

	t.Run("start outside working hours", func(t *testing.T) {
		f := newBookingFixture()
		f.withOffering(mondaySchedule)
		f.repo.sessionRepo.On("GetByID", mock.Anything, uint(20)).Return(completedSession(), nil)
		f.repo.appointmentRepo.On("GetBookedStarts", mock.Anything, uint(1), mock.Anything, mock.Anything).
			Return([]time.Time{}, nil)

		_, err := f.svc.Book(context.Background(), &BookAppointmentRequest{
			SessionID:  20,
			OfferingID: 1,
			StartsAt:   bookingDay.Add(15 * time.Hour),
		})
		require.ErrorIs(t, err, ErrSlotOutsideHours)
	})

	t.Run("intake not completed", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.sessionRepo.On("GetByID", mock.Anything, uint(20)).
			Return(&models.IntakeSession{ID: 20, Status: models.SessionInProgress}, nil)

		_, err := f.svc.Book(context.Background(), &BookAppointmentRequest{
			SessionID:  20,
			OfferingID: 1,
			StartsAt:   tenAM,
		})
		require.Error(t, err)
		assert.True(t, IsBusinessRule(err))
	})
}

func TestBookingService_Cancel(t *testing.T) {
	t.Run("successful cancel", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.appointmentRepo.On("GetByID", mock.Anything, uint(7)).
			Return(&models.Appointment{ID: 7, SessionID: 20, Status: models.AppointmentBooked}, nil)
		f.repo.appointmentRepo.On("UpdateStatus", mock.Anything, uint(7), models.AppointmentCancelled).Return(nil)

		require.NoError(t, f.svc.Cancel(context.Background(), 7))

		published := f.publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventAppointmentCancelled, published[0].Type)
	})

	t.Run("already cancelled", func(t *testing.T) {
		f := newBookingFixture()
		f.repo.appointmentRepo.On("GetByID", mock.Anything, uint(7)).
			Return(&models.Appointment{ID: 7, Status: models.AppointmentCancelled}, nil)

		err := f.svc.Cancel(context.Background(), 7)
		require.ErrorIs(t, err, ErrAppointmentCancelled)
	})
}
