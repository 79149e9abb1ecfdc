package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/careforms/intake-service/internal/events"
	"github.com/careforms/intake-service/internal/models"
	"github.com/careforms/intake-service/internal/repositories"
	"github.com/careforms/intake-service/internal/scheduling"
	"github.com/careforms/intake-service/internal/utils"
	"gorm.io/datatypes"
)

type bookingService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewBookingService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *utils.Validator) BookingService {
	return &bookingService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== OFFERINGS =====

func (s *bookingService) CreateOffering(ctx context.Context, req *CreateOfferingRequest) (*models.ServiceOffering, error) {
	s.logger.Info("Creating service offering", "slug", req.Slug)

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.Offering().ExistsBySlug(ctx, req.Slug, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check offering slug: %w", err)
	}
	if exists {
		return nil, ErrOfferingDuplicateSlug
	}

	offering := &models.ServiceOffering{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}

	if req.Schedule != nil {
		encoded, err := json.Marshal(req.Schedule)
		if err != nil {
			return nil, fmt.Errorf("failed to encode schedule: %w", err)
		}
		offering.Schedule = datatypes.JSON(encoded)
	}

	if err := s.repo.Offering().Create(ctx, offering); err != nil {
		return nil, fmt.Errorf("failed to create offering: %w", err)
	}

	return offering, nil
}

func (s *bookingService) GetOffering(ctx context.Context, id uint) (*models.ServiceOffering, error) {
	offering, err := s.repo.Offering().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrOfferingNotFound
		}
		return nil, fmt.Errorf("failed to get offering: %w", err)
	}
	return offering, nil
}

func (s *bookingService) GetOfferingBySlug(ctx context.Context, slug string) (*models.ServiceOffering, error) {
	offering, err := s.repo.Offering().GetBySlug(ctx, slug)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrOfferingNotFound
		}
		return nil, fmt.Errorf("failed to get offering: %w", err)
	}
	return offering, nil
}

func (s *bookingService) UpdateOffering(ctx context.Context, id uint, req *UpdateOfferingRequest) (*models.ServiceOffering, error) {
	s.logger.Info("Updating service offering", "offering_id", id)

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	offering, err := s.GetOffering(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		offering.Name = *req.Name
	}
	if req.Description != nil {
		offering.Description = req.Description
	}
	if req.Active != nil {
		offering.Active = *req.Active
	}
	if req.Schedule != nil {
		encoded, err := json.Marshal(req.Schedule)
		if err != nil {
			return nil, fmt.Errorf("failed to encode schedule: %w", err)
		}
		offering.Schedule = datatypes.JSON(encoded)
	}

	if err := s.repo.Offering().Update(ctx, offering); err != nil {
		return nil, fmt.Errorf("failed to update offering: %w", err)
	}

	return offering, nil
}

func (s *bookingService) ListOfferings(ctx context.Context, activeOnly bool) ([]*models.ServiceOffering, error) {
	offerings, err := s.repo.Offering().List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list offerings: %w", err)
	}
	return offerings, nil
}

// ===== SLOTS =====

func (s *bookingService) Slots(ctx context.Context, offeringID uint, day time.Time) ([]scheduling.Slot, error) {
	offering, err := s.GetOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	if !offering.Active {
		return nil, ErrOfferingNotActive
	}

	sched, err := s.scheduleFor(offering)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	booked, err := s.repo.Appointment().GetBookedStarts(ctx, offeringID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get booked slots: %w", err)
	}

	return scheduling.BuildSlots(dayStart, sched, booked), nil
}

// ===== APPOINTMENTS =====

func (s *bookingService) Book(ctx context.Context, req *BookAppointmentRequest) (*models.Appointment, error) {
	s.logger.Info("Booking appointment", "session_id", req.SessionID, "offering_id", req.OfferingID, "starts_at", req.StartsAt)

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	// Booking requires a completed intake; the risk assessment must be on
	// file before a slot is held.
	session, err := s.repo.Session().GetByID(ctx, req.SessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.Status != models.SessionCompleted {
		return nil, NewBusinessRuleError("intake_complete", "intake session must be completed before booking", map[string]interface{}{
			"session_id":     session.ID,
			"session_status": session.Status,
		})
	}

	slot, err := s.matchSlot(ctx, req.OfferingID, req.StartsAt)
	if err != nil {
		return nil, err
	}

	appointment := &models.Appointment{
		SessionID:  req.SessionID,
		OfferingID: req.OfferingID,
		StartsAt:   slot.Start,
		EndsAt:     slot.End,
	}

	if err := s.repo.Appointment().Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	offering, _ := s.repo.Offering().GetByID(ctx, req.OfferingID)
	slug := ""
	if offering != nil {
		slug = offering.Slug
	}

	s.publishEvent(ctx, events.EventAppointmentBooked, events.AppointmentBookedEvent{
		AppointmentID: appointment.ID,
		SessionID:     appointment.SessionID,
		OfferingID:    appointment.OfferingID,
		OfferingSlug:  slug,
		StartsAt:      appointment.StartsAt,
		EndsAt:        appointment.EndsAt,
	})

	s.logger.Info("Appointment booked", "appointment_id", appointment.ID)
	return appointment, nil
}

func (s *bookingService) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	appointment, err := s.repo.Appointment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appointment, nil
}

func (s *bookingService) Cancel(ctx context.Context, id uint) error {
	s.logger.Info("Cancelling appointment", "appointment_id", id)

	appointment, err := s.repo.Appointment().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("failed to get appointment: %w", err)
	}
	if appointment.Status == models.AppointmentCancelled {
		return ErrAppointmentCancelled
	}

	if err := s.repo.Appointment().UpdateStatus(ctx, id, models.AppointmentCancelled); err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}

	s.publishEvent(ctx, events.EventAppointmentCancelled, events.AppointmentCancelledEvent{
		AppointmentID: appointment.ID,
		SessionID:     appointment.SessionID,
		CancelledAt:   time.Now(),
	})

	return nil
}

func (s *bookingService) ListAppointments(ctx context.Context, filters repositories.AppointmentFilters) (*AppointmentListResponse, error) {
	appointments, total, err := s.repo.Appointment().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	return &AppointmentListResponse{
		Appointments: appointments,
		Total:        total,
		Limit:        filters.Limit,
		Offset:       filters.Offset,
	}, nil
}

// ===== HELPERS =====

func (s *bookingService) scheduleFor(offering *models.ServiceOffering) (scheduling.Schedule, error) {
	if len(offering.Schedule) == 0 {
		return scheduling.Schedule{}, ErrOfferingNoSchedule
	}

	var config models.ScheduleConfig
	if err := json.Unmarshal(offering.Schedule, &config); err != nil {
		return scheduling.Schedule{}, fmt.Errorf("failed to decode offering schedule: %w", err)
	}
	if config.DurationMinutes <= 0 {
		return scheduling.Schedule{}, ErrOfferingNoSchedule
	}

	return config.ToSchedule(), nil
}

// matchSlot checks the requested start against the offering's generated
// slots for that day. Starts that fall outside working hours and starts
// whose slot is taken fail with distinct errors.
func (s *bookingService) matchSlot(ctx context.Context, offeringID uint, startsAt time.Time) (scheduling.Slot, error) {
	slots, err := s.Slots(ctx, offeringID, startsAt)
	if err != nil {
		return scheduling.Slot{}, err
	}

	for _, slot := range slots {
		if slot.Start.Equal(startsAt) {
			if !slot.Available {
				return scheduling.Slot{}, ErrSlotUnavailable
			}
			return slot, nil
		}
	}
	return scheduling.Slot{}, ErrSlotOutsideHours
}

func (s *bookingService) publishEvent(ctx context.Context, eventType events.EventType, payload interface{}) {
	event := events.NewIntakeEvent(eventType, payload)
	if err := s.publisher.PublishIntakeEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish booking event", "type", string(eventType), "error", err)
	}
}
