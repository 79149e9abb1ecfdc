package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/careforms/intake-service/internal/cache"
	"github.com/careforms/intake-service/internal/events"
	"github.com/careforms/intake-service/internal/form"
	"github.com/careforms/intake-service/internal/models"
	"github.com/careforms/intake-service/internal/repositories"
	"github.com/careforms/intake-service/internal/utils"
	"gorm.io/datatypes"
)

const questionCacheTTL = 24 * time.Hour

type formService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewFormService(repo repositories.Repository, cacheService cache.CacheService, publisher events.EventPublisher, logger *slog.Logger, validator *utils.Validator) FormService {
	return &formService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *formService) Create(ctx context.Context, req *CreateFormRequest) (*models.IntakeForm, error) {
	s.logger.Info("Creating intake form", "offering_id", req.OfferingID, "title", req.Title)

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	// The offering must exist before a form can target it
	if _, err := s.repo.Offering().GetByID(ctx, req.OfferingID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrOfferingNotFound
		}
		return nil, fmt.Errorf("failed to get offering: %w", err)
	}

	// Schemas arrive in loose shapes from the backoffice; the only hard
	// requirement is that normalization finds at least one question.
	questions := form.Normalize([]byte(req.Schema))
	if len(questions) == 0 {
		return nil, ErrFormEmptySchema
	}

	intakeForm := &models.IntakeForm{
		OfferingID: req.OfferingID,
		Title:      req.Title,
		Schema:     datatypes.JSON(req.Schema),
		Active:     true,
	}

	if err := s.repo.Form().Create(ctx, intakeForm); err != nil {
		return nil, fmt.Errorf("failed to create intake form: %w", err)
	}

	intakeForm.QuestionCount = len(questions)

	s.publishFormPublished(ctx, intakeForm)

	s.logger.Info("Intake form created", "form_id", intakeForm.ID, "version", intakeForm.Version, "questions", len(questions))
	return intakeForm, nil
}

func (s *formService) GetByID(ctx context.Context, id uint) (*models.IntakeForm, error) {
	intakeForm, err := s.repo.Form().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get intake form: %w", err)
	}

	questions, err := s.Questions(ctx, id)
	if err == nil {
		intakeForm.QuestionCount = len(questions)
	}

	return intakeForm, nil
}

func (s *formService) Update(ctx context.Context, id uint, req *UpdateFormRequest) (*models.IntakeForm, error) {
	s.logger.Info("Updating intake form", "form_id", id)

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	intakeForm, err := s.repo.Form().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get intake form: %w", err)
	}

	if req.Title != nil {
		intakeForm.Title = *req.Title
	}
	if req.Active != nil {
		intakeForm.Active = *req.Active
	}
	if len(req.Schema) > 0 {
		questions := form.Normalize([]byte(req.Schema))
		if len(questions) == 0 {
			return nil, ErrFormEmptySchema
		}
		intakeForm.Schema = datatypes.JSON(req.Schema)
	}

	// Update bumps the version, so in-flight sessions keep their snapshot
	if err := s.repo.Form().Update(ctx, intakeForm); err != nil {
		return nil, fmt.Errorf("failed to update intake form: %w", err)
	}

	s.invalidateQuestionCache(ctx, id)
	s.publishFormPublished(ctx, intakeForm)

	s.logger.Info("Intake form updated", "form_id", id, "version", intakeForm.Version)
	return intakeForm, nil
}

func (s *formService) Delete(ctx context.Context, id uint) error {
	s.logger.Info("Deleting intake form", "form_id", id)

	hasSessions, err := s.repo.Form().HasSessions(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check form sessions: %w", err)
	}
	if hasSessions {
		return ErrFormNotDeletable
	}

	if err := s.repo.Form().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrFormNotFound
		}
		return fmt.Errorf("failed to delete intake form: %w", err)
	}

	s.invalidateQuestionCache(ctx, id)
	return nil
}

func (s *formService) List(ctx context.Context, filters repositories.FormFilters) (*FormListResponse, error) {
	forms, total, err := s.repo.Form().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list intake forms: %w", err)
	}

	return &FormListResponse{
		Forms:  forms,
		Total:  total,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	}, nil
}

// ===== QUESTION NORMALIZATION =====

func (s *formService) Questions(ctx context.Context, id uint) ([]form.Question, error) {
	intakeForm, err := s.repo.Form().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get intake form: %w", err)
	}

	return s.questionsForForm(ctx, intakeForm)
}

// questionsForForm normalizes the stored schema, going through the cache
// keyed by form version. Normalization is deterministic, so a version's
// entry never goes stale.
func (s *formService) questionsForForm(ctx context.Context, intakeForm *models.IntakeForm) ([]form.Question, error) {
	key := questionCacheKey(intakeForm.ID, intakeForm.Version)

	var cached []form.Question
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Question cache read failed", "form_id", intakeForm.ID, "error", err)
	}

	questions := form.Normalize([]byte(intakeForm.Schema))

	if err := s.cache.Set(ctx, key, questions, questionCacheTTL); err != nil {
		s.logger.Warn("Question cache write failed", "form_id", intakeForm.ID, "error", err)
	}

	return questions, nil
}

func (s *formService) invalidateQuestionCache(ctx context.Context, formID uint) {
	pattern := fmt.Sprintf("intake:form:%d:*", formID)
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		s.logger.Warn("Question cache invalidation failed", "form_id", formID, "error", err)
	}
}

func questionCacheKey(formID uint, version int) string {
	return fmt.Sprintf("intake:form:%d:v%d:questions", formID, version)
}

func (s *formService) publishFormPublished(ctx context.Context, intakeForm *models.IntakeForm) {
	event := events.NewIntakeEvent(events.EventFormPublished, events.FormPublishedEvent{
		FormID:     intakeForm.ID,
		OfferingID: intakeForm.OfferingID,
		Version:    intakeForm.Version,
		Title:      intakeForm.Title,
	})
	if err := s.publisher.PublishIntakeEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish form event", "form_id", intakeForm.ID, "error", err)
	}
}
