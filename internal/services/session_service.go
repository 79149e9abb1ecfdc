package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/careforms/intake-service/internal/events"
	"github.com/careforms/intake-service/internal/form"
	"github.com/careforms/intake-service/internal/models"
	"github.com/careforms/intake-service/internal/repositories"
	"github.com/careforms/intake-service/internal/utils"
	"gorm.io/datatypes"
)

type sessionService struct {
	repo      repositories.Repository
	forms     FormService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewSessionService(repo repositories.Repository, forms FormService, publisher events.EventPublisher, logger *slog.Logger, validator *utils.Validator) SessionService {
	return &sessionService{
		repo:      repo,
		forms:     forms,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== LIFECYCLE =====

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest) (*SessionStateResponse, error) {
	s.logger.Info("Starting intake session", "form_id", req.FormID, "customer_ref", req.CustomerRef)

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	intakeForm, err := s.repo.Form().GetByID(ctx, req.FormID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get intake form: %w", err)
	}
	if !intakeForm.Active {
		return nil, ErrFormNotActive
	}

	session := &models.IntakeSession{
		FormID:      intakeForm.ID,
		FormVersion: intakeForm.Version,
		CustomerRef: req.CustomerRef,
		Answers:     datatypes.JSON("{}"),
		SectionIdx:  0,
	}

	if err := s.repo.Session().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.publishEvent(ctx, events.EventSessionStarted, events.SessionStartedEvent{
		SessionID:   session.ID,
		FormID:      session.FormID,
		FormVersion: session.FormVersion,
		CustomerRef: session.CustomerRef,
		StartedAt:   session.StartedAt,
	})

	s.logger.Info("Intake session started", "session_id", session.ID)
	return s.buildState(ctx, session)
}

func (s *sessionService) GetState(ctx context.Context, id uint) (*SessionStateResponse, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildState(ctx, session)
}

func (s *sessionService) SubmitAnswer(ctx context.Context, id uint, req *SubmitAnswerRequest) (*SessionStateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	session, err := s.getActiveSession(ctx, id)
	if err != nil {
		return nil, err
	}

	questions, err := s.forms.Questions(ctx, session.FormID)
	if err != nil {
		return nil, err
	}

	// Answers are replaced wholesale rather than mutated in place, so the
	// derived progress always reflects one consistent answer map.
	answers := s.decodeAnswers(session)
	next := make(form.Answers, len(answers)+1)
	for k, v := range answers {
		next[k] = v
	}
	if req.Value == nil {
		delete(next, req.QuestionID)
	} else {
		next[req.QuestionID] = req.Value
	}

	progress := form.Derive(questions, next, session.SectionIdx)

	encoded, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	session.Answers = datatypes.JSON(encoded)
	session.SectionIdx = progress.SectionIdx

	if err := s.repo.Session().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	s.publishEvent(ctx, events.EventSessionAnswerSubmitted, events.SessionAnswerSubmittedEvent{
		SessionID:       session.ID,
		FormID:          session.FormID,
		QuestionID:      req.QuestionID,
		SectionIdx:      progress.SectionIdx,
		PercentComplete: progress.PercentComplete,
	})

	return s.stateFrom(session, questions, progress), nil
}

// ===== NAVIGATION =====

func (s *sessionService) Next(ctx context.Context, id uint) (*SessionStateResponse, error) {
	return s.navigate(ctx, id, func(p form.Progress) int { return p.NextIndex() })
}

func (s *sessionService) Prev(ctx context.Context, id uint) (*SessionStateResponse, error) {
	return s.navigate(ctx, id, func(p form.Progress) int { return p.PrevIndex() })
}

func (s *sessionService) navigate(ctx context.Context, id uint, step func(form.Progress) int) (*SessionStateResponse, error) {
	session, err := s.getActiveSession(ctx, id)
	if err != nil {
		return nil, err
	}

	questions, err := s.forms.Questions(ctx, session.FormID)
	if err != nil {
		return nil, err
	}

	progress := form.Derive(questions, s.decodeAnswers(session), session.SectionIdx)
	target := step(progress)

	if target != session.SectionIdx {
		session.SectionIdx = target
		if err := s.repo.Session().Update(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to update session: %w", err)
		}
	}

	progress = form.Derive(questions, s.decodeAnswers(session), session.SectionIdx)
	return s.stateFrom(session, questions, progress), nil
}

// ===== SUBMIT / ABANDON =====

func (s *sessionService) Submit(ctx context.Context, id uint) (*SessionStateResponse, error) {
	s.logger.Info("Submitting intake session", "session_id", id)

	session, err := s.getActiveSession(ctx, id)
	if err != nil {
		return nil, err
	}

	questions, err := s.forms.Questions(ctx, session.FormID)
	if err != nil {
		return nil, err
	}

	answers := s.decodeAnswers(session)
	progress := form.Derive(questions, answers, session.SectionIdx)

	if !progress.CanSubmit() {
		return nil, NewBusinessRuleError("session_complete", ErrSessionIncomplete.Error(), map[string]interface{}{
			"required_unanswered": progress.RequiredUnanswered,
		})
	}

	now := time.Now()
	session.Status = models.SessionCompleted
	session.CompletedAt = &now

	if err := s.repo.Session().Update(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	answered := 0
	for _, v := range answers {
		if !form.AnswerEmpty(v) {
			answered++
		}
	}

	s.publishEvent(ctx, events.EventSessionCompleted, events.SessionCompletedEvent{
		SessionID:   session.ID,
		FormID:      session.FormID,
		CustomerRef: session.CustomerRef,
		CompletedAt: now,
		Answered:    answered,
	})

	s.logger.Info("Intake session completed", "session_id", id, "answered", answered)
	return s.stateFrom(session, questions, progress), nil
}

func (s *sessionService) Abandon(ctx context.Context, id uint) error {
	session, err := s.getActiveSession(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Session().UpdateStatus(ctx, id, models.SessionAbandoned); err != nil {
		return fmt.Errorf("failed to abandon session: %w", err)
	}

	questions, err := s.forms.Questions(ctx, session.FormID)
	percent := 0
	if err == nil {
		percent = form.Derive(questions, s.decodeAnswers(session), session.SectionIdx).PercentComplete
	}

	s.publishEvent(ctx, events.EventSessionAbandoned, events.SessionAbandonedEvent{
		SessionID:       session.ID,
		FormID:          session.FormID,
		PercentComplete: percent,
	})

	s.logger.Info("Intake session abandoned", "session_id", id)
	return nil
}

func (s *sessionService) List(ctx context.Context, filters repositories.SessionFilters) (*SessionListResponse, error) {
	sessions, total, err := s.repo.Session().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return &SessionListResponse{
		Sessions: sessions,
		Total:    total,
		Limit:    filters.Limit,
		Offset:   filters.Offset,
	}, nil
}

// ===== HELPERS =====

func (s *sessionService) getSession(ctx context.Context, id uint) (*models.IntakeSession, error) {
	session, err := s.repo.Session().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (s *sessionService) getActiveSession(ctx context.Context, id uint) (*models.IntakeSession, error) {
	session, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionInProgress {
		if session.Status == models.SessionCompleted {
			return nil, ErrSessionAlreadySubmitted
		}
		return nil, ErrSessionNotActive
	}
	return session, nil
}

// decodeAnswers tolerates a corrupt answers column; a session with
// unreadable answers behaves as if nothing was answered yet.
func (s *sessionService) decodeAnswers(session *models.IntakeSession) form.Answers {
	answers := form.Answers{}
	if len(session.Answers) == 0 {
		return answers
	}
	if err := json.Unmarshal(session.Answers, &answers); err != nil {
		s.logger.Warn("Failed to decode session answers", "session_id", session.ID, "error", err)
		return form.Answers{}
	}
	return answers
}

func (s *sessionService) buildState(ctx context.Context, session *models.IntakeSession) (*SessionStateResponse, error) {
	questions, err := s.forms.Questions(ctx, session.FormID)
	if err != nil {
		return nil, err
	}
	progress := form.Derive(questions, s.decodeAnswers(session), session.SectionIdx)
	return s.stateFrom(session, questions, progress), nil
}

func (s *sessionService) stateFrom(session *models.IntakeSession, questions []form.Question, progress form.Progress) *SessionStateResponse {
	return &SessionStateResponse{
		Session:            session,
		Questions:          progress.Visible,
		Sections:           progress.Sections,
		SectionIdx:         progress.SectionIdx,
		RequiredUnanswered: progress.RequiredUnanswered,
		PercentComplete:    progress.PercentComplete,
		CanSubmit:          progress.CanSubmit(),
	}
}

func (s *sessionService) publishEvent(ctx context.Context, eventType events.EventType, payload interface{}) {
	event := events.NewIntakeEvent(eventType, payload)
	if err := s.publisher.PublishIntakeEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish session event", "type", string(eventType), "error", err)
	}
}
