package services

import (
	"context"
	"testing"

	"github.com/careforms/intake-service/internal/events"
	"github.com/careforms/intake-service/internal/models"
	"github.com/careforms/intake-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Two sections; meds_list only appears after answering meds with "yes".
const intakeSchema = `[
	{"type": "section", "label": "About you"},
	{"id": "name", "type": "text", "label": "Full name", "required": true},
	{"type": "section", "label": "Health"},
	{"id": "meds", "type": "radio", "label": "Taking medication?", "options": ["yes", "no"], "required": true},
	{"id": "meds_list", "type": "textarea", "label": "Which medications?", "required": true,
		"showIf": {"field": "meds", "equals": "yes"}}
]`

type sessionFixture struct {
	svc       SessionService
	repo      *MockRepository
	publisher *events.MockEventPublisher
}

func newSessionFixture() *sessionFixture {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	validator := utils.NewValidator()
	forms := NewFormService(repo, newFakeCache(), publisher, testLogger(), validator)
	return &sessionFixture{
		svc:       NewSessionService(repo, forms, publisher, testLogger(), validator),
		repo:      repo,
		publisher: publisher,
	}
}

func (f *sessionFixture) withForm(active bool) {
	f.repo.formRepo.On("GetByID", mock.Anything, uint(1)).Return(&models.IntakeForm{
		ID:      1,
		Version: 2,
		Schema:  datatypes.JSON(intakeSchema),
		Active:  active,
	}, nil)
}

func (f *sessionFixture) withSession(session *models.IntakeSession) {
	f.repo.sessionRepo.On("GetByID", mock.Anything, session.ID).Return(session, nil)
}

func inProgressSession(answers string) *models.IntakeSession {
	return &models.IntakeSession{
		ID:          20,
		FormID:      1,
		FormVersion: 2,
		CustomerRef: "cust-42",
		Answers:     datatypes.JSON(answers),
		SectionIdx:  0,
		Status:      models.SessionInProgress,
	}
}

func TestSessionService_Start(t *testing.T) {
	t.Run("creates session on active form", func(t *testing.T) {
		f := newSessionFixture()
		f.withForm(true)
		f.repo.sessionRepo.On("Create", mock.Anything, mock.MatchedBy(func(s *models.IntakeSession) bool {
			return s.FormID == 1 && s.FormVersion == 2 && s.CustomerRef == "cust-42"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.IntakeSession).ID = 20
			args.Get(1).(*models.IntakeSession).Status = models.SessionInProgress
		}).Return(nil)

		state, err := f.svc.Start(context.Background(), &StartSessionRequest{FormID: 1, CustomerRef: "cust-42"})
		require.NoError(t, err)

		assert.Equal(t, uint(20), state.Session.ID)
		// meds_list is hidden until meds is answered "yes"
		require.Len(t, state.Questions, 2)
		assert.Equal(t, []string{"name", "meds"}, state.RequiredUnanswered)
		assert.Equal(t, 0, state.PercentComplete)
		assert.False(t, state.CanSubmit)

		published := f.publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventSessionStarted, published[0].Type)
	})

	t.Run("rejects inactive form", func(t *testing.T) {
		f := newSessionFixture()
		f.withForm(false)

		_, err := f.svc.Start(context.Background(), &StartSessionRequest{FormID: 1, CustomerRef: "cust-42"})
		require.ErrorIs(t, err, ErrFormNotActive)
	})

	t.Run("rejects missing form", func(t *testing.T) {
		f := newSessionFixture()
		f.repo.formRepo.On("GetByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.Start(context.Background(), &StartSessionRequest{FormID: 1, CustomerRef: "cust-42"})
		require.ErrorIs(t, err, ErrFormNotFound)
	})
}

func TestSessionService_SubmitAnswer(t *testing.T) {
	t.Run("records answer and updates progress", func(t *testing.T) {
		f := newSessionFixture()
		f.withForm(true)
		session := inProgressSession(`{}`)
		f.withSession(session)
		f.repo.sessionRepo.On("Update", mock.Anything, session).Return(nil)

		state, err := f.svc.SubmitAnswer(context.Background(), 20, &SubmitAnswerRequest{
			QuestionID: "name",
			Value:      "Ada",
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"meds"}, state.RequiredUnanswered)
		assert.Equal(t, 50, state.PercentComplete)

		published := f.publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventSessionAnswerSubmitted, published[0].Type)
	})

	t.Run("answer reveals conditional question", func(t *testing.T) {
		f := newSessionFixture()
		f.withForm(true)
		session := inProgressSession(`{"name": "Ada"}`)
		f.withSession(session)
		f.repo.sessionRepo.On("Update", mock.Anything, session).Return(nil)

		state, err := f.svc.SubmitAnswer(context.Background(), 20, &SubmitAnswerRequest{
			QuestionID: "meds",
			Value:      "yes",
		})
		require.NoError(t, err)

		require.Len(t, state.Questions, 3)
		assert.Equal(t, []string{"meds_list"}, state.RequiredUnanswered)
		assert.False(t, state.CanSubmit)
	})

	t.Run("rejects completed session", func(t *testing.T) {
		f := newSessionFixture()
		session := inProgressSession(`{}`)
		session.Status = models.SessionCompleted
		f.withSession(session)

		_, err := f.svc.SubmitAnswer(context.Background(), 20, &SubmitAnswerRequest{
			QuestionID: "name",
			Value:      "Ada",
		})
		require.ErrorIs(t, err, ErrSessionAlreadySubmitted)
		assert.True(t, IsConflict(err))
	})
}

func TestSessionService_Navigation(t *testing.T) {
	t.Run("next blocked while section incomplete", func(t *testing.T) {
		f := newSessionFixture()
		f.withForm(true)
		session := inProgressSession(`{}`)
		f.withSession(session)

		state, err := f.svc.Next(context.Background(), 20)
		require.NoError(t, err)
		assert.Equal(t, 0, state.SectionIdx)
	})

	t.Run("next advances once section answered", func(t *testing.T) {
		f := newSessionFixture()
		f.withForm(true)
		session := inProgressSession(`{"name": "Ada"}`)
		f.withSession(session)
		f.repo.sessionRepo.On("Update", mock.Anything, session).Return(nil)

		state, err := f.svc.Next(context.Background(), 20)
		require.NoError(t, err)
		assert.Equal(t, 1, state.SectionIdx)
	})

	t.Run("prev always allowed", func(t *testing.T) {
		f := newSessionFixture()
		f.withForm(true)
		session := inProgressSession(`{}`)
		session.SectionIdx = 1
		f.withSession(session)
		f.repo.sessionRepo.On("Update", mock.Anything, session).Return(nil)

		state, err := f.svc.Prev(context.Background(), 20)
		require.NoError(t, err)
		assert.Equal(t, 0, state.SectionIdx)
	})
}

func TestSessionService_Submit(t *testing.T) {
	t.Run("incomplete session reports unanswered questions", func(t *testing.T) {
		f := newSessionFixture()
		f.withForm(true)
		session := inProgressSession(`{"name": "Ada", "meds": "yes"}`)
		f.withSession(session)

		_, err := f.svc.Submit(context.Background(), 20)
		require.Error(t, err)
		require.True(t, IsBusinessRule(err))

		var bre *BusinessRuleError
		require.ErrorAs(t, err, &bre)
		assert.Equal(t, []string{"meds_list"}, bre.Context["required_unanswered"])
	})

	t.Run("complete session transitions to completed", func(t *testing.T) {
		f := newSessionFixture()
		f.withForm(true)
		session := inProgressSession(`{"name": "Ada", "meds": "no"}`)
		f.withSession(session)
		f.repo.sessionRepo.On("Update", mock.Anything, session).Return(nil)

		state, err := f.svc.Submit(context.Background(), 20)
		require.NoError(t, err)

		assert.Equal(t, models.SessionCompleted, state.Session.Status)
		require.NotNil(t, state.Session.CompletedAt)
		assert.Equal(t, 100, state.PercentComplete)

		published := f.publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventSessionCompleted, published[0].Type)
	})
}

func TestSessionService_Abandon(t *testing.T) {
	f := newSessionFixture()
	f.withForm(true)
	session := inProgressSession(`{"name": "Ada"}`)
	f.withSession(session)
	f.repo.sessionRepo.On("UpdateStatus", mock.Anything, uint(20), models.SessionAbandoned).Return(nil)

	require.NoError(t, f.svc.Abandon(context.Background(), 20))

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSessionAbandoned, published[0].Type)
	payload := published[0].Data.(events.SessionAbandonedEvent)
	assert.Equal(t, 50, payload.PercentComplete)
}
