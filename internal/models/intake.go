package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IntakeForm is one version of a service's risk-assessment questionnaire.
// The raw schema is stored exactly as the clinical backoffice supplies it;
// normalization into a question list happens at read time in the form engine,
// so loosely shaped schemas never block a save.
type IntakeForm struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	OfferingID uint           `json:"offering_id" gorm:"not null;index"`
	Title      string         `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Schema     datatypes.JSON `json:"schema" gorm:"type:jsonb"`
	Version    int            `json:"version" gorm:"default:1"`
	Active     bool           `json:"active" gorm:"default:true;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Offering ServiceOffering `json:"offering" gorm:"foreignKey:OfferingID"`

	// Computed fields (not stored)
	QuestionCount int `json:"question_count" gorm:"-"`
}

func (IntakeForm) TableName() string {
	return "intake_forms"
}

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// IntakeSession is one customer's pass through an intake form: the answer
// map as it grows, the section the customer is looking at, and the terminal
// status once they submit or walk away. Answers are stored keyed by question
// id, mirroring the in-memory engine representation.
type IntakeSession struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	FormID      uint           `json:"form_id" gorm:"not null;index"`
	FormVersion int            `json:"form_version" gorm:"not null"`
	CustomerRef string         `json:"customer_ref" gorm:"size:255;index" validate:"required,max=255"`
	Answers     datatypes.JSON `json:"answers" gorm:"type:jsonb"`
	SectionIdx  int            `json:"section_idx" gorm:"default:0"`
	Status      SessionStatus  `json:"status" gorm:"default:in_progress;index" validate:"omitempty,oneof=in_progress completed abandoned"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Form IntakeForm `json:"form" gorm:"foreignKey:FormID"`
}

func (IntakeSession) TableName() string {
	return "intake_sessions"
}
