package models

import (
	"time"

	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	AppointmentBooked    AppointmentStatus = "booked"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
)

// Appointment is a booked slot for a completed intake session.
type Appointment struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	SessionID  uint              `json:"session_id" gorm:"not null;index"`
	OfferingID uint              `json:"offering_id" gorm:"not null;index"`
	StartsAt   time.Time         `json:"starts_at" gorm:"not null;index"`
	EndsAt     time.Time         `json:"ends_at" gorm:"not null"`
	Status     AppointmentStatus `json:"status" gorm:"default:booked;index" validate:"omitempty,oneof=booked cancelled completed"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Session  IntakeSession   `json:"session" gorm:"foreignKey:SessionID"`
	Offering ServiceOffering `json:"offering" gorm:"foreignKey:OfferingID"`
}

func (Appointment) TableName() string {
	return "appointments"
}
