package models

import (
	"strings"
	"time"

	"github.com/careforms/intake-service/internal/scheduling"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ServiceOffering is a bookable pharmacy service (travel vaccination, flu
// jab, weight management, ...) with its appointment schedule configuration.
type ServiceOffering struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;not null;size:100" validate:"required,service_slug"`
	Name        string         `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string        `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Schedule    datatypes.JSON `json:"schedule" gorm:"type:jsonb"` // ScheduleConfig
	Active      bool           `json:"active" gorm:"default:true;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (ServiceOffering) TableName() string {
	return "service_offerings"
}

// ScheduleConfig is the JSON shape of an offering's Schedule column. Times
// are "HH:MM" strings and durations are minutes, which keeps the stored
// config editable by the backoffice.
type ScheduleConfig struct {
	Hours           map[string][]scheduling.Window `json:"hours"` // keyed by lowercase weekday name
	Overrides       scheduling.Overrides           `json:"overrides,omitempty"`
	Breaks          []scheduling.Window            `json:"breaks,omitempty"`
	DurationMinutes int                            `json:"duration_minutes"`
	BufferMinutes   int                            `json:"buffer_minutes,omitempty"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ToSchedule converts the stored config into the scheduling engine's form.
// Unknown weekday names are dropped.
func (c ScheduleConfig) ToSchedule() scheduling.Schedule {
	hours := make(scheduling.WeeklyHours, len(c.Hours))
	for name, windows := range c.Hours {
		if wd, ok := weekdayNames[strings.ToLower(name)]; ok {
			hours[wd] = windows
		}
	}
	return scheduling.Schedule{
		Hours:     hours,
		Overrides: c.Overrides,
		Breaks:    c.Breaks,
		Duration:  time.Duration(c.DurationMinutes) * time.Minute,
		Buffer:    time.Duration(c.BufferMinutes) * time.Minute,
	}
}
