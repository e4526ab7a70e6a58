package models

import (
	"time"

	"gorm.io/gorm"
)

// TimeLog is one recorded work session. Logs are never edited after creation.
type TimeLog struct {
	ID        string    `gorm:"type:varchar(36);primarykey" json:"id"`
	TaskID    string    `gorm:"type:varchar(36);not null;index" json:"task_id"`
	SubtaskID *string   `gorm:"type:varchar(36)" json:"subtask_id,omitempty"`
	Date      time.Time `gorm:"type:date;not null;index" json:"date"`
	Hours     float64   `gorm:"not null" json:"hours"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *TimeLog) BeforeCreate(tx *gorm.DB) error {
	assignID(&l.ID)
	return nil
}
