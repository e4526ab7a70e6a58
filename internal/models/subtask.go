package models

import (
	"time"

	"gorm.io/gorm"
)

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

type Subtask struct {
	ID              string     `gorm:"type:varchar(36);primarykey" json:"id"`
	ParentID        string     `gorm:"type:varchar(36);not null;index" json:"parent_id"`
	Title           string     `gorm:"type:varchar(255);not null" json:"title"`
	Priority        Priority   `gorm:"type:varchar(10);not null;default:'Medium'" json:"priority"`
	AssignedTo      string     `gorm:"type:varchar(100)" json:"assigned_to"`
	EstimatedHours  float64    `gorm:"not null;default:0" json:"estimated_hours"`
	PercentComplete int        `gorm:"not null;default:0" json:"percent_complete"`
	Status          TaskStatus `gorm:"type:varchar(20);not null;default:'Not Started'" json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (s *Subtask) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}
