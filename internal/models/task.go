package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = "Not Started"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusBlocked    TaskStatus = "Blocked"
	TaskStatusComplete   TaskStatus = "Complete"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusBlocked, TaskStatusComplete:
		return true
	}
	return false
}

// Categories offered when creating a task. The column itself is free text.
var Categories = []string{"Strategy", "Engineering", "Design", "Admin", "Marketing"}

type Task struct {
	ID             string     `gorm:"type:varchar(36);primarykey" json:"id"`
	ClientID       string     `gorm:"type:varchar(36);not null;index" json:"client_id"`
	ProjectName    string     `gorm:"type:varchar(255)" json:"project_name"`
	Title          string     `gorm:"type:varchar(255);not null" json:"title"`
	Category       string     `gorm:"type:varchar(50)" json:"category"`
	StartDate      time.Time  `gorm:"type:date" json:"start_date"`
	DueDate        *time.Time `gorm:"type:date" json:"due_date"`
	Status         TaskStatus `gorm:"type:varchar(20);not null;default:'Not Started'" json:"status"`
	EstimatedHours float64    `gorm:"not null;default:0" json:"estimated_hours"`
	HourlyRate     float64    `gorm:"not null;default:0" json:"hourly_rate"`
	IsBillable     bool       `gorm:"not null;default:false" json:"is_billable"`
	Notes          string     `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Subtasks []Subtask `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	TimeLogs []TimeLog `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	return nil
}
