package dto

import (
	"time"

	"github.com/yukikurage/consultant-ledger/internal/constants"
	"github.com/yukikurage/consultant-ledger/internal/models"
	"github.com/yukikurage/consultant-ledger/internal/summary"
	"github.com/yukikurage/consultant-ledger/internal/utils"
)

// ClientDTO represents a client in API responses
type ClientDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Address string `json:"address,omitempty"`
	Logo    string `json:"logo,omitempty"`
}

// SubtaskDTO represents a subtask in API responses
type SubtaskDTO struct {
	ID              string            `json:"id"`
	ParentID        string            `json:"parent_id"`
	Title           string            `json:"title"`
	Priority        models.Priority   `json:"priority"`
	AssignedTo      string            `json:"assigned_to"`
	EstimatedHours  float64           `json:"estimated_hours"`
	PercentComplete int               `json:"percent_complete"`
	Status          models.TaskStatus `json:"status"`
}

// TimeLogDTO represents a time log in API responses
type TimeLogDTO struct {
	ID        string  `json:"id"`
	TaskID    string  `json:"task_id"`
	SubtaskID *string `json:"subtask_id"`
	Date      string  `json:"date"`
	Hours     float64 `json:"hours"`
	Notes     string  `json:"notes"`
}

// TaskDTO represents a task with its rolled-up values. Status and
// estimated_hours are the derived values.
type TaskDTO struct {
	ID                  string               `json:"id"`
	ClientID            string               `json:"client_id"`
	ProjectName         string               `json:"project_name"`
	Title               string               `json:"title"`
	Category            string               `json:"category"`
	StartDate           string               `json:"start_date"`
	DueDate             *string              `json:"due_date"`
	Status              models.TaskStatus    `json:"status"`
	EstimatedHours      float64              `json:"estimated_hours"`
	HourlyRate          float64              `json:"hourly_rate"`
	IsBillable          bool                 `json:"is_billable"`
	Notes               string               `json:"notes"`
	CalculatedProgress  float64              `json:"calculated_progress"`
	TotalActualHours    float64              `json:"total_actual_hours"`
	TotalBillableAmount float64              `json:"total_billable_amount"`
	BudgetStatus        summary.BudgetStatus `json:"budget_status"`
	Subtasks            []SubtaskDTO         `json:"subtasks"`
	TimeLogs            []TimeLogDTO         `json:"time_logs"`
}

// TimeLogListResponse represents a list of time logs, paginated on request
type TimeLogListResponse struct {
	TimeLogs   []TimeLogDTO              `json:"time_logs"`
	Total      int64                     `json:"total"`
	Pagination *utils.PaginationResponse `json:"pagination,omitempty"`
}

// Conversion functions

// ToClientDTO converts a Client model to ClientDTO
func ToClientDTO(client models.Client) ClientDTO {
	return ClientDTO{
		ID:      client.ID,
		Name:    client.Name,
		Color:   client.Color,
		Address: client.Address,
		Logo:    client.Logo,
	}
}

// ToClientDTOs converts a slice of clients
func ToClientDTOs(clients []models.Client) []ClientDTO {
	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = ToClientDTO(c)
	}
	return dtos
}

// ToSubtaskDTO converts a Subtask model to SubtaskDTO
func ToSubtaskDTO(sub models.Subtask) SubtaskDTO {
	return SubtaskDTO{
		ID:              sub.ID,
		ParentID:        sub.ParentID,
		Title:           sub.Title,
		Priority:        sub.Priority,
		AssignedTo:      sub.AssignedTo,
		EstimatedHours:  sub.EstimatedHours,
		PercentComplete: sub.PercentComplete,
		Status:          sub.Status,
	}
}

// ToSubtaskDTOs converts a slice of subtasks
func ToSubtaskDTOs(subtasks []models.Subtask) []SubtaskDTO {
	dtos := make([]SubtaskDTO, len(subtasks))
	for i, s := range subtasks {
		dtos[i] = ToSubtaskDTO(s)
	}
	return dtos
}

// ToTimeLogDTO converts a TimeLog model to TimeLogDTO
func ToTimeLogDTO(log models.TimeLog) TimeLogDTO {
	return TimeLogDTO{
		ID:        log.ID,
		TaskID:    log.TaskID,
		SubtaskID: log.SubtaskID,
		Date:      formatDate(log.Date),
		Hours:     log.Hours,
		Notes:     log.Notes,
	}
}

// ToTimeLogDTOs converts a slice of time logs
func ToTimeLogDTOs(logs []models.TimeLog) []TimeLogDTO {
	dtos := make([]TimeLogDTO, len(logs))
	for i, l := range logs {
		dtos[i] = ToTimeLogDTO(l)
	}
	return dtos
}

// ToTaskDTO converts a TaskSummary to TaskDTO
func ToTaskDTO(s summary.TaskSummary) TaskDTO {
	dto := TaskDTO{
		ID:                  s.ID,
		ClientID:            s.ClientID,
		ProjectName:         s.ProjectName,
		Title:               s.Title,
		Category:            s.Category,
		StartDate:           formatDate(s.StartDate),
		Status:              s.Status,
		EstimatedHours:      s.EstimatedHours,
		HourlyRate:          s.HourlyRate,
		IsBillable:          s.IsBillable,
		Notes:               s.Notes,
		CalculatedProgress:  s.CalculatedProgress,
		TotalActualHours:    s.TotalActualHours,
		TotalBillableAmount: s.TotalBillableAmount.InexactFloat64(),
		BudgetStatus:        s.BudgetStatus,
		Subtasks:            ToSubtaskDTOs(s.Subtasks),
		TimeLogs:            ToTimeLogDTOs(s.TimeLogs),
	}

	if s.DueDate != nil {
		due := formatDate(*s.DueDate)
		dto.DueDate = &due
	}

	return dto
}

// ToTaskDTOs converts a slice of task summaries
func ToTaskDTOs(summaries []summary.TaskSummary) []TaskDTO {
	dtos := make([]TaskDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = ToTaskDTO(s)
	}
	return dtos
}

// ToTimeLogListResponse converts logs and an optional page to a response
func ToTimeLogListResponse(logs []models.TimeLog, total int64, page *utils.PaginationParams) TimeLogListResponse {
	resp := TimeLogListResponse{
		TimeLogs: ToTimeLogDTOs(logs),
		Total:    total,
	}
	if page != nil {
		resp.Pagination = &utils.PaginationResponse{
			Page:  page.Page,
			Limit: page.Limit,
			Total: total,
		}
	}
	return resp
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(constants.DateLayout)
}

// ChangeDTO represents one subtask operation of a sync
type ChangeDTO struct {
	Kind      summary.ChangeKind `json:"kind"`
	SubtaskID string             `json:"subtask_id,omitempty"`
	Title     string             `json:"title"`
	Error     string             `json:"error,omitempty"`
}

// SyncResultDTO represents the outcome of a subtask sync
type SyncResultDTO struct {
	Task      *TaskDTO     `json:"task,omitempty"`
	Subtasks  []SubtaskDTO `json:"subtasks"`
	Succeeded []ChangeDTO  `json:"succeeded,omitempty"`
	Failed    []ChangeDTO  `json:"failed,omitempty"`
}

// ToChangeDTO converts a reconciliation change. err may be nil.
func ToChangeDTO(change summary.Change, err error) ChangeDTO {
	dto := ChangeDTO{
		Kind:      change.Kind,
		SubtaskID: change.Subtask.ID,
		Title:     change.Subtask.Title,
	}
	if err != nil {
		dto.Error = err.Error()
	}
	return dto
}
