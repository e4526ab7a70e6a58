// Package summary derives read-only views (task roll-ups, period analytics,
// timesheets) from snapshots of clients, tasks, subtasks and time logs.
//
// Every function in this package is pure: inputs are never mutated and
// missing associations resolve to empty collections instead of errors.
package summary

import (
	"github.com/shopspring/decimal"
	"github.com/yukikurage/consultant-ledger/internal/models"
)

type BudgetStatus string

const (
	BudgetOnTrack    BudgetStatus = "On Track"
	BudgetOverBudget BudgetStatus = "Over Budget"
)

// TaskSummary is a task together with the values rolled up from its subtasks
// and time logs. Status and EstimatedHours hold the derived values, not the
// stored ones.
type TaskSummary struct {
	models.Task

	Subtasks            []models.Subtask
	TimeLogs            []models.TimeLog
	CalculatedProgress  float64
	TotalActualHours    float64
	TotalBillableAmount decimal.Decimal
	BudgetStatus        BudgetStatus
}

// Summarize builds one TaskSummary per task, in input order.
// Subtasks and logs whose parent task is not in tasks are ignored.
func Summarize(tasks []models.Task, subtasks []models.Subtask, logs []models.TimeLog) []TaskSummary {
	subtasksByTask := make(map[string][]models.Subtask, len(tasks))
	for _, s := range subtasks {
		subtasksByTask[s.ParentID] = append(subtasksByTask[s.ParentID], s)
	}
	logsByTask := make(map[string][]models.TimeLog, len(tasks))
	for _, l := range logs {
		logsByTask[l.TaskID] = append(logsByTask[l.TaskID], l)
	}

	summaries := make([]TaskSummary, len(tasks))
	for i, task := range tasks {
		summaries[i] = summarizeTask(task, subtasksByTask[task.ID], logsByTask[task.ID])
	}
	return summaries
}

// SummarizeTask is Summarize for a single task.
func SummarizeTask(task models.Task, subtasks []models.Subtask, logs []models.TimeLog) TaskSummary {
	return Summarize([]models.Task{task}, subtasks, logs)[0]
}

func summarizeTask(task models.Task, subtasks []models.Subtask, logs []models.TimeLog) TaskSummary {
	if subtasks == nil {
		subtasks = []models.Subtask{}
	}
	if logs == nil {
		logs = []models.TimeLog{}
	}

	estimate := task.EstimatedHours
	if len(subtasks) > 0 {
		estimate = 0
		for _, s := range subtasks {
			estimate += s.EstimatedHours
		}
	}

	var actual float64
	for _, l := range logs {
		actual += l.Hours
	}

	billable := decimal.Zero
	if task.IsBillable {
		billable = decimal.NewFromFloat(actual).Mul(decimal.NewFromFloat(task.HourlyRate))
	}

	budget := BudgetOnTrack
	if actual > estimate {
		budget = BudgetOverBudget
	}

	derived := task
	derived.EstimatedHours = estimate
	derived.Status = DeriveStatus(task.Status, subtasks)

	return TaskSummary{
		Task:                derived,
		Subtasks:            subtasks,
		TimeLogs:            logs,
		CalculatedProgress:  Progress(task.Status, subtasks),
		TotalActualHours:    actual,
		TotalBillableAmount: billable,
		BudgetStatus:        budget,
	}
}

// Progress returns the completion percentage of a task.
//
// With subtasks it is the average of their percentages weighted by estimated
// hours, or 0 when every estimate is zero. Without subtasks it is a coarse
// proxy of the stored status: 100 for complete, 50 in progress, 0 otherwise.
func Progress(status models.TaskStatus, subtasks []models.Subtask) float64 {
	if len(subtasks) == 0 {
		switch status {
		case models.TaskStatusComplete:
			return 100
		case models.TaskStatusInProgress:
			return 50
		default:
			return 0
		}
	}

	var weighted, estimate float64
	for _, s := range subtasks {
		weighted += float64(s.PercentComplete) * s.EstimatedHours
		estimate += s.EstimatedHours
	}
	if estimate <= 0 {
		return 0
	}
	return weighted / estimate
}

// DeriveStatus applies subtask signals to a stored task status. All subtasks
// complete promotes to Complete; any started subtask promotes to In Progress
// unless the task is already In Progress or Complete. It never demotes.
func DeriveStatus(stored models.TaskStatus, subtasks []models.Subtask) models.TaskStatus {
	if len(subtasks) == 0 {
		return stored
	}

	allComplete := true
	anyStarted := false
	for _, s := range subtasks {
		if s.Status != models.TaskStatusComplete {
			allComplete = false
		}
		if s.Status == models.TaskStatusInProgress || s.PercentComplete > 0 {
			anyStarted = true
		}
	}

	switch {
	case allComplete:
		return models.TaskStatusComplete
	case anyStarted && stored != models.TaskStatusInProgress && stored != models.TaskStatusComplete:
		return models.TaskStatusInProgress
	default:
		return stored
	}
}
