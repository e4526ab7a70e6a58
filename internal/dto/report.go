package dto

import (
	"github.com/yukikurage/consultant-ledger/internal/models"
	"github.com/yukikurage/consultant-ledger/internal/summary"
)

// WorkspaceDTO is everything the dashboard needs on first load
type WorkspaceDTO struct {
	Clients    []ClientDTO        `json:"clients"`
	Tasks      []TaskDTO          `json:"tasks"`
	Profile    models.UserProfile `json:"profile"`
	Categories []string           `json:"categories"`
}

// ClientOverviewDTO represents the headline numbers of a client
type ClientOverviewDTO struct {
	Client      ClientDTO `json:"client"`
	TaskCount   int       `json:"task_count"`
	ActiveTasks int       `json:"active_tasks"`
	Revenue     float64   `json:"revenue"`
	Hours       float64   `json:"hours"`
}

// ClientMonthDTO represents the tasks of a client started in one month
type ClientMonthDTO struct {
	Month         string    `json:"month"`
	Tasks         []TaskDTO `json:"tasks"`
	TotalActual   float64   `json:"total_actual"`
	TotalPending  float64   `json:"total_pending"`
	TotalBillable float64   `json:"total_billable"`
}

// TimesheetEntryDTO is a time log with its task and client resolved
type TimesheetEntryDTO struct {
	TimeLogDTO
	TaskTitle      string  `json:"task_title"`
	ClientID       string  `json:"client_id"`
	ClientName     string  `json:"client_name"`
	ClientColor    string  `json:"client_color"`
	IsBillable     bool    `json:"is_billable"`
	HourlyRate     float64 `json:"hourly_rate"`
	BillableAmount float64 `json:"billable_amount"`
}

type TimesheetMonthDTO struct {
	Month         string              `json:"month"`
	TotalHours    float64             `json:"total_hours"`
	TotalBillable float64             `json:"total_billable"`
	Entries       []TimesheetEntryDTO `json:"entries"`
}

type TimesheetClientDTO struct {
	ClientID      string              `json:"client_id"`
	Name          string              `json:"name"`
	Color         string              `json:"color"`
	TotalHours    float64             `json:"total_hours"`
	TotalBillable float64             `json:"total_billable"`
	Months        []TimesheetMonthDTO `json:"months"`
}

// TimesheetDTO represents logged time grouped by client and month
type TimesheetDTO struct {
	Month           string               `json:"month"`
	AvailableMonths []string             `json:"available_months"`
	TotalHours      float64              `json:"total_hours"`
	TotalBillable   float64              `json:"total_billable"`
	Clients         []TimesheetClientDTO `json:"clients"`
}

// PeriodDTO describes the date range of a dashboard view. Start and end are
// null in the all-time view.
type PeriodDTO struct {
	Mode   summary.ViewMode `json:"mode"`
	Cursor string           `json:"cursor"`
	Start  *string          `json:"start"`
	End    *string          `json:"end"`
	Label  string           `json:"label"`
}

type TotalsDTO struct {
	Revenue        float64 `json:"revenue"`
	Hours          float64 `json:"hours"`
	DeadlinesCount int     `json:"deadlines_count"`
}

type ClientRevenueDTO struct {
	ClientID string  `json:"client_id"`
	Name     string  `json:"name"`
	Revenue  float64 `json:"revenue"`
}

type TrendPointDTO struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// AnalysisDTO represents the dashboard metrics of one period
type AnalysisDTO struct {
	Period             PeriodDTO          `json:"period"`
	Totals             TotalsDTO          `json:"totals"`
	ClientDistribution []ClientRevenueDTO `json:"client_distribution"`
	Trend              []TrendPointDTO    `json:"trend"`
	ActiveTasks        []TaskDTO          `json:"active_tasks"`
}

// ToWorkspaceDTO converts a loaded workspace
func ToWorkspaceDTO(clients []models.Client, tasks []summary.TaskSummary, profile models.UserProfile) WorkspaceDTO {
	return WorkspaceDTO{
		Clients:    ToClientDTOs(clients),
		Tasks:      ToTaskDTOs(tasks),
		Profile:    profile,
		Categories: models.Categories,
	}
}

// ToClientOverviewDTOs converts client overviews
func ToClientOverviewDTOs(overviews []summary.ClientOverview) []ClientOverviewDTO {
	dtos := make([]ClientOverviewDTO, len(overviews))
	for i, o := range overviews {
		dtos[i] = ClientOverviewDTO{
			Client:      ToClientDTO(o.Client),
			TaskCount:   o.TaskCount,
			ActiveTasks: o.ActiveTasks,
			Revenue:     o.Revenue.InexactFloat64(),
			Hours:       o.Hours,
		}
	}
	return dtos
}

// ToClientMonthDTOs converts the month groups of a client
func ToClientMonthDTOs(months []summary.ClientMonth) []ClientMonthDTO {
	dtos := make([]ClientMonthDTO, len(months))
	for i, m := range months {
		dtos[i] = ClientMonthDTO{
			Month:         m.Month,
			Tasks:         ToTaskDTOs(m.Tasks),
			TotalActual:   m.TotalActual,
			TotalPending:  m.TotalPending,
			TotalBillable: m.TotalBillable.InexactFloat64(),
		}
	}
	return dtos
}

// ToTimesheetDTO converts a timesheet
func ToTimesheetDTO(sheet summary.Timesheet) TimesheetDTO {
	clients := make([]TimesheetClientDTO, len(sheet.Clients))
	for i, c := range sheet.Clients {
		months := make([]TimesheetMonthDTO, len(c.Months))
		for j, m := range c.Months {
			entries := make([]TimesheetEntryDTO, len(m.Entries))
			for k, e := range m.Entries {
				entries[k] = TimesheetEntryDTO{
					TimeLogDTO:     ToTimeLogDTO(e.TimeLog),
					TaskTitle:      e.TaskTitle,
					ClientID:       e.ClientID,
					ClientName:     e.ClientName,
					ClientColor:    e.ClientColor,
					IsBillable:     e.IsBillable,
					HourlyRate:     e.HourlyRate,
					BillableAmount: e.BillableAmount.InexactFloat64(),
				}
			}
			months[j] = TimesheetMonthDTO{
				Month:         m.Month,
				TotalHours:    m.TotalHours,
				TotalBillable: m.TotalBillable.InexactFloat64(),
				Entries:       entries,
			}
		}
		clients[i] = TimesheetClientDTO{
			ClientID:      c.ClientID,
			Name:          c.Name,
			Color:         c.Color,
			TotalHours:    c.TotalHours,
			TotalBillable: c.TotalBillable.InexactFloat64(),
			Months:        months,
		}
	}

	available := sheet.AvailableMonths
	if available == nil {
		available = []string{}
	}

	return TimesheetDTO{
		Month:           sheet.Month,
		AvailableMonths: available,
		TotalHours:      sheet.TotalHours,
		TotalBillable:   sheet.TotalBillable.InexactFloat64(),
		Clients:         clients,
	}
}

// ToAnalysisDTO converts dashboard metrics
func ToAnalysisDTO(a summary.Analysis) AnalysisDTO {
	period := PeriodDTO{
		Mode:   a.Period.Mode,
		Cursor: formatDate(a.Period.Cursor),
		Label:  a.Period.Label(),
	}
	if a.Period.Bounded() {
		start, end := formatDate(a.Period.Start), formatDate(a.Period.End)
		period.Start, period.End = &start, &end
	}

	distribution := make([]ClientRevenueDTO, len(a.ClientDistribution))
	for i, c := range a.ClientDistribution {
		distribution[i] = ClientRevenueDTO{ClientID: c.ClientID, Name: c.Name, Revenue: c.Revenue.InexactFloat64()}
	}

	trend := make([]TrendPointDTO, len(a.Trend))
	for i, p := range a.Trend {
		trend[i] = TrendPointDTO{Label: p.Label, Amount: p.Amount.InexactFloat64()}
	}

	return AnalysisDTO{
		Period: period,
		Totals: TotalsDTO{
			Revenue:        a.Totals.Revenue.InexactFloat64(),
			Hours:          a.Totals.Hours,
			DeadlinesCount: a.Totals.DeadlinesCount,
		},
		ClientDistribution: distribution,
		Trend:              trend,
		ActiveTasks:        ToTaskDTOs(a.ActiveTasks),
	}
}
