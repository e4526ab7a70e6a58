package summary

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/consultant-ledger/internal/models"
)

const (
	// AllMonths disables the month filter of a timesheet.
	AllMonths = "ALL"

	unknownClientID   = "unknown"
	unknownClientName = "Unknown Client"
	unknownTaskTitle  = "Unknown Task"
)

// TimesheetEntry is a time log enriched with its task and client.
type TimesheetEntry struct {
	models.TimeLog

	TaskTitle      string
	ClientID       string
	ClientName     string
	ClientColor    string
	IsBillable     bool
	HourlyRate     float64
	BillableAmount decimal.Decimal
	Month          string
}

type TimesheetMonth struct {
	Month         string
	TotalHours    float64
	TotalBillable decimal.Decimal
	Entries       []TimesheetEntry
}

type TimesheetClient struct {
	ClientID      string
	Name          string
	Color         string
	TotalHours    float64
	TotalBillable decimal.Decimal
	Months        []TimesheetMonth
}

type Timesheet struct {
	Month           string
	AvailableMonths []string
	TotalHours      float64
	TotalBillable   decimal.Decimal
	Clients         []TimesheetClient
}

// MonthKey formats the month of a date as YYYY-MM.
func MonthKey(log models.TimeLog) string {
	return log.Date.Format("2006-01")
}

// AvailableMonths lists the distinct months that have logs, newest first.
func AvailableMonths(logs []models.TimeLog) []string {
	seen := make(map[string]struct{}, len(logs))
	months := make([]string, 0)
	for _, l := range logs {
		key := MonthKey(l)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		months = append(months, key)
	}
	slices.Sort(months)
	slices.Reverse(months)
	return months
}

// BuildTimesheet groups logs by client and month. month is a YYYY-MM key
// or AllMonths. Logs of deleted tasks or clients are kept under "Unknown"
// placeholders and never count as billable.
//
// Clients are ordered by name, months and entries newest first.
func BuildTimesheet(logs []models.TimeLog, tasks []models.Task, clients []models.Client, month string) Timesheet {
	if month == "" {
		month = AllMonths
	}

	tasksByID := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		tasksByID[t.ID] = t
	}
	clientsByID := make(map[string]models.Client, len(clients))
	for _, c := range clients {
		clientsByID[c.ID] = c
	}

	sheet := Timesheet{
		Month:           month,
		AvailableMonths: AvailableMonths(logs),
		TotalBillable:   decimal.Zero,
		Clients:         []TimesheetClient{},
	}

	groups := make(map[string]*TimesheetClient)
	monthGroups := make(map[string]map[string]*TimesheetMonth)

	for _, l := range logs {
		key := MonthKey(l)
		if month != AllMonths && key != month {
			continue
		}

		entry := enrich(l, tasksByID, clientsByID)
		entry.Month = key

		group, ok := groups[entry.ClientID]
		if !ok {
			group = &TimesheetClient{
				ClientID:      entry.ClientID,
				Name:          entry.ClientName,
				Color:         entry.ClientColor,
				TotalBillable: decimal.Zero,
			}
			groups[entry.ClientID] = group
			monthGroups[entry.ClientID] = make(map[string]*TimesheetMonth)
		}
		group.TotalHours += entry.Hours
		group.TotalBillable = group.TotalBillable.Add(entry.BillableAmount)

		mg, ok := monthGroups[entry.ClientID][key]
		if !ok {
			mg = &TimesheetMonth{Month: key, TotalBillable: decimal.Zero}
			monthGroups[entry.ClientID][key] = mg
		}
		mg.TotalHours += entry.Hours
		mg.TotalBillable = mg.TotalBillable.Add(entry.BillableAmount)
		mg.Entries = append(mg.Entries, entry)

		sheet.TotalHours += entry.Hours
		sheet.TotalBillable = sheet.TotalBillable.Add(entry.BillableAmount)
	}

	for id, group := range groups {
		for _, mg := range monthGroups[id] {
			slices.SortStableFunc(mg.Entries, func(a, b TimesheetEntry) int {
				return b.Date.Compare(a.Date)
			})
			group.Months = append(group.Months, *mg)
		}
		slices.SortFunc(group.Months, func(a, b TimesheetMonth) int {
			return strings.Compare(b.Month, a.Month)
		})
		sheet.Clients = append(sheet.Clients, *group)
	}
	slices.SortFunc(sheet.Clients, func(a, b TimesheetClient) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ClientID, b.ClientID)
	})

	return sheet
}

func enrich(l models.TimeLog, tasks map[string]models.Task, clients map[string]models.Client) TimesheetEntry {
	entry := TimesheetEntry{
		TimeLog:        l,
		TaskTitle:      unknownTaskTitle,
		ClientID:       unknownClientID,
		ClientName:     unknownClientName,
		BillableAmount: decimal.Zero,
	}

	task, ok := tasks[l.TaskID]
	if !ok {
		return entry
	}
	entry.TaskTitle = task.Title
	entry.IsBillable = task.IsBillable
	entry.HourlyRate = task.HourlyRate
	if task.IsBillable {
		entry.BillableAmount = decimal.NewFromFloat(l.Hours).Mul(decimal.NewFromFloat(task.HourlyRate))
	}

	if client, ok := clients[task.ClientID]; ok {
		entry.ClientID = client.ID
		entry.ClientName = client.Name
		entry.ClientColor = client.Color
	}
	return entry
}
