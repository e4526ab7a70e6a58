package summary

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/consultant-ledger/internal/models"
)

// ClientOverview is the headline card of a client.
type ClientOverview struct {
	Client      models.Client
	TaskCount   int
	ActiveTasks int
	Revenue     decimal.Decimal
	Hours       float64
}

// ClientOverviews summarises each client over all of its tasks. ActiveTasks
// counts tasks whose derived status is In Progress.
func ClientOverviews(clients []models.Client, summaries []TaskSummary) []ClientOverview {
	byClient := make(map[string][]TaskSummary, len(clients))
	for _, s := range summaries {
		byClient[s.ClientID] = append(byClient[s.ClientID], s)
	}

	overviews := make([]ClientOverview, len(clients))
	for i, c := range clients {
		o := ClientOverview{Client: c, Revenue: decimal.Zero}
		for _, s := range byClient[c.ID] {
			o.TaskCount++
			if s.Status == models.TaskStatusInProgress {
				o.ActiveTasks++
			}
			o.Revenue = o.Revenue.Add(s.TotalBillableAmount)
			o.Hours += s.TotalActualHours
		}
		overviews[i] = o
	}
	return overviews
}

// ClientMonth groups the tasks of a client by the month they start in.
type ClientMonth struct {
	Month         string
	Tasks         []TaskSummary
	TotalActual   float64
	TotalPending  float64
	TotalBillable decimal.Decimal
}

// ClientMonths groups the tasks of clientID by start month, newest first.
// Tasks without a start date fall into the month of now. Pending hours are
// the unused part of the estimate and zero once a task is complete.
func ClientMonths(clientID string, summaries []TaskSummary, now time.Time) []ClientMonth {
	groups := make(map[string]*ClientMonth)
	for _, s := range summaries {
		if s.ClientID != clientID {
			continue
		}

		start := s.StartDate
		if start.IsZero() {
			start = now
		}
		key := start.Format("2006-01")

		g, ok := groups[key]
		if !ok {
			g = &ClientMonth{Month: key, TotalBillable: decimal.Zero}
			groups[key] = g
		}
		g.Tasks = append(g.Tasks, s)
		g.TotalActual += s.TotalActualHours
		g.TotalPending += PendingHours(s)
		g.TotalBillable = g.TotalBillable.Add(s.TotalBillableAmount)
	}

	months := make([]ClientMonth, 0, len(groups))
	for _, g := range groups {
		months = append(months, *g)
	}
	slices.SortFunc(months, func(a, b ClientMonth) int {
		return strings.Compare(b.Month, a.Month)
	})
	return months
}

// PendingHours is the estimate not yet covered by logged time.
func PendingHours(s TaskSummary) float64 {
	if s.Status == models.TaskStatusComplete {
		return 0
	}
	return max(0, s.EstimatedHours-s.TotalActualHours)
}
