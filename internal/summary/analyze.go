package summary

import (
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yukikurage/consultant-ledger/internal/models"
)

// UnknownClientName labels revenue whose client no longer exists.
const UnknownClientName = "Unknown"

type Totals struct {
	Revenue        decimal.Decimal
	Hours          float64
	DeadlinesCount int
}

type ClientRevenue struct {
	ClientID string
	Name     string
	Revenue  decimal.Decimal
}

// TrendPoint is the billable revenue of one bucket: a day of month ("1".."31")
// or, in year view, a month ("Jan".."Dec").
type TrendPoint struct {
	Label  string
	Amount decimal.Decimal
}

type Analysis struct {
	Period             Period
	Totals             Totals
	ClientDistribution []ClientRevenue
	Trend              []TrendPoint
	ActiveTasks        []TaskSummary
}

// Analyze computes the dashboard metrics of the period selected by mode and
// cursor. Deadlines in ViewAll are counted relative to the current time.
func Analyze(summaries []TaskSummary, mode ViewMode, cursor time.Time) Analysis {
	return AnalyzeAt(summaries, mode, cursor, time.Now())
}

// AnalyzeAt is Analyze with an explicit current time.
func AnalyzeAt(summaries []TaskSummary, mode ViewMode, cursor, now time.Time) Analysis {
	period := PeriodFor(mode, cursor)
	analysis := Analysis{
		Period:             period,
		Totals:             Totals{Revenue: decimal.Zero},
		ClientDistribution: []ClientRevenue{},
		Trend:              []TrendPoint{},
		ActiveTasks:        []TaskSummary{},
	}

	revenueByClient := make(map[string]decimal.Decimal)
	var clientOrder []string
	revenueByBucket := make(map[int]decimal.Decimal)

	for _, s := range summaries {
		loggedInPeriod := false
		for _, l := range s.TimeLogs {
			if !period.Contains(l.Date) {
				continue
			}
			loggedInPeriod = true
			analysis.Totals.Hours += l.Hours

			if !s.IsBillable {
				continue
			}
			amount := decimal.NewFromFloat(l.Hours).Mul(decimal.NewFromFloat(s.HourlyRate))
			analysis.Totals.Revenue = analysis.Totals.Revenue.Add(amount)

			if _, seen := revenueByClient[s.ClientID]; !seen {
				clientOrder = append(clientOrder, s.ClientID)
			}
			revenueByClient[s.ClientID] = revenueByClient[s.ClientID].Add(amount)

			bucket := trendBucket(mode, l.Date)
			revenueByBucket[bucket] = revenueByBucket[bucket].Add(amount)
		}

		if !activeIn(s, period, loggedInPeriod) {
			continue
		}
		analysis.ActiveTasks = append(analysis.ActiveTasks, s)
		if dueIn(s, period, now) {
			analysis.Totals.DeadlinesCount++
		}
	}

	for _, id := range clientOrder {
		analysis.ClientDistribution = append(analysis.ClientDistribution, ClientRevenue{
			ClientID: id,
			Name:     id,
			Revenue:  revenueByClient[id],
		})
	}
	slices.SortStableFunc(analysis.ClientDistribution, func(a, b ClientRevenue) int {
		return b.Revenue.Cmp(a.Revenue)
	})

	buckets := make([]int, 0, len(revenueByBucket))
	for b := range revenueByBucket {
		buckets = append(buckets, b)
	}
	sort.Ints(buckets)
	for _, b := range buckets {
		analysis.Trend = append(analysis.Trend, TrendPoint{
			Label:  trendLabel(mode, b),
			Amount: revenueByBucket[b],
		})
	}

	return analysis
}

// LabelClients fills in client names on a revenue distribution. Revenue from
// tasks whose client is gone is labelled UnknownClientName.
func LabelClients(distribution []ClientRevenue, clients []models.Client) []ClientRevenue {
	names := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}

	labelled := make([]ClientRevenue, len(distribution))
	for i, d := range distribution {
		d.Name = UnknownClientName
		if name, ok := names[d.ClientID]; ok {
			d.Name = name
		}
		labelled[i] = d
	}
	return labelled
}

// activeIn reports whether a task counts as active in the period: in ViewAll
// any started task; otherwise a task with time logged in the period or whose
// schedule overlaps it.
func activeIn(s TaskSummary, period Period, loggedInPeriod bool) bool {
	if !period.Bounded() {
		return s.Status != models.TaskStatusNotStarted
	}
	return loggedInPeriod || period.Overlaps(s.StartDate, s.DueDate)
}

func dueIn(s TaskSummary, period Period, now time.Time) bool {
	if s.DueDate == nil {
		return false
	}
	if !period.Bounded() {
		return !civilDay(*s.DueDate, now.Location()).Before(now)
	}
	return period.Contains(*s.DueDate)
}

func trendBucket(mode ViewMode, date time.Time) int {
	if mode == ViewYear {
		return int(date.Month())
	}
	return date.Day()
}

func trendLabel(mode ViewMode, bucket int) string {
	if mode == ViewYear {
		return time.Month(bucket).String()[:3]
	}
	return strconv.Itoa(bucket)
}
