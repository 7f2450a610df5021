package billing

import (
	"time"

	"github.com/shopspring/decimal"

	models "github.com/fatflowers/pulseboard/internal/models"
	"github.com/fatflowers/pulseboard/pkg/tool"
	"github.com/fatflowers/pulseboard/pkg/types"
)

const CohortMonths = 12

// Cohort groups subscriptions by the calendar month they started in.
// Retained[k] counts members still subscribed k months after the cohort
// month began; the current month is the last offset.
type Cohort struct {
	Month    string          `json:"month"`
	Size     int             `json:"size"`
	Retained []int           `json:"retained"`
	Rates    []float64       `json:"rates"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type RetentionReport struct {
	Cohorts []Cohort `json:"cohorts"`
	// AverageCurve is the size-weighted retention rate per month offset.
	AverageCurve []float64 `json:"averageRetention"`
}

// churnedAt is when a subscription stopped counting as retained.
func churnedAt(s *models.Subscription) *time.Time {
	if s.CanceledAt != nil {
		return s.CanceledAt
	}
	return s.EndedAt
}

// RetentionAnalysis builds start-month cohorts for the trailing CohortMonths
// months up to now.
func RetentionAnalysis(snap *Snapshot, now time.Time) RetentionReport {
	if snap == nil {
		snap = &Snapshot{}
	}
	current := MonthStart(now)

	revenueByCustomer := map[string]decimal.Decimal{}
	for i := range snap.Payments {
		p := &snap.Payments[i]
		if p.Status == types.PaymentStatusSucceeded {
			revenueByCustomer[p.CustomerID] = revenueByCustomer[p.CustomerID].Add(p.Net())
		}
	}

	report := RetentionReport{Cohorts: make([]Cohort, 0, CohortMonths)}
	retainedAt := make([]int, CohortMonths)
	sizeAt := make([]int, CohortMonths)

	for age := CohortMonths - 1; age >= 0; age-- {
		start := current.AddDate(0, -age, 0)
		end := start.AddDate(0, 1, 0)
		c := Cohort{
			Month:    start.Format(MonthLabel),
			Retained: make([]int, age+1),
			Rates:    make([]float64, age+1),
		}
		customers := map[string]struct{}{}
		for i := range snap.Subscriptions {
			s := &snap.Subscriptions[i]
			if s.StartDate.Before(start) || !s.StartDate.Before(end) {
				continue
			}
			c.Size++
			customers[s.CustomerID] = struct{}{}
			churned := churnedAt(s)
			for k := 0; k <= age; k++ {
				if churned == nil || !churned.Before(start.AddDate(0, k, 0)) {
					c.Retained[k]++
				}
			}
		}
		for k := 0; k <= age; k++ {
			c.Rates[k] = tool.Percent(float64(c.Retained[k]), float64(c.Size))
			retainedAt[k] += c.Retained[k]
			sizeAt[k] += c.Size
		}
		for id := range customers {
			c.Revenue = c.Revenue.Add(revenueByCustomer[id])
		}
		report.Cohorts = append(report.Cohorts, c)
	}

	report.AverageCurve = make([]float64, CohortMonths)
	for k := range report.AverageCurve {
		report.AverageCurve[k] = tool.Percent(float64(retainedAt[k]), float64(sizeAt[k]))
	}
	return report
}
