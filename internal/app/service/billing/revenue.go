package billing

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	models "github.com/fatflowers/pulseboard/internal/models"
	"github.com/fatflowers/pulseboard/pkg/tool"
	"github.com/fatflowers/pulseboard/pkg/types"
)

// MonthStart is the first instant of t's UTC calendar month.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

type RevenueReport struct {
	MRR                     decimal.Decimal `json:"mrr"`
	ARR                     decimal.Decimal `json:"arr"`
	LifetimeRevenue         decimal.Decimal `json:"lifetimeRevenue"`
	RevenueThisMonth        decimal.Decimal `json:"revenueThisMonth"`
	ChurnRate               float64         `json:"churnRate"`
	AvgCustomerLifetime     int64           `json:"avgCustomerLifetime"`
	ActiveSubscriptions     int             `json:"activeSubscriptions"`
	TotalCustomers          int             `json:"totalCustomers"`
	PayingCustomers         int             `json:"payingCustomers"`
	BetaTesters             int             `json:"betaTesters"`
	DiscountedCustomers     int             `json:"discountedCustomers"`
	DiscountedRevenue       decimal.Decimal `json:"discountedRevenue"`
	FailedPaymentsThisMonth int             `json:"failedPaymentsThisMonth"`
	PastDueSubscriptions    int             `json:"pastDueSubscriptions"`
	ARPU                    decimal.Decimal `json:"arpu"`
	CanceledThisMonth       int             `json:"canceledThisMonth"`
	ActiveAtMonthStart      int             `json:"activeAtMonthStart"`
}

func isActive(s *models.Subscription) bool {
	return s.Status == types.SubscriptionStatusActive
}

func canceledSince(at *time.Time, since time.Time) bool {
	return at != nil && !at.Before(since)
}

// RevenueMetrics computes the revenue summary as of now. Segment counts
// (paying, beta, discounted) cover active subscriptions only.
func RevenueMetrics(snap *Snapshot, now time.Time) RevenueReport {
	if snap == nil {
		snap = &Snapshot{}
	}
	monthStart := MonthStart(now)
	var r RevenueReport

	planTotal := decimal.Zero
	for i := range snap.Subscriptions {
		s := &snap.Subscriptions[i]
		switch {
		case isActive(s):
			r.ActiveSubscriptions++
			r.ActiveAtMonthStart++
			r.MRR = r.MRR.Add(s.DiscountedAmount)
			planTotal = planTotal.Add(s.PlanAmount)
			if IsBetaTester(s) {
				r.BetaTesters++
			}
			if IsDiscounted(s) {
				r.DiscountedCustomers++
			}
			if IsPaying(s) {
				r.PayingCustomers++
			}
		case canceledSince(s.CanceledAt, monthStart):
			r.ActiveAtMonthStart++
		}
		if s.Status == types.SubscriptionStatusPastDue {
			r.PastDueSubscriptions++
		}
	}
	r.TotalCustomers = len(lo.UniqBy(snap.Subscriptions, func(s models.Subscription) string { return s.CustomerID }))
	r.ARR = r.MRR.Mul(decimal.NewFromInt(12))
	r.DiscountedRevenue = planTotal.Sub(r.MRR)

	for i := range snap.Payments {
		p := &snap.Payments[i]
		thisMonth := !p.Created.Before(monthStart)
		switch p.Status {
		case types.PaymentStatusSucceeded:
			r.LifetimeRevenue = r.LifetimeRevenue.Add(p.Net())
			if thisMonth {
				r.RevenueThisMonth = r.RevenueThisMonth.Add(p.Net())
			}
		case types.PaymentStatusFailed:
			if thisMonth {
				r.FailedPaymentsThisMonth++
			}
		}
	}

	r.CanceledThisMonth = lo.CountBy(snap.Cancellations, func(c models.Cancellation) bool {
		return !c.CanceledAt.Before(monthStart)
	})
	r.ChurnRate = tool.Percent(float64(r.CanceledThisMonth), float64(r.ActiveAtMonthStart))

	if n := len(snap.Cancellations); n > 0 {
		days := lo.SumBy(snap.Cancellations, func(c models.Cancellation) int { return c.DaysAsCustomer })
		r.AvgCustomerLifetime = tool.RoundInt(float64(days) / float64(n))
	}
	if r.PayingCustomers > 0 {
		r.ARPU = r.MRR.Div(decimal.NewFromInt(int64(r.PayingCustomers))).Round(2)
	}
	return r
}
