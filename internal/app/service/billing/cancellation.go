package billing

import (
	"cmp"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	models "github.com/fatflowers/pulseboard/internal/models"
	"github.com/fatflowers/pulseboard/pkg/tool"
	"github.com/fatflowers/pulseboard/pkg/types"
)

const (
	MaxRecentCancellations = 50
	TrendMonths            = 12
	EarlyChurnDays         = 30
	LateChurnDays          = 180

	// MonthLabel formats histogram buckets, e.g. "Mar 2026".
	MonthLabel = "Jan 2006"

	reasonMetadataKey = "cancellation_reason"
	unknownReason     = "unknown"
)

type MonthBucket struct {
	Month       string          `json:"month"`
	Count       int             `json:"count"`
	RevenueLost decimal.Decimal `json:"revenueLost"`
}

type ReasonCount struct {
	Reason      string          `json:"reason"`
	Count       int             `json:"count"`
	RevenueLost decimal.Decimal `json:"revenueLost"`
}

type CancellationReport struct {
	Recent               []models.Cancellation `json:"recentCancellations"`
	TotalCancellations   int                   `json:"totalCancellations"`
	ThisMonth            int                   `json:"cancellationsThisMonth"`
	RevenueLostThisMonth decimal.Decimal       `json:"revenueLostThisMonth"`
	Monthly              []MonthBucket         `json:"monthlyTrend"`
	EarlyChurn           int                   `json:"earlyChurn"`
	LateChurn            int                   `json:"lateChurn"`
	BetaTesterChurn      int                   `json:"betaTesterChurn"`
	PayingCustomerChurn  int                   `json:"payingCustomerChurn"`
	Reasons              []ReasonCount         `json:"reasons"`
}

// CancellationAnalysis summarizes the snapshot's cancellations as of now.
func CancellationAnalysis(snap *Snapshot, now time.Time) CancellationReport {
	if snap == nil {
		snap = &Snapshot{}
	}
	monthStart := MonthStart(now)
	cs := snap.Cancellations

	recent := append([]models.Cancellation{}, cs...)
	slices.SortStableFunc(recent, func(a, b models.Cancellation) int { return b.CanceledAt.Compare(a.CanceledAt) })
	if len(recent) > MaxRecentCancellations {
		recent = recent[:MaxRecentCancellations]
	}

	r := CancellationReport{
		Recent:             recent,
		TotalCancellations: len(cs),
		Monthly:            make([]MonthBucket, 0, TrendMonths),
	}

	for i := TrendMonths - 1; i >= 0; i-- {
		start := monthStart.AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)
		b := MonthBucket{Month: start.Format(MonthLabel)}
		for _, c := range cs {
			if !c.CanceledAt.Before(start) && c.CanceledAt.Before(end) {
				b.Count++
				b.RevenueLost = b.RevenueLost.Add(c.MonthlyValue)
			}
		}
		r.Monthly = append(r.Monthly, b)
	}

	for _, c := range cs {
		if !c.CanceledAt.Before(monthStart) {
			r.ThisMonth++
			r.RevenueLostThisMonth = r.RevenueLostThisMonth.Add(c.MonthlyValue)
		}
		if c.DaysAsCustomer < EarlyChurnDays {
			r.EarlyChurn++
		}
		if c.DaysAsCustomer > LateChurnDays {
			r.LateChurn++
		}
	}

	canceled := lo.SliceToMap(cs, func(c models.Cancellation) (string, struct{}) { return c.SubscriptionID, struct{}{} })
	for i := range snap.Subscriptions {
		s := &snap.Subscriptions[i]
		if _, ok := canceled[s.ID]; !ok {
			continue
		}
		if IsBetaTester(s) {
			r.BetaTesterChurn++
		}
		if IsPaying(s) {
			r.PayingCustomerChurn++
		}
	}

	r.Reasons = reasonBreakdown(cs)
	return r
}

func reasonBreakdown(cs []models.Cancellation) []ReasonCount {
	var out []ReasonCount
	index := map[string]int{}
	for _, c := range cs {
		reason := c.Reason
		if reason == "" {
			reason = unknownReason
		}
		i, ok := index[reason]
		if !ok {
			i = len(out)
			index[reason] = i
			out = append(out, ReasonCount{Reason: reason})
		}
		out[i].Count++
		out[i].RevenueLost = out[i].RevenueLost.Add(c.MonthlyValue)
	}
	slices.SortStableFunc(out, func(a, b ReasonCount) int { return cmp.Compare(b.Count, a.Count) })
	if out == nil {
		out = []ReasonCount{}
	}
	return out
}

var periodsPerYear = map[string]int64{
	"day":   365,
	"week":  52,
	"month": 12,
	"year":  1,
}

// MonthlyValue normalizes a subscription's billed amount to one month.
// Unknown intervals are taken as monthly.
func MonthlyValue(s *models.Subscription) decimal.Decimal {
	n, ok := periodsPerYear[s.PlanInterval]
	if !ok {
		return s.DiscountedAmount
	}
	return s.DiscountedAmount.Mul(decimal.NewFromInt(n)).Div(decimal.NewFromInt(12)).Round(2)
}

func subscriptionType(interval string) string {
	switch interval {
	case "day":
		return "daily"
	case "week":
		return "weekly"
	case "month":
		return "monthly"
	case "year":
		return "yearly"
	}
	return interval
}

// DeriveCancellations builds a cancellation record for every canceled
// subscription, using the customer's succeeded payments for totals.
func DeriveCancellations(subs []models.Subscription, payments []models.Payment) []models.Cancellation {
	paid := lo.GroupBy(
		lo.Filter(payments, func(p models.Payment, _ int) bool { return p.Status == types.PaymentStatusSucceeded }),
		func(p models.Payment) string { return p.CustomerID },
	)

	var out []models.Cancellation
	for i := range subs {
		s := &subs[i]
		if s.Status != types.SubscriptionStatusCanceled {
			continue
		}
		canceledAt := s.CanceledAt
		if canceledAt == nil {
			canceledAt = s.EndedAt
		}
		if canceledAt == nil {
			continue
		}

		c := models.Cancellation{
			SubscriptionID:    s.ID,
			CustomerID:        s.CustomerID,
			CustomerEmail:     s.CustomerEmail,
			CustomerName:      s.CustomerName,
			CanceledAt:        canceledAt.UTC(),
			CancelAtPeriodEnd: s.CancelAtPeriodEnd,
			Reason:            unknownReason,
			MonthlyValue:      MonthlyValue(s),
			SubscriptionType:  subscriptionType(s.PlanInterval),
			DaysAsCustomer:    max(0, int(tool.RoundInt(canceledAt.Sub(s.StartDate).Hours()/24))),
			TotalPaid:         decimal.Zero,
			StartDate:         s.StartDate,
			EndedAt:           s.EndedAt,
		}
		if reason := s.Metadata.Data()[reasonMetadataKey]; reason != "" {
			c.Reason = reason
		}
		for _, p := range paid[s.CustomerID] {
			c.TotalPaid = c.TotalPaid.Add(p.Net())
			if c.LastPaymentDate == nil || p.Created.After(*c.LastPaymentDate) {
				c.LastPaymentDate = lo.ToPtr(p.Created)
			}
		}
		out = append(out, c)
	}
	return out
}

// MergeCancellations appends derived records for subscriptions not already
// present in previous. Existing records are never rewritten.
func MergeCancellations(previous, derived []models.Cancellation) []models.Cancellation {
	out := slices.Clone(previous)
	seen := lo.SliceToMap(previous, func(c models.Cancellation) (string, struct{}) { return c.SubscriptionID, struct{}{} })
	for _, c := range derived {
		if _, ok := seen[c.SubscriptionID]; ok {
			continue
		}
		seen[c.SubscriptionID] = struct{}{}
		out = append(out, c)
	}
	return out
}
