package billing

import (
	"strings"

	models "github.com/fatflowers/pulseboard/internal/models"
)

// The three coupon predicates are independent: a subscription can be both a
// beta tester and paying (a "beta" coupon id with 50% off, say). Callers
// count each bucket on its own.

func percentOff(s *models.Subscription) float64 {
	if s.CouponPercentOff == nil {
		return 0
	}
	return *s.CouponPercentOff
}

// IsBetaTester classifies non-revenue subscriptions: a full discount, a
// coupon id containing "beta" in any case, or a forever coupon of 100% or
// more.
func IsBetaTester(s *models.Subscription) bool {
	pct := percentOff(s)
	if pct == 100 {
		return true
	}
	if s.CouponID != nil && strings.Contains(strings.ToLower(*s.CouponID), "beta") {
		return true
	}
	return s.CouponDuration != nil && *s.CouponDuration == "forever" && pct >= 100
}

// IsDiscounted holds for a coupon with a partial percent discount.
func IsDiscounted(s *models.Subscription) bool {
	pct := percentOff(s)
	return s.HasCoupon() && pct > 0 && pct < 100
}

// IsPaying holds when there is no coupon or it leaves something to pay.
func IsPaying(s *models.Subscription) bool {
	return !s.HasCoupon() || percentOff(s) < 100
}
