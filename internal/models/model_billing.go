package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/fatflowers/pulseboard/pkg/types"
)

// Subscription mirrors a payments-provider subscription. Amounts are kept in
// the unit the provider reports; DiscountedAmount never exceeds PlanAmount.
type Subscription struct {
	ID                 string                   `gorm:"column:id;primary_key;type:varchar(128)" json:"id"`
	CustomerID         string                   `gorm:"column:customer_id;type:varchar(128);index" json:"customerId"`
	CustomerEmail      string                   `gorm:"column:customer_email" json:"customerEmail"`
	CustomerName       string                   `gorm:"column:customer_name" json:"customerName"`
	Status             types.SubscriptionStatus `gorm:"column:status;type:varchar(32)" json:"status"`
	PlanAmount         decimal.Decimal          `gorm:"column:plan_amount;type:numeric(20,2)" json:"planAmount"`
	PlanInterval       string                   `gorm:"column:plan_interval;type:varchar(16)" json:"planInterval"`
	Currency           string                   `gorm:"column:currency;type:varchar(8)" json:"currency"`
	CurrentPeriodStart time.Time                `gorm:"column:current_period_start" json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time                `gorm:"column:current_period_end" json:"currentPeriodEnd"`
	CanceledAt         *time.Time               `gorm:"column:canceled_at" json:"canceledAt"`
	CancelAtPeriodEnd  bool                     `gorm:"column:cancel_at_period_end" json:"cancelAtPeriodEnd"`
	StartDate          time.Time                `gorm:"column:start_date" json:"startDate"`
	EndedAt            *time.Time               `gorm:"column:ended_at" json:"endedAt"`
	TrialStart         *time.Time               `gorm:"column:trial_start" json:"trialStart"`
	TrialEnd           *time.Time               `gorm:"column:trial_end" json:"trialEnd"`
	CouponID           *string                  `gorm:"column:coupon_id" json:"couponId"`
	CouponName         *string                  `gorm:"column:coupon_name" json:"couponName"`
	CouponPercentOff   *float64                 `gorm:"column:coupon_percent_off" json:"couponPercentOff"`
	CouponAmountOff    decimal.NullDecimal      `gorm:"column:coupon_amount_off;type:numeric(20,2)" json:"couponAmountOff"`
	CouponDuration     *string                  `gorm:"column:coupon_duration" json:"couponDuration"`
	DiscountedAmount   decimal.Decimal          `gorm:"column:discounted_amount;type:numeric(20,2)" json:"discountedAmount"`
	// Metadata is the provider's free-form key/value bag.
	Metadata datatypes.JSONType[map[string]string] `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (Subscription) TableName() string {
	return "billing_subscriptions"
}

// HasCoupon reports whether any coupon is attached.
func (s *Subscription) HasCoupon() bool {
	return s != nil && s.CouponID != nil && *s.CouponID != ""
}

type Payment struct {
	ID             string              `gorm:"column:id;primary_key;type:varchar(128)" json:"id"`
	CustomerID     string              `gorm:"column:customer_id;type:varchar(128);index" json:"customerId"`
	CustomerEmail  string              `gorm:"column:customer_email" json:"customerEmail"`
	Amount         decimal.Decimal     `gorm:"column:amount;type:numeric(20,2)" json:"amount"`
	AmountRefunded decimal.Decimal     `gorm:"column:amount_refunded;type:numeric(20,2)" json:"amountRefunded"`
	Currency       string              `gorm:"column:currency;type:varchar(8)" json:"currency"`
	Status         types.PaymentStatus `gorm:"column:status;type:varchar(32)" json:"status"`
	Created        time.Time           `gorm:"column:created" json:"created"`
	InvoiceID      *string             `gorm:"column:invoice_id" json:"invoiceId"`
	Description    *string             `gorm:"column:description" json:"description"`
	FailureMessage *string             `gorm:"column:failure_message" json:"failureMessage"`
	Refunded       bool                `gorm:"column:refunded" json:"refunded"`
}

func (Payment) TableName() string {
	return "billing_payments"
}

// Net is the amount kept after refunds.
func (p *Payment) Net() decimal.Decimal {
	return p.Amount.Sub(p.AmountRefunded)
}

// Cancellation is derived once when a subscription becomes canceled and is
// never rewritten afterwards.
type Cancellation struct {
	SubscriptionID    string          `gorm:"column:subscription_id;primary_key;type:varchar(128)" json:"subscriptionId"`
	CustomerID        string          `gorm:"column:customer_id;type:varchar(128)" json:"customerId"`
	CustomerEmail     string          `gorm:"column:customer_email" json:"customerEmail"`
	CustomerName      string          `gorm:"column:customer_name" json:"customerName"`
	CanceledAt        time.Time       `gorm:"column:canceled_at" json:"canceledAt"`
	CancelAtPeriodEnd bool            `gorm:"column:cancel_at_period_end" json:"cancelAtPeriodEnd"`
	Reason            string          `gorm:"column:reason" json:"reason"`
	MonthlyValue      decimal.Decimal `gorm:"column:monthly_value;type:numeric(20,2)" json:"monthlyValue"`
	SubscriptionType  string          `gorm:"column:subscription_type;type:varchar(16)" json:"subscriptionType"`
	DaysAsCustomer    int             `gorm:"column:days_as_customer" json:"daysAsCustomer"`
	TotalPaid         decimal.Decimal `gorm:"column:total_paid;type:numeric(20,2)" json:"totalPaid"`
	LastPaymentDate   *time.Time      `gorm:"column:last_payment_date" json:"lastPaymentDate"`
	StartDate         time.Time       `gorm:"column:start_date" json:"startDate"`
	EndedAt           *time.Time      `gorm:"column:ended_at" json:"endedAt"`
}

func (Cancellation) TableName() string {
	return "billing_cancellations"
}

type Coupon struct {
	ID               string              `gorm:"column:id;primary_key;type:varchar(128)" json:"id"`
	Name             string              `gorm:"column:name" json:"name"`
	PercentOff       *float64            `gorm:"column:percent_off" json:"percentOff"`
	AmountOff        decimal.NullDecimal `gorm:"column:amount_off;type:numeric(20,2)" json:"amountOff"`
	Currency         string              `gorm:"column:currency;type:varchar(8)" json:"currency"`
	Duration         string              `gorm:"column:duration;type:varchar(16)" json:"duration"`
	DurationInMonths *int                `gorm:"column:duration_in_months" json:"durationInMonths"`
	TimesRedeemed    int                 `gorm:"column:times_redeemed" json:"timesRedeemed"`
	MaxRedemptions   *int                `gorm:"column:max_redemptions" json:"maxRedemptions"`
	Valid            bool                `gorm:"column:valid" json:"valid"`
}

func (Coupon) TableName() string {
	return "billing_coupons"
}
