package types

// ReportName identifies one activity report.
type ReportName string

const (
	ReportOverview         ReportName = "overview"
	ReportFeatures         ReportName = "features"
	ReportActions          ReportName = "actions"
	ReportRoles            ReportName = "roles"
	ReportDaily            ReportName = "daily"
	ReportErrors           ReportName = "errors"
	ReportErrorDetail      ReportName = "error_detail"
	ReportDrilldownFeature ReportName = "drilldown_feature"
	ReportDrilldownAction  ReportName = "drilldown_action"
	ReportDrilldownUser    ReportName = "drilldown_user"
)

var ReportNames = []ReportName{
	ReportOverview,
	ReportFeatures,
	ReportActions,
	ReportRoles,
	ReportDaily,
	ReportErrors,
	ReportErrorDetail,
	ReportDrilldownFeature,
	ReportDrilldownAction,
	ReportDrilldownUser,
}

type DateRange string

const (
	DateRange7d     DateRange = "7d"
	DateRange30d    DateRange = "30d"
	DateRangeCustom DateRange = "custom"
)

// BillingReport selects which billing metrics a fetch returns.
type BillingReport string

const (
	BillingReportAll           BillingReport = "all"
	BillingReportRevenue       BillingReport = "revenue"
	BillingReportCancellations BillingReport = "cancellations"
	BillingReportRetention     BillingReport = "retention"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
)

type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusPending   PaymentStatus = "pending"
)

// EventTypeError is the reserved activity event type for failures.
const EventTypeError = "error"
