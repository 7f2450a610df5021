package models

import "time"

// Billing snapshot rows live in the control-plane database, one set per
// organization, fully replaced on every sync.

type SnapshotSubscription struct {
	OrgID        string `gorm:"column:org_id;primary_key;type:varchar(64)"`
	Subscription `gorm:"embedded"`
}

func (SnapshotSubscription) TableName() string { return "billing_snapshot_subscriptions" }

type SnapshotPayment struct {
	OrgID   string `gorm:"column:org_id;primary_key;type:varchar(64)"`
	Payment `gorm:"embedded"`
}

func (SnapshotPayment) TableName() string { return "billing_snapshot_payments" }

type SnapshotCancellation struct {
	OrgID        string `gorm:"column:org_id;primary_key;type:varchar(64)"`
	Cancellation `gorm:"embedded"`
}

func (SnapshotCancellation) TableName() string { return "billing_snapshot_cancellations" }

type SnapshotCoupon struct {
	OrgID  string `gorm:"column:org_id;primary_key;type:varchar(64)"`
	Coupon `gorm:"embedded"`
}

func (SnapshotCoupon) TableName() string { return "billing_snapshot_coupons" }

// SnapshotState marks that an organization has a persisted snapshot.
type SnapshotState struct {
	OrgID     string    `gorm:"column:org_id;primary_key;type:varchar(64)" json:"org_id"`
	SyncID    string    `gorm:"column:sync_id;type:uuid" json:"sync_id"`
	SyncedAt  time.Time `gorm:"column:synced_at" json:"synced_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SnapshotState) TableName() string { return "billing_snapshot_state" }
