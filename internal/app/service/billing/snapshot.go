package billing

import (
	"context"
	"time"

	models "github.com/fatflowers/pulseboard/internal/models"
)

// Snapshot is one organization's synced billing working set. Metrics are
// always computed from an explicit snapshot, never from shared state.
type Snapshot struct {
	Subscriptions []models.Subscription `json:"subscriptions"`
	Payments      []models.Payment      `json:"payments"`
	Cancellations []models.Cancellation `json:"cancellations"`
	Coupons       []models.Coupon       `json:"coupons"`
	SyncedAt      time.Time             `json:"syncedAt"`
}

type SnapshotCounts struct {
	Subscriptions int `json:"subscriptions"`
	Payments      int `json:"payments"`
	Cancellations int `json:"cancellations"`
	Coupons       int `json:"coupons"`
}

func (s *Snapshot) Counts() SnapshotCounts {
	if s == nil {
		return SnapshotCounts{}
	}
	return SnapshotCounts{
		Subscriptions: len(s.Subscriptions),
		Payments:      len(s.Payments),
		Cancellations: len(s.Cancellations),
		Coupons:       len(s.Coupons),
	}
}

// Provider returns the full record collections of a payments account.
type Provider interface {
	FetchSubscriptions(ctx context.Context) ([]models.Subscription, error)
	FetchPayments(ctx context.Context) ([]models.Payment, error)
	FetchCancellations(ctx context.Context) ([]models.Cancellation, error)
	FetchCoupons(ctx context.Context) ([]models.Coupon, error)
}

// SnapshotStore persists snapshots per organization. Load returns nil, nil
// when nothing was saved yet.
type SnapshotStore interface {
	Save(ctx context.Context, orgID string, snap *Snapshot) error
	Load(ctx context.Context, orgID string) (*Snapshot, error)
}
