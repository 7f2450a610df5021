package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/pulseboard/internal/app/service/billing"
	models "github.com/fatflowers/pulseboard/internal/models"
	"github.com/fatflowers/pulseboard/pkg/logctx"
	"github.com/fatflowers/pulseboard/pkg/tool"
)

const batchSize = 500

// Store keeps one billing snapshot per organization in the control-plane
// database.
type Store struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

var _ billing.SnapshotStore = (*Store)(nil)

func NewStore(db *gorm.DB, log *zap.SugaredLogger) *Store {
	return &Store{db: db, log: log}
}

func replace[T any](tx *gorm.DB, orgID string, rows []T) error {
	var zero T
	if err := tx.Where("org_id = ?", orgID).Delete(&zero).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, batchSize).Error
}

// Save replaces every row of orgID's snapshot in one transaction.
func (s *Store) Save(ctx context.Context, orgID string, snap *billing.Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subs := lo.Map(snap.Subscriptions, func(v models.Subscription, _ int) models.SnapshotSubscription {
			return models.SnapshotSubscription{OrgID: orgID, Subscription: v}
		})
		if err := replace(tx, orgID, subs); err != nil {
			return fmt.Errorf("failed to save subscriptions: %w", err)
		}
		payments := lo.Map(snap.Payments, func(v models.Payment, _ int) models.SnapshotPayment {
			return models.SnapshotPayment{OrgID: orgID, Payment: v}
		})
		if err := replace(tx, orgID, payments); err != nil {
			return fmt.Errorf("failed to save payments: %w", err)
		}
		cancellations := lo.Map(snap.Cancellations, func(v models.Cancellation, _ int) models.SnapshotCancellation {
			return models.SnapshotCancellation{OrgID: orgID, Cancellation: v}
		})
		if err := replace(tx, orgID, cancellations); err != nil {
			return fmt.Errorf("failed to save cancellations: %w", err)
		}
		coupons := lo.Map(snap.Coupons, func(v models.Coupon, _ int) models.SnapshotCoupon {
			return models.SnapshotCoupon{OrgID: orgID, Coupon: v}
		})
		if err := replace(tx, orgID, coupons); err != nil {
			return fmt.Errorf("failed to save coupons: %w", err)
		}

		state := models.SnapshotState{OrgID: orgID, SyncID: tool.GenerateUUIDV7(), SyncedAt: snap.SyncedAt}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "org_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sync_id", "synced_at", "updated_at"}),
		}).Create(&state).Error
	})
	if err != nil {
		return err
	}
	logctx.FromCtx(ctx, s.log).Infow("billing snapshot saved", "org_id", orgID, "counts", snap.Counts())
	return nil
}

func loadRows[T any](db *gorm.DB, orgID string) ([]T, error) {
	var rows []T
	err := db.Where("org_id = ?", orgID).Find(&rows).Error
	return rows, err
}

// Load returns orgID's snapshot, or nil when none was saved.
func (s *Store) Load(ctx context.Context, orgID string) (*billing.Snapshot, error) {
	db := s.db.WithContext(ctx)

	var state models.SnapshotState
	err := db.Where("org_id = ?", orgID).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot state: %w", err)
	}

	subs, err := loadRows[models.SnapshotSubscription](db, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}
	payments, err := loadRows[models.SnapshotPayment](db, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	cancellations, err := loadRows[models.SnapshotCancellation](db, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cancellations: %w", err)
	}
	coupons, err := loadRows[models.SnapshotCoupon](db, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load coupons: %w", err)
	}

	return &billing.Snapshot{
		Subscriptions: lo.Map(subs, func(r models.SnapshotSubscription, _ int) models.Subscription { return r.Subscription }),
		Payments:      lo.Map(payments, func(r models.SnapshotPayment, _ int) models.Payment { return r.Payment }),
		Cancellations: lo.Map(cancellations, func(r models.SnapshotCancellation, _ int) models.Cancellation { return r.Cancellation }),
		Coupons:       lo.Map(coupons, func(r models.SnapshotCoupon, _ int) models.Coupon { return r.Coupon }),
		SyncedAt:      state.SyncedAt.UTC(),
	}, nil
}
