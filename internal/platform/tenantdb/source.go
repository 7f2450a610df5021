package tenantdb

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/pulseboard/internal/app/service/activity"
	"github.com/fatflowers/pulseboard/internal/app/service/billing"
	models "github.com/fatflowers/pulseboard/internal/models"
	"github.com/fatflowers/pulseboard/pkg/logctx"
	"github.com/fatflowers/pulseboard/pkg/types"
)

// Source reads activity, profiles and the payments-provider mirror tables
// from one tenant database.
type Source struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

var (
	_ activity.Source  = (*Source)(nil)
	_ billing.Provider = (*Source)(nil)
)

func New(db *gorm.DB, log *zap.SugaredLogger) *Source {
	return &Source{db: db, log: log}
}

// ActivityFilters translates an activity filter into column predicates.
func ActivityFilters(orgID string, f activity.Filter) types.Filters {
	fs := types.Filters{types.Eq("organization_id", orgID)}
	if !f.From.IsZero() {
		fs = append(fs, types.Gte("timestamp", f.From))
	}
	if !f.To.IsZero() {
		fs = append(fs, types.Lte("timestamp", f.To))
	}
	if f.EventType != "" {
		fs = append(fs, types.Eq("event_type", f.EventType))
	}
	if f.ProfileID != "" {
		fs = append(fs, types.Eq("profile_id", f.ProfileID))
	}
	return fs
}

func (s *Source) FetchActivityRecords(ctx context.Context, orgID string, f activity.Filter) ([]models.ActivityRecord, error) {
	q := s.db.WithContext(ctx).Model(&models.ActivityRecord{}).Clauses(ActivityFilters(orgID, f).Where())
	if f.NewestFirst {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []models.ActivityRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query activity_logs: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Debugw("fetched activity records", "org_id", orgID, "rows", len(rows))
	return rows, nil
}

func (s *Source) FetchProfiles(ctx context.Context, ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	var rows []models.Profile
	err := s.db.WithContext(ctx).Clauses(types.Filters{types.In("id", values...)}.Where()).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	return rows, nil
}

func fetchAll[T any](ctx context.Context, db *gorm.DB, table string) ([]T, error) {
	var rows []T
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	return rows, nil
}

func (s *Source) FetchSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	return fetchAll[models.Subscription](ctx, s.db, models.Subscription{}.TableName())
}

func (s *Source) FetchPayments(ctx context.Context) ([]models.Payment, error) {
	return fetchAll[models.Payment](ctx, s.db, models.Payment{}.TableName())
}

func (s *Source) FetchCancellations(ctx context.Context) ([]models.Cancellation, error) {
	return fetchAll[models.Cancellation](ctx, s.db, models.Cancellation{}.TableName())
}

func (s *Source) FetchCoupons(ctx context.Context) ([]models.Coupon, error) {
	return fetchAll[models.Coupon](ctx, s.db, models.Coupon{}.TableName())
}
