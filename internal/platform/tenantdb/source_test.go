package tenantdb

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fatflowers/pulseboard/internal/app/service/activity"
	models "github.com/fatflowers/pulseboard/internal/models"
	"github.com/fatflowers/pulseboard/pkg/types"
)

var base = time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

func newTenantDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, db.AutoMigrate(
		&models.ActivityRecord{},
		&models.Profile{},
		&models.Subscription{},
		&models.Payment{},
		&models.Cancellation{},
		&models.Coupon{},
	))
	return db
}

func seedActivity(t *testing.T, db *gorm.DB) {
	t.Helper()
	rows := []models.ActivityRecord{
		{ID: "1", OrganizationID: "org-1", ProfileID: "u1", EventType: "click", Timestamp: base, EventDetails: datatypes.JSONMap{"feature": "search"}},
		{ID: "2", OrganizationID: "org-1", ProfileID: "u2", EventType: "error", Timestamp: base.Add(time.Hour), EventDetails: datatypes.JSONMap{"feature": "search", "http_status": 500}},
		{ID: "3", OrganizationID: "org-1", ProfileID: "u1", EventType: "error", Timestamp: base.Add(2 * time.Hour)},
		{ID: "4", OrganizationID: "org-2", ProfileID: "u9", EventType: "click", Timestamp: base},
		{ID: "5", OrganizationID: "org-1", ProfileID: "u1", EventType: "click", Timestamp: base.Add(-48 * time.Hour)},
	}
	require.NoError(t, db.Create(&rows).Error)
}

func ids(rows []models.ActivityRecord) []string {
	return lo.Map(rows, func(r models.ActivityRecord, _ int) string { return r.ID })
}

func TestFetchActivityRecords_Filters(t *testing.T) {
	db := newTenantDB(t)
	seedActivity(t, db)
	src := New(db, zap.NewNop().Sugar())
	ctx := context.Background()

	rows, err := src.FetchActivityRecords(ctx, "org-1", activity.Filter{From: base, To: base.Add(2 * time.Hour)})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"1", "2", "3"}, ids(rows))

	rows, err = src.FetchActivityRecords(ctx, "org-1", activity.Filter{EventType: types.EventTypeError})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"2", "3"}, ids(rows))

	rows, err = src.FetchActivityRecords(ctx, "org-1", activity.Filter{ProfileID: "u1", NewestFirst: true, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"3", "1"}, ids(rows))
}

func TestFetchActivityRecords_DecodesDetails(t *testing.T) {
	db := newTenantDB(t)
	seedActivity(t, db)
	src := New(db, zap.NewNop().Sugar())

	rows, err := src.FetchActivityRecords(context.Background(), "org-1", activity.Filter{EventType: types.EventTypeError})
	require.NoError(t, err)
	events := activity.NormalizeAll(rows)
	byID := lo.KeyBy(events, func(e activity.Event) string { return e.ID })
	require.Equal(t, "search", byID["2"].Feature)
	require.Equal(t, 500, *byID["2"].HTTPStatus)
	require.Equal(t, activity.Unknown, byID["3"].Feature)
}

func TestFetchProfiles(t *testing.T) {
	db := newTenantDB(t)
	name := "Ada"
	require.NoError(t, db.Create(&[]models.Profile{{ID: "u1", FullName: &name}, {ID: "u2"}, {ID: "u3"}}).Error)
	src := New(db, zap.NewNop().Sugar())

	rows, err := src.FetchProfiles(context.Background(), []string{"u1", "u3", "missing"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rows, err = src.FetchProfiles(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestBillingMirrorTables(t *testing.T) {
	db := newTenantDB(t)
	canceledAt := base.Add(-time.Hour)
	require.NoError(t, db.Create(&models.Subscription{
		ID: "sub_1", CustomerID: "cus_1", Status: types.SubscriptionStatusCanceled,
		PlanAmount: decimal.RequireFromString("49.99"), DiscountedAmount: decimal.RequireFromString("39.99"),
		PlanInterval: "month", StartDate: base.AddDate(0, -3, 0), CanceledAt: &canceledAt,
		Metadata: datatypes.NewJSONType(map[string]string{"cancellation_reason": "price"}),
	}).Error)
	require.NoError(t, db.Create(&models.Payment{ID: "py_1", CustomerID: "cus_1", Amount: decimal.RequireFromString("39.99"), Status: types.PaymentStatusSucceeded, Created: base}).Error)
	require.NoError(t, db.Create(&models.Coupon{ID: "BETA", Valid: true}).Error)
	src := New(db, zap.NewNop().Sugar())
	ctx := context.Background()

	subs, err := src.FetchSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.True(t, decimal.RequireFromString("39.99").Equal(subs[0].DiscountedAmount))
	require.Equal(t, "price", subs[0].Metadata.Data()["cancellation_reason"])

	payments, err := src.FetchPayments(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 1)

	cancellations, err := src.FetchCancellations(ctx)
	require.NoError(t, err)
	require.Empty(t, cancellations)

	coupons, err := src.FetchCoupons(ctx)
	require.NoError(t, err)
	require.Equal(t, "BETA", coupons[0].ID)
}

func TestActivityFilters(t *testing.T) {
	fs := ActivityFilters("org-1", activity.Filter{})
	require.Len(t, fs, 1)
	fs = ActivityFilters("org-1", activity.Filter{From: base, To: base, EventType: "error", ProfileID: "u1"})
	require.Len(t, fs, 5)
	require.Equal(t, types.CommonFilterOperatorGte, fs[1].Operator)
}
