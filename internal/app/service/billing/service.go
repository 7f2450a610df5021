package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	models "github.com/fatflowers/pulseboard/internal/models"
	"github.com/fatflowers/pulseboard/pkg/clock"
	"github.com/fatflowers/pulseboard/pkg/logctx"
	"github.com/fatflowers/pulseboard/pkg/metrics"
	"github.com/fatflowers/pulseboard/pkg/types"
)

var ErrUnknownReport = errors.New("unknown billing report")

// Metrics holds the computed sections; unrequested ones stay nil.
type Metrics struct {
	Revenue       *RevenueReport      `json:"revenue,omitempty"`
	Cancellations *CancellationReport `json:"cancellations,omitempty"`
	Retention     *RetentionReport    `json:"retention,omitempty"`
}

type SyncResult struct {
	Persisted bool           `json:"persisted"`
	SyncedAt  time.Time      `json:"syncedAt"`
	Counts    SnapshotCounts `json:"counts"`
	Metrics
}

type FetchResult struct {
	HasData  bool           `json:"hasData"`
	SyncedAt *time.Time     `json:"syncedAt"`
	Counts   SnapshotCounts `json:"counts"`
	Metrics
}

// ValidateReport accepts the known report names; empty means all.
func ValidateReport(report types.BillingReport) error {
	switch report {
	case "", types.BillingReportAll, types.BillingReportRevenue, types.BillingReportCancellations, types.BillingReportRetention:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownReport, report)
}

// Compute runs the metric sections selected by report over snap.
func Compute(snap *Snapshot, report types.BillingReport, now time.Time) (Metrics, error) {
	var m Metrics
	if err := ValidateReport(report); err != nil {
		return m, err
	}
	all := report == "" || report == types.BillingReportAll
	if all || report == types.BillingReportRevenue {
		r := RevenueMetrics(snap, now)
		m.Revenue = &r
	}
	if all || report == types.BillingReportCancellations {
		c := CancellationAnalysis(snap, now)
		m.Cancellations = &c
	}
	if all || report == types.BillingReportRetention {
		r := RetentionAnalysis(snap, now)
		m.Retention = &r
	}
	return m, nil
}

type Service struct {
	log      *zap.SugaredLogger
	clock    clock.Clock
	store    SnapshotStore
	recorder *metrics.Recorder
}

func NewService(log *zap.SugaredLogger, clk clock.Clock, store SnapshotStore, recorder *metrics.Recorder) *Service {
	return &Service{log: log, clock: clk, store: store, recorder: recorder}
}

// Sync loads every collection from p concurrently, merges cancellations with
// the ones already recorded, persists the result as orgID's snapshot and
// returns fresh metrics. A failed load fails the sync; a failed save only
// clears Persisted.
func (s *Service) Sync(ctx context.Context, orgID string, p Provider) (res *SyncResult, err error) {
	start := time.Now()
	defer func() { s.recorder.ObserveReport("billing", "sync", start, err) }()
	log := logctx.FromCtx(ctx, s.log)

	var (
		subs     []models.Subscription
		payments []models.Payment
		canceled []models.Cancellation
		coupons  []models.Coupon
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		subs, err = p.FetchSubscriptions(gctx)
		return wrapLoad("subscriptions", err)
	})
	g.Go(func() (err error) {
		payments, err = p.FetchPayments(gctx)
		return wrapLoad("payments", err)
	})
	g.Go(func() (err error) {
		canceled, err = p.FetchCancellations(gctx)
		return wrapLoad("cancellations", err)
	})
	g.Go(func() (err error) {
		coupons, err = p.FetchCoupons(gctx)
		return wrapLoad("coupons", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var recorded []models.Cancellation
	if prev, err := s.store.Load(ctx, orgID); err != nil {
		log.Warnw("load previous billing snapshot failed", "org_id", orgID, "err", err)
	} else if prev != nil {
		recorded = prev.Cancellations
	}
	recorded = MergeCancellations(recorded, canceled)

	now := s.clock.Now()
	snap := &Snapshot{
		Subscriptions: subs,
		Payments:      payments,
		Cancellations: MergeCancellations(recorded, DeriveCancellations(subs, payments)),
		Coupons:       coupons,
		SyncedAt:      now,
	}

	persisted := true
	if err := s.store.Save(ctx, orgID, snap); err != nil {
		persisted = false
		log.Errorw("persist billing snapshot failed", "org_id", orgID, "err", err)
	}
	s.recorder.SnapshotPersisted(persisted)

	m, err := Compute(snap, types.BillingReportAll, now)
	if err != nil {
		return nil, err
	}
	log.Infow("billing synced", "org_id", orgID, "persisted", persisted,
		"subscriptions", len(subs), "payments", len(payments), "cancellations", len(snap.Cancellations))
	return &SyncResult{Persisted: persisted, SyncedAt: now, Counts: snap.Counts(), Metrics: m}, nil
}

func wrapLoad(what string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", what, err)
	}
	return nil
}

// Fetch computes metrics from orgID's persisted snapshot. A missing or
// unreadable snapshot yields metrics over an empty one with HasData unset.
func (s *Service) Fetch(ctx context.Context, orgID string, report types.BillingReport) (res *FetchResult, err error) {
	start := time.Now()
	defer func() { s.recorder.ObserveReport("billing", "fetch", start, err) }()

	if err := ValidateReport(report); err != nil {
		return nil, err
	}
	snap, loadErr := s.store.Load(ctx, orgID)
	if loadErr != nil {
		logctx.FromCtx(ctx, s.log).Errorw("load billing snapshot failed", "org_id", orgID, "err", loadErr)
		snap = nil
	}
	res = &FetchResult{HasData: snap != nil}
	if snap != nil {
		res.SyncedAt = &snap.SyncedAt
		res.Counts = snap.Counts()
	}
	res.Metrics, err = Compute(snap, report, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return res, nil
}
