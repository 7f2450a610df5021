package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	models "github.com/fatflowers/pulseboard/internal/models"
	"github.com/fatflowers/pulseboard/pkg/clock"
	"github.com/fatflowers/pulseboard/pkg/types"
)

// stubSource filters an in-memory slice the way the tenant database would.
type stubSource struct {
	mu       sync.Mutex
	records  []models.ActivityRecord
	profiles []models.Profile
	failOn   func(f Filter) bool
	failProf bool
	calls    []Filter
}

func (s *stubSource) FetchActivityRecords(_ context.Context, _ string, f Filter) ([]models.ActivityRecord, error) {
	s.mu.Lock()
	s.calls = append(s.calls, f)
	s.mu.Unlock()
	if s.failOn != nil && s.failOn(f) {
		return nil, errors.New("connection reset")
	}
	out := lo.Filter(s.records, func(r models.ActivityRecord, _ int) bool {
		if !f.From.IsZero() && r.Timestamp.Before(f.From) {
			return false
		}
		if !f.To.IsZero() && r.Timestamp.After(f.To) {
			return false
		}
		if f.EventType != "" && r.EventType != f.EventType {
			return false
		}
		return f.ProfileID == "" || r.ProfileID == f.ProfileID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *stubSource) FetchProfiles(_ context.Context, ids []string) ([]models.Profile, error) {
	if s.failProf {
		return nil, errors.New("profiles unavailable")
	}
	return lo.Filter(s.profiles, func(p models.Profile, _ int) bool { return lo.Contains(ids, p.ID) }), nil
}

func newTestService(now time.Time) (*Service, *observer.ObservedLogs) {
	core, logs := observer.New(zap.WarnLevel)
	return NewService(zap.New(core).Sugar(), clock.NewFake(now)), logs
}

func TestService_OverviewUsesTrailingWindows(t *testing.T) {
	now := day1
	src := &stubSource{records: []models.ActivityRecord{
		rec("1", "u1", "click", now.Add(-time.Hour), nil),
		rec("2", "u2", types.EventTypeError, now.Add(-3*24*time.Hour), nil),
		rec("3", "u3", types.EventTypeError, now.Add(-20*24*time.Hour), nil),
	}}
	svc, _ := newTestService(now)

	got := svc.Overview(context.Background(), src, "org-1")
	require.Equal(t, overviewOf(NormalizeAll(src.records), now), got.Overview)
	require.Equal(t, 2, got.Overview.ActiveUsers7d)
	require.Equal(t, "50.00", got.Overview.ErrorRate7d)
	require.Equal(t, "66.67", got.Overview.ErrorRate30d)
	require.Len(t, src.calls, 6)
}

func TestService_OverviewDegradesFailedCountToZero(t *testing.T) {
	now := day1
	src := &stubSource{
		records: []models.ActivityRecord{
			rec("1", "u1", "click", now.Add(-time.Hour), nil),
			rec("2", "u1", types.EventTypeError, now.Add(-time.Hour), nil),
		},
		failOn: func(f Filter) bool { return f.EventType == types.EventTypeError },
	}
	svc, logs := newTestService(now)

	got := svc.Overview(context.Background(), src, "org-1").Overview
	require.Equal(t, 2, got.TotalEvents7d)
	require.Equal(t, 1, got.ActiveUsers30d)
	require.Zero(t, got.Errors7d)
	require.Zero(t, got.Errors30d)
	require.Equal(t, "0.00", got.ErrorRate7d)
	require.Equal(t, 2, logs.FilterMessage("activity sub-query failed").Len())
}

func TestService_FeaturesFailureIsEmpty(t *testing.T) {
	src := &stubSource{failOn: func(Filter) bool { return true }}
	svc, logs := newTestService(day1)

	got := svc.Features(context.Background(), src, "org-1", wide, "")
	require.NotNil(t, got.Features)
	require.Empty(t, got.Features)
	require.Equal(t, 1, logs.Len())
}

func TestService_ErrorsOnlyQueriesErrorEvents(t *testing.T) {
	src := &stubSource{records: []models.ActivityRecord{
		rec("1", "u1", types.EventTypeError, day1, map[string]any{"feature": "search", "error_code": "E1"}),
		rec("2", "u1", "click", day1, map[string]any{"feature": "search", "error_code": "E1"}),
	}}
	svc, _ := newTestService(day1)

	got := svc.Errors(context.Background(), src, "org-1", wide)
	require.Len(t, got.Errors, 1)
	require.Equal(t, 1, got.Errors[0].Count)
	require.Equal(t, types.EventTypeError, src.calls[0].EventType)
}

func TestService_DrilldownFeature(t *testing.T) {
	name := "Ada Lovelace"
	email := "ada@example.com"
	src := &stubSource{
		records: []models.ActivityRecord{
			rec("1", "u1", "click", day1, map[string]any{"feature": "search"}),
			rec("2", "u1", "click", day1.Add(time.Minute), map[string]any{"feature": "search"}),
			rec("3", "u2", "click", day1.Add(2*time.Minute), map[string]any{"feature": "search"}),
			rec("4", "u3", "click", day1, map[string]any{"feature": "roster"}),
		},
		profiles: []models.Profile{{ID: "u1", FullName: &name, Email: &email}},
	}
	svc, _ := newTestService(day1)

	got := svc.DrilldownFeature(context.Background(), src, "org-1", wide, "search")
	require.Equal(t, "feature", got.Dimension)
	require.Equal(t, "search", got.Value)
	require.Equal(t, 3, got.TotalEvents)
	require.Equal(t, 2, got.UniqueUsers)
	require.Equal(t, []TopUser{
		{ProfileID: "u1", Name: name, Email: &email, Count: 2},
		{ProfileID: "u2", Name: "Unknown", Count: 1},
	}, got.TopUsers)
	require.Equal(t, []string{"3", "2", "1"}, lo.Map(got.RecentEvents, func(v EventView, _ int) string { return v.ID }))
}

func TestService_DrilldownActionMissingProfiles(t *testing.T) {
	src := &stubSource{
		records:  []models.ActivityRecord{rec("1", "u1", "click", day1, map[string]any{"action": "save"})},
		failProf: true,
	}
	svc, logs := newTestService(day1)

	got := svc.DrilldownAction(context.Background(), src, "org-1", wide, "save")
	require.Equal(t, 1, got.TotalEvents)
	require.Equal(t, "Unknown", got.TopUsers[0].Name)
	require.Nil(t, got.TopUsers[0].Email)
	require.Equal(t, 1, logs.FilterMessage("profile lookup failed").Len())
}

func TestService_DrilldownUser(t *testing.T) {
	name := "Grace"
	src := &stubSource{
		records: []models.ActivityRecord{
			rec("1", "u1", "click", day1, nil),
			rec("2", "u2", "click", day1, nil),
			rec("3", "u1", types.EventTypeError, day1.Add(time.Minute), map[string]any{"error_code": "E7"}),
		},
		profiles: []models.Profile{{ID: "u1", FullName: &name}},
	}
	svc, _ := newTestService(day1)

	got := svc.DrilldownUser(context.Background(), src, "org-1", wide, "u1")
	require.Equal(t, UserProfile{ID: "u1", Name: name}, got.Profile)
	require.Equal(t, 2, got.TotalEvents)
	require.Equal(t, "E7", *got.Events[0].ErrorCode)
	require.Equal(t, Unknown, *got.Events[1].ErrorCode)
}

func TestService_DrilldownUserUnknownProfile(t *testing.T) {
	svc, _ := newTestService(day1)
	got := svc.DrilldownUser(context.Background(), &stubSource{}, "org-1", wide, "ghost")
	require.Equal(t, UserProfile{ID: "ghost", Name: "Unknown"}, got.Profile)
	require.Zero(t, got.TotalEvents)
	require.Empty(t, got.Events)
}

func TestDisplayName(t *testing.T) {
	empty := ""
	full := "Jo"
	require.Equal(t, "Unknown", DisplayName(nil))
	require.Equal(t, "Unknown", DisplayName(&models.Profile{FullName: &empty}))
	require.Equal(t, "Jo", DisplayName(&models.Profile{FullName: &full}))
}
