package activity

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	models "github.com/fatflowers/pulseboard/internal/models"
	"github.com/fatflowers/pulseboard/pkg/clock"
	"github.com/fatflowers/pulseboard/pkg/logctx"
	"github.com/fatflowers/pulseboard/pkg/types"
)

// Filter narrows a record fetch. Zero fields do not filter.
type Filter struct {
	From      time.Time
	To        time.Time
	EventType string
	ProfileID string
	// Limit caps the rows returned; NewestFirst orders them by timestamp desc.
	Limit       int
	NewestFirst bool
}

func WindowFilter(w Window) Filter {
	return Filter{From: w.From, To: w.To}
}

// Source supplies raw activity rows and profiles for one organization's
// tenant database.
type Source interface {
	FetchActivityRecords(ctx context.Context, orgID string, f Filter) ([]models.ActivityRecord, error)
	FetchProfiles(ctx context.Context, ids []string) ([]models.Profile, error)
}

type OverviewReport struct {
	Overview Overview `json:"overview"`
}

type FeaturesReport struct {
	Features []FeatureStat `json:"features"`
}

type ActionsReport struct {
	Actions []ActionStat `json:"actions"`
}

type RolesReport struct {
	Roles []RoleStat `json:"roles"`
}

type DailyReport struct {
	Daily []DayStat `json:"daily"`
}

type ErrorsReport struct {
	Errors []ErrorGroup `json:"errors"`
}

type ErrorDetailReport struct {
	Errors []ErrorDetail `json:"errors"`
}

type TopUser struct {
	ProfileID string  `json:"profile_id"`
	Name      string  `json:"name"`
	Email     *string `json:"email"`
	Count     int     `json:"count"`
}

type DrilldownReport struct {
	Dimension    string      `json:"dimension"`
	Value        string      `json:"value"`
	TotalEvents  int         `json:"total_events"`
	UniqueUsers  int         `json:"unique_users"`
	TopUsers     []TopUser   `json:"top_users"`
	RecentEvents []EventView `json:"recent_events"`
}

type UserProfile struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

type UserDrilldownReport struct {
	Profile     UserProfile `json:"profile"`
	TotalEvents int         `json:"total_events"`
	Events      []EventView `json:"events"`
}

// DisplayName is the profile's full name, or "Unknown".
func DisplayName(p *models.Profile) string {
	if p == nil || p.FullName == nil || *p.FullName == "" {
		return "Unknown"
	}
	return *p.FullName
}

// Service runs activity reports. Sub-query failures are logged and treated
// as empty results.
type Service struct {
	log   *zap.SugaredLogger
	clock clock.Clock
}

func NewService(log *zap.SugaredLogger, clk clock.Clock) *Service {
	return &Service{log: log, clock: clk}
}

func (s *Service) fetch(ctx context.Context, src Source, orgID, query string, f Filter) []Event {
	rows, err := src.FetchActivityRecords(ctx, orgID, f)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("activity sub-query failed", "org_id", orgID, "query", query, "err", err)
		return nil
	}
	return NormalizeAll(rows)
}

func (s *Service) profiles(ctx context.Context, src Source, ids []string) map[string]*models.Profile {
	out := map[string]*models.Profile{}
	if len(ids) == 0 {
		return out
	}
	rows, err := src.FetchProfiles(ctx, ids)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("profile lookup failed", "count", len(ids), "err", err)
		return out
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out
}

// Overview runs the six windowed counts concurrently. Their windows are the
// trailing 7 and 30 days from now, independent of any requested range.
func (s *Service) Overview(ctx context.Context, src Source, orgID string) OverviewReport {
	now := s.clock.Now()
	short, long := Trailing(now, ShortWindow), Trailing(now, LongWindow)

	var c OverviewCounts
	var g errgroup.Group
	g.Go(func() error {
		c.ActiveUsers7d = UniqueUsers(InWindow(s.fetch(ctx, src, orgID, "active_users_7d", WindowFilter(short)), short))
		return nil
	})
	g.Go(func() error {
		c.ActiveUsers30d = UniqueUsers(InWindow(s.fetch(ctx, src, orgID, "active_users_30d", WindowFilter(long)), long))
		return nil
	})
	g.Go(func() error {
		c.TotalEvents7d = len(InWindow(s.fetch(ctx, src, orgID, "total_events_7d", WindowFilter(short)), short))
		return nil
	})
	g.Go(func() error {
		c.TotalEvents30d = len(InWindow(s.fetch(ctx, src, orgID, "total_events_30d", WindowFilter(long)), long))
		return nil
	})
	g.Go(func() error {
		f := WindowFilter(short)
		f.EventType = types.EventTypeError
		c.Errors7d = CountErrors(InWindow(s.fetch(ctx, src, orgID, "errors_7d", f), short))
		return nil
	})
	g.Go(func() error {
		f := WindowFilter(long)
		f.EventType = types.EventTypeError
		c.Errors30d = CountErrors(InWindow(s.fetch(ctx, src, orgID, "errors_30d", f), long))
		return nil
	})
	_ = g.Wait()

	return OverviewReport{Overview: BuildOverview(c)}
}

func (s *Service) Features(ctx context.Context, src Source, orgID string, w Window, role string) FeaturesReport {
	events := s.fetch(ctx, src, orgID, "features", WindowFilter(w))
	return FeaturesReport{Features: FeatureBreakdown(events, w, role)}
}

func (s *Service) Actions(ctx context.Context, src Source, orgID string, w Window) ActionsReport {
	events := s.fetch(ctx, src, orgID, "actions", WindowFilter(w))
	return ActionsReport{Actions: ActionBreakdown(events, w)}
}

func (s *Service) Roles(ctx context.Context, src Source, orgID string, w Window) RolesReport {
	events := s.fetch(ctx, src, orgID, "roles", WindowFilter(w))
	return RolesReport{Roles: RoleBreakdown(events, w)}
}

func (s *Service) Daily(ctx context.Context, src Source, orgID string, w Window) DailyReport {
	events := s.fetch(ctx, src, orgID, "daily", WindowFilter(w))
	return DailyReport{Daily: DailySeries(events, w)}
}

func (s *Service) Errors(ctx context.Context, src Source, orgID string, w Window) ErrorsReport {
	f := WindowFilter(w)
	f.EventType = types.EventTypeError
	events := s.fetch(ctx, src, orgID, "errors", f)
	return ErrorsReport{Errors: ErrorGroups(events, w)}
}

func (s *Service) ErrorDetail(ctx context.Context, src Source, orgID string, w Window) ErrorDetailReport {
	f := WindowFilter(w)
	f.EventType = types.EventTypeError
	f.Limit = MaxErrorDetails
	f.NewestFirst = true
	events := s.fetch(ctx, src, orgID, "error_detail", f)
	return ErrorDetailReport{Errors: ErrorDetails(events, w)}
}

func (s *Service) DrilldownFeature(ctx context.Context, src Source, orgID string, w Window, feature string) DrilldownReport {
	events := InWindow(s.fetch(ctx, src, orgID, "drilldown_feature", WindowFilter(w)), w)
	return s.drilldown(ctx, src, "feature", feature, MatchFeature(events, feature))
}

func (s *Service) DrilldownAction(ctx context.Context, src Source, orgID string, w Window, action string) DrilldownReport {
	events := InWindow(s.fetch(ctx, src, orgID, "drilldown_action", WindowFilter(w)), w)
	return s.drilldown(ctx, src, "action", action, MatchAction(events, action))
}

func (s *Service) drilldown(ctx context.Context, src Source, dimension, value string, matched []Event) DrilldownReport {
	top := TopUsers(matched, MaxTopUsers)
	profiles := s.profiles(ctx, src, lo.Map(top, func(u UserCount, _ int) string { return u.ProfileID }))

	return DrilldownReport{
		Dimension:   dimension,
		Value:       value,
		TotalEvents: len(matched),
		UniqueUsers: UniqueUsers(matched),
		TopUsers: lo.Map(top, func(u UserCount, _ int) TopUser {
			p := profiles[u.ProfileID]
			var email *string
			if p != nil {
				email = p.Email
			}
			return TopUser{ProfileID: u.ProfileID, Name: DisplayName(p), Email: email, Count: u.Count}
		}),
		RecentEvents: RecentEvents(matched, MaxDrilldownEvents),
	}
}

// DrilldownUser resolves the profile and its newest events concurrently.
func (s *Service) DrilldownUser(ctx context.Context, src Source, orgID string, w Window, profileID string) UserDrilldownReport {
	var (
		profiles map[string]*models.Profile
		events   []Event
		g        errgroup.Group
	)
	g.Go(func() error {
		profiles = s.profiles(ctx, src, []string{profileID})
		return nil
	})
	g.Go(func() error {
		f := WindowFilter(w)
		f.ProfileID = profileID
		f.Limit = MaxUserEvents
		f.NewestFirst = true
		events = s.fetch(ctx, src, orgID, "drilldown_user", f)
		return nil
	})
	_ = g.Wait()

	p := profiles[profileID]
	profile := UserProfile{ID: profileID, Name: DisplayName(p)}
	if p != nil {
		profile.Email = p.Email
	}
	views := UserEvents(events, w, profileID)
	return UserDrilldownReport{Profile: profile, TotalEvents: len(views), Events: views}
}
