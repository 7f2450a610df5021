package activity

import (
	"cmp"
	"slices"
	"time"

	"github.com/samber/lo"
)

const (
	MaxFeatures        = 20
	MaxActions         = 20
	MaxTopUsers        = 10
	MaxDrilldownEvents = 50
	MaxErrorDetails    = 100
	MaxUserEvents      = 100
)

// RoleCounts is the fixed five-bucket role split of a feature. Roles outside
// the five buckets are not counted anywhere.
type RoleCounts struct {
	Coach   int `json:"coach"`
	Parent  int `json:"parent"`
	Admin   int `json:"admin"`
	Staff   int `json:"staff"`
	Unknown int `json:"unknown"`
}

func (rc *RoleCounts) add(role string) {
	switch role {
	case "coach":
		rc.Coach++
	case "parent":
		rc.Parent++
	case "admin":
		rc.Admin++
	case "staff":
		rc.Staff++
	case Unknown:
		rc.Unknown++
	}
}

type FeatureStat struct {
	Feature     string     `json:"feature"`
	Count       int        `json:"count"`
	UniqueUsers int        `json:"unique_users"`
	ByRole      RoleCounts `json:"by_role"`
}

type ActionStat struct {
	Action      string `json:"action"`
	Count       int    `json:"count"`
	UniqueUsers int    `json:"unique_users"`
	ErrorCount  int    `json:"error_count"`
}

type RoleStat struct {
	Role        string `json:"role"`
	Count       int    `json:"count"`
	UniqueUsers int    `json:"unique_users"`
}

type DayStat struct {
	Date        string `json:"date"`
	Count       int    `json:"count"`
	ErrorCount  int    `json:"error_count"`
	UniqueUsers int    `json:"unique_users"`
}

type ErrorGroup struct {
	Feature     string `json:"feature"`
	ErrorCode   string `json:"error_code"`
	Count       int    `json:"count"`
	UniqueUsers int    `json:"unique_users"`
	LastSeen    string `json:"last_seen"`
}

type ErrorDetail struct {
	ID         string  `json:"id"`
	ProfileID  string  `json:"profile_id"`
	Timestamp  string  `json:"timestamp"`
	Feature    string  `json:"feature"`
	Action     *string `json:"action"`
	ErrorCode  string  `json:"error_code"`
	HTTPStatus *int    `json:"http_status"`
	Route      *string `json:"route"`
}

type UserCount struct {
	ProfileID string `json:"profile_id"`
	Count     int    `json:"count"`
}

// EventView is an event annotated for drill-down listings. ErrorCode is only
// set by the per-user drill-down.
type EventView struct {
	ID         string  `json:"id"`
	ProfileID  string  `json:"profile_id"`
	EventType  string  `json:"event_type"`
	Timestamp  string  `json:"timestamp"`
	Feature    string  `json:"feature"`
	Action     *string `json:"action"`
	ViewerRole string  `json:"viewer_role"`
	Route      *string `json:"route"`
	ErrorCode  *string `json:"error_code,omitempty"`
}

// bucket accumulates one group. Groups are kept in first-encounter order so
// that stable sorting makes ties deterministic.
type bucket struct {
	count    int
	errors   int
	users    map[string]struct{}
	lastSeen time.Time
	roles    RoleCounts
}

type buckets[K comparable] struct {
	order []K
	byKey map[K]*bucket
}

func newBuckets[K comparable]() *buckets[K] {
	return &buckets[K]{byKey: map[K]*bucket{}}
}

func (b *buckets[K]) add(key K, e Event) *bucket {
	g, ok := b.byKey[key]
	if !ok {
		g = &bucket{users: map[string]struct{}{}}
		b.byKey[key] = g
		b.order = append(b.order, key)
	}
	g.count++
	g.users[e.ProfileID] = struct{}{}
	if e.IsError() {
		g.errors++
	}
	if e.Timestamp.After(g.lastSeen) {
		g.lastSeen = e.Timestamp
	}
	return g
}

func (b *buckets[K]) each(fn func(key K, g *bucket)) {
	for _, k := range b.order {
		fn(k, b.byKey[k])
	}
}

func byCountDesc[T any](count func(T) int) func(a, b T) int {
	return func(a, b T) int { return cmp.Compare(count(b), count(a)) }
}

func truncate[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}

// UniqueUsers counts distinct profile ids.
func UniqueUsers(events []Event) int {
	return len(lo.UniqBy(events, func(e Event) string { return e.ProfileID }))
}

// CountErrors counts events of the reserved error type.
func CountErrors(events []Event) int {
	return lo.CountBy(events, func(e Event) bool { return e.IsError() })
}

// FeatureBreakdown groups the window's events by feature, optionally keeping
// only one viewer role, and returns the top MaxFeatures by count.
func FeatureBreakdown(events []Event, w Window, role string) []FeatureStat {
	b := newBuckets[string]()
	for _, e := range InWindow(events, w) {
		if role != "" && e.ViewerRole != role {
			continue
		}
		g := b.add(e.Feature, e)
		g.roles.add(e.ViewerRole)
	}
	out := make([]FeatureStat, 0, len(b.order))
	b.each(func(feature string, g *bucket) {
		out = append(out, FeatureStat{Feature: feature, Count: g.count, UniqueUsers: len(g.users), ByRole: g.roles})
	})
	slices.SortStableFunc(out, byCountDesc(func(s FeatureStat) int { return s.Count }))
	return truncate(out, MaxFeatures)
}

// ActionBreakdown groups the window's events that carry a non-null action.
// Empty or non-scalar actions group under Unknown.
func ActionBreakdown(events []Event, w Window) []ActionStat {
	b := newBuckets[string]()
	for _, e := range InWindow(events, w) {
		if !e.ActionPresent {
			continue
		}
		b.add(orUnknown(e.Action), e)
	}
	out := make([]ActionStat, 0, len(b.order))
	b.each(func(action string, g *bucket) {
		out = append(out, ActionStat{Action: action, Count: g.count, UniqueUsers: len(g.users), ErrorCount: g.errors})
	})
	slices.SortStableFunc(out, byCountDesc(func(s ActionStat) int { return s.Count }))
	return truncate(out, MaxActions)
}

// RoleBreakdown groups every event in the window by viewer role.
func RoleBreakdown(events []Event, w Window) []RoleStat {
	b := newBuckets[string]()
	for _, e := range InWindow(events, w) {
		b.add(e.ViewerRole, e)
	}
	out := make([]RoleStat, 0, len(b.order))
	b.each(func(role string, g *bucket) {
		out = append(out, RoleStat{Role: role, Count: g.count, UniqueUsers: len(g.users)})
	})
	slices.SortStableFunc(out, byCountDesc(func(s RoleStat) int { return s.Count }))
	return out
}

// DailySeries buckets the window's events by UTC calendar date, ascending.
func DailySeries(events []Event, w Window) []DayStat {
	b := newBuckets[string]()
	for _, e := range InWindow(events, w) {
		b.add(e.Timestamp.UTC().Format(time.DateOnly), e)
	}
	out := make([]DayStat, 0, len(b.order))
	b.each(func(date string, g *bucket) {
		out = append(out, DayStat{Date: date, Count: g.count, ErrorCount: g.errors, UniqueUsers: len(g.users)})
	})
	slices.SortFunc(out, func(a, b DayStat) int { return cmp.Compare(a.Date, b.Date) })
	return out
}

type errorKey struct {
	feature string
	code    string
}

// ErrorGroups groups the window's error events by (feature, error code).
func ErrorGroups(events []Event, w Window) []ErrorGroup {
	b := newBuckets[errorKey]()
	for _, e := range InWindow(events, w) {
		if !e.IsError() {
			continue
		}
		b.add(errorKey{feature: e.Feature, code: e.ErrorCode}, e)
	}
	out := make([]ErrorGroup, 0, len(b.order))
	b.each(func(k errorKey, g *bucket) {
		out = append(out, ErrorGroup{
			Feature:     k.feature,
			ErrorCode:   k.code,
			Count:       g.count,
			UniqueUsers: len(g.users),
			LastSeen:    FormatISO(g.lastSeen),
		})
	})
	slices.SortStableFunc(out, byCountDesc(func(s ErrorGroup) int { return s.Count }))
	return out
}

// Latest returns up to n events, newest first. Events with equal timestamps
// keep their input order.
func Latest(events []Event, n int) []Event {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b Event) int { return b.Timestamp.Compare(a.Timestamp) })
	return truncate(sorted, n)
}

// ErrorDetails lists the MaxErrorDetails most recent error events in the window.
func ErrorDetails(events []Event, w Window) []ErrorDetail {
	errs := lo.Filter(InWindow(events, w), func(e Event, _ int) bool { return e.IsError() })
	return lo.Map(Latest(errs, MaxErrorDetails), func(e Event, _ int) ErrorDetail {
		return ErrorDetail{
			ID:         e.ID,
			ProfileID:  e.ProfileID,
			Timestamp:  FormatISO(e.Timestamp),
			Feature:    e.Feature,
			Action:     e.Action,
			ErrorCode:  e.ErrorCode,
			HTTPStatus: e.HTTPStatus,
			Route:      e.Route,
		}
	})
}

// MatchFeature keeps events whose (defaulted) feature equals feature.
func MatchFeature(events []Event, feature string) []Event {
	return lo.Filter(events, func(e Event, _ int) bool { return e.Feature == feature })
}

// MatchAction keeps events whose action is exactly action. Events without an
// action never match, not even "unknown".
func MatchAction(events []Event, action string) []Event {
	return lo.Filter(events, func(e Event, _ int) bool { return e.Action != nil && *e.Action == action })
}

// TopUsers counts events per profile and returns the n largest. Ties keep
// first-encounter order.
func TopUsers(events []Event, n int) []UserCount {
	b := newBuckets[string]()
	for _, e := range events {
		b.add(e.ProfileID, e)
	}
	out := make([]UserCount, 0, len(b.order))
	b.each(func(id string, g *bucket) {
		out = append(out, UserCount{ProfileID: id, Count: g.count})
	})
	slices.SortStableFunc(out, byCountDesc(func(u UserCount) int { return u.Count }))
	return truncate(out, n)
}

func toView(e Event) EventView {
	return EventView{
		ID:         e.ID,
		ProfileID:  e.ProfileID,
		EventType:  e.EventType,
		Timestamp:  FormatISO(e.Timestamp),
		Feature:    e.Feature,
		Action:     e.Action,
		ViewerRole: e.ViewerRole,
		Route:      e.Route,
	}
}

// RecentEvents returns the n newest events as drill-down views.
func RecentEvents(events []Event, n int) []EventView {
	return lo.Map(Latest(events, n), func(e Event, _ int) EventView { return toView(e) })
}

// UserEvents returns the profile's MaxUserEvents newest events in the window,
// annotated with their error code.
func UserEvents(events []Event, w Window, profileID string) []EventView {
	mine := lo.Filter(InWindow(events, w), func(e Event, _ int) bool { return e.ProfileID == profileID })
	return lo.Map(Latest(mine, MaxUserEvents), func(e Event, _ int) EventView {
		v := toView(e)
		v.ErrorCode = lo.ToPtr(e.ErrorCode)
		return v
	})
}
