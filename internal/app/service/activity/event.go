package activity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	models "github.com/fatflowers/pulseboard/internal/models"
	"github.com/fatflowers/pulseboard/pkg/types"
)

// Unknown is the value substituted for a missing string dimension.
const Unknown = "unknown"

// Roles are the fixed viewer-role buckets of the feature breakdown.
var Roles = []string{"coach", "parent", "admin", "staff", Unknown}

// Event is a normalized activity record. Feature, ViewerRole and ErrorCode
// are never empty: missing values are already Unknown. Action, Route and
// HTTPStatus stay nil when the payload does not carry them. ActionPresent is
// set for any non-null action, including objects and arrays that have no text
// form.
type Event struct {
	ID         string
	ProfileID  string
	EventType  string
	Timestamp  time.Time
	Feature    string
	ViewerRole string
	ErrorCode  string
	Action     *string
	// ActionPresent marks a non-null action value.
	ActionPresent bool
	Route         *string
	HTTPStatus    *int
}

func (e *Event) IsError() bool {
	return e.EventType == types.EventTypeError
}

// Normalize turns a raw record into an Event, applying the Unknown policy to
// the string dimensions once.
func Normalize(r models.ActivityRecord) Event {
	d := r.EventDetails
	return Event{
		ID:            r.ID,
		ProfileID:     r.ProfileID,
		EventType:     r.EventType,
		Timestamp:     r.Timestamp.UTC(),
		Feature:       orUnknown(detailString(d, "feature")),
		ViewerRole:    orUnknown(detailString(d, "viewer_role")),
		ErrorCode:     orUnknown(detailString(d, "error_code")),
		Action:        detailString(d, "action"),
		ActionPresent: d["action"] != nil,
		Route:         detailString(d, "route"),
		HTTPStatus:    detailInt(d, "http_status"),
	}
}

func NormalizeAll(records []models.ActivityRecord) []Event {
	return lo.Map(records, func(r models.ActivityRecord, _ int) Event { return Normalize(r) })
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return Unknown
	}
	return *s
}

// detailString reads key as text. Scalars that are not strings are rendered
// the way they appear in JSON; objects, arrays and null have no text form.
func detailString(d map[string]any, key string) *string {
	v, ok := d[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		return &t
	case bool:
		return lo.ToPtr(strconv.FormatBool(t))
	case float64:
		return lo.ToPtr(strconv.FormatFloat(t, 'f', -1, 64))
	case json.Number:
		return lo.ToPtr(t.String())
	case int, int32, int64:
		return lo.ToPtr(fmt.Sprint(t))
	default:
		return nil
	}
}

// detailInt reads key as an integer, accepting numeric strings.
func detailInt(d map[string]any, key string) *int {
	v, ok := d[key]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return nil
		}
		return lo.ToPtr(int(t))
	case int:
		return &t
	case int64:
		return lo.ToPtr(int(t))
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return nil
		}
		return lo.ToPtr(int(n))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// Window is an inclusive time range.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Trailing returns the window [now-d, now].
func Trailing(now time.Time, d time.Duration) Window {
	return Window{From: now.Add(-d), To: now}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// InWindow keeps the events whose timestamp lies in w, preserving order.
func InWindow(events []Event, w Window) []Event {
	return lo.Filter(events, func(e Event, _ int) bool { return w.Contains(e.Timestamp) })
}

// FormatISO renders t as a UTC ISO-8601 timestamp with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
