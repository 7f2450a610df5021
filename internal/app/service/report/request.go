package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/fatflowers/pulseboard/internal/app/service/activity"
	"github.com/fatflowers/pulseboard/pkg/types"
)

var (
	ErrMissingParameter = errors.New("missing required parameter")
	ErrUnknownReport    = errors.New("unknown report")
	ErrInvalidRange     = errors.New("invalid date range")
)

// Request selects one activity report for one organization.
type Request struct {
	OrgID     string           `form:"org_id" json:"org_id"`
	Metric    types.ReportName `form:"metric" json:"metric"`
	Range     types.DateRange  `form:"range" json:"range"`
	From      string           `form:"from" json:"from"`
	To        string           `form:"to" json:"to"`
	Role      string           `form:"role" json:"role"`
	Feature   string           `form:"feature" json:"feature"`
	Action    string           `form:"action" json:"action"`
	ProfileID string           `form:"profile_id" json:"profile_id"`
}

// required lists the dimension parameter each drill-down needs.
var required = map[types.ReportName]func(*Request) (string, string){
	types.ReportDrilldownFeature: func(r *Request) (string, string) { return "feature", r.Feature },
	types.ReportDrilldownAction:  func(r *Request) (string, string) { return "action", r.Action },
	types.ReportDrilldownUser:    func(r *Request) (string, string) { return "profile_id", r.ProfileID },
}

// Normalize applies defaults and checks the parameters without touching any
// data. defaultRange is used when Range is empty.
func (r *Request) Normalize(defaultRange types.DateRange) error {
	r.OrgID = strings.TrimSpace(r.OrgID)
	if r.OrgID == "" {
		return fmt.Errorf("%w: org_id", ErrMissingParameter)
	}
	if r.Metric == "" {
		r.Metric = types.ReportOverview
	}
	if !lo.Contains(types.ReportNames, r.Metric) {
		return fmt.Errorf("%w: %s", ErrUnknownReport, r.Metric)
	}
	if param, ok := required[r.Metric]; ok {
		if name, value := param(r); value == "" {
			return fmt.Errorf("%w: %s", ErrMissingParameter, name)
		}
	}
	if r.Range == "" {
		r.Range = defaultRange
	}
	return nil
}

// Window resolves the request's date range against now.
func (r *Request) Window(now time.Time) (activity.Window, error) {
	switch r.Range {
	case types.DateRange7d:
		return activity.Trailing(now, 7*24*time.Hour), nil
	case types.DateRange30d:
		return activity.Trailing(now, 30*24*time.Hour), nil
	case types.DateRangeCustom:
		if r.From == "" || r.To == "" {
			return activity.Window{}, fmt.Errorf("%w: custom range needs from and to", ErrMissingParameter)
		}
		from, err := parseBound(r.From, false)
		if err != nil {
			return activity.Window{}, err
		}
		to, err := parseBound(r.To, true)
		if err != nil {
			return activity.Window{}, err
		}
		if from.After(to) {
			return activity.Window{}, fmt.Errorf("%w: from is after to", ErrInvalidRange)
		}
		return activity.Window{From: from, To: to}, nil
	}
	return activity.Window{}, fmt.Errorf("%w: range %q", ErrInvalidRange, r.Range)
}

// parseBound accepts RFC3339 timestamps or plain dates. A plain date used as
// the upper bound covers the whole day.
func parseBound(s string, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidRange, s)
	}
	if upper {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t, nil
}
