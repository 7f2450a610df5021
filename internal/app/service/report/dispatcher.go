package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/pulseboard/internal/app/service/activity"
	"github.com/fatflowers/pulseboard/pkg/clock"
	"github.com/fatflowers/pulseboard/pkg/config"
	"github.com/fatflowers/pulseboard/pkg/logctx"
	"github.com/fatflowers/pulseboard/pkg/metrics"
	"github.com/fatflowers/pulseboard/pkg/types"
)

// Dispatcher validates a report request and runs exactly one activity report.
type Dispatcher struct {
	log          *zap.SugaredLogger
	clock        clock.Clock
	activity     *activity.Service
	recorder     *metrics.Recorder
	defaultRange types.DateRange
}

type Params struct {
	fx.In

	Log      *zap.SugaredLogger
	Clock    clock.Clock
	Activity *activity.Service
	Recorder *metrics.Recorder
	Config   *config.Config
}

func NewDispatcher(p Params) *Dispatcher {
	def := types.DateRange30d
	if p.Config != nil && p.Config.Report.DefaultRange != "" {
		def = p.Config.Report.DefaultRange
	}
	return &Dispatcher{log: p.Log, clock: p.Clock, activity: p.Activity, recorder: p.Recorder, defaultRange: def}
}

// Validate normalizes req and resolves its window. Errors are client errors.
func (d *Dispatcher) Validate(req *Request) (activity.Window, error) {
	if err := req.Normalize(d.defaultRange); err != nil {
		return activity.Window{}, err
	}
	return req.Window(d.clock.Now())
}

// Dispatch runs the report named by req against src. req must have passed
// Validate; w is the window it resolved to.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request, w activity.Window, src activity.Source) (res any, err error) {
	start := time.Now()
	defer func() { d.recorder.ObserveReport("activity", string(req.Metric), start, err) }()

	ctx = logctx.WithOrgID(ctx, req.OrgID)
	a := d.activity
	switch req.Metric {
	case types.ReportOverview:
		return a.Overview(ctx, src, req.OrgID), nil
	case types.ReportFeatures:
		return a.Features(ctx, src, req.OrgID, w, req.Role), nil
	case types.ReportActions:
		return a.Actions(ctx, src, req.OrgID, w), nil
	case types.ReportRoles:
		return a.Roles(ctx, src, req.OrgID, w), nil
	case types.ReportDaily:
		return a.Daily(ctx, src, req.OrgID, w), nil
	case types.ReportErrors:
		return a.Errors(ctx, src, req.OrgID, w), nil
	case types.ReportErrorDetail:
		return a.ErrorDetail(ctx, src, req.OrgID, w), nil
	case types.ReportDrilldownFeature:
		return a.DrilldownFeature(ctx, src, req.OrgID, w, req.Feature), nil
	case types.ReportDrilldownAction:
		return a.DrilldownAction(ctx, src, req.OrgID, w, req.Action), nil
	case types.ReportDrilldownUser:
		return a.DrilldownUser(ctx, src, req.OrgID, w, req.ProfileID), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownReport, req.Metric)
}

var Module = fx.Options(
	fx.Provide(NewDispatcher),
)
