package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/pulseboard/internal/app/service/report"
	"github.com/fatflowers/pulseboard/internal/platform/tenantdb"
	"github.com/fatflowers/pulseboard/pkg/logctx"
	"github.com/fatflowers/pulseboard/pkg/response"
)

// @Summary      Activity report
// @Description  Runs one activity report over the organization's event log. Drill-down reports require their dimension parameter.
// @Tags         Activity
// @Produce      json
// @Security     BearerAuth
// @Param        org_id      query  string  true   "Organization ID"
// @Param        metric      query  string  false  "Report name"  Enums(overview, features, actions, roles, daily, errors, error_detail, drilldown_feature, drilldown_action, drilldown_user)  default(overview)
// @Param        range       query  string  false  "Date range"   Enums(7d, 30d, custom)
// @Param        from        query  string  false  "Custom range start (RFC3339 or YYYY-MM-DD)"
// @Param        to          query  string  false  "Custom range end (RFC3339 or YYYY-MM-DD)"
// @Param        role        query  string  false  "Viewer role filter for features"
// @Param        feature     query  string  false  "Feature for drilldown_feature"
// @Param        action      query  string  false  "Action for drilldown_action"
// @Param        profile_id  query  string  false  "Profile for drilldown_user"
// @Success      200  {object}  handlers.RespActivityOverview
// @Failure      400  {object}  response.ErrorResponse
// @Failure      401  {object}  response.ErrorResponse
// @Failure      404  {object}  response.ErrorResponse
// @Failure      500  {object}  response.ErrorResponse
// @Router       /api/v1/activity/report [get]
func ApiActivityReport(d *report.Dispatcher, tenants TenantResolver, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req report.Request
		if err := c.ShouldBindQuery(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.ErrorT(err.Error()))
			return
		}
		w, err := d.Validate(&req)
		if err != nil {
			abortWithError(c, log, err)
			return
		}

		ctx := logctx.WithOrgID(c.Request.Context(), req.OrgID)
		tenant, err := tenants.Resolve(ctx, req.OrgID)
		if err != nil {
			abortWithError(c, log, err)
			return
		}
		defer func() {
			if err := tenant.Close(); err != nil {
				logctx.FromGin(c, log).Warnw("close tenant database failed", "org_id", req.OrgID, "err", err)
			}
		}()

		res, err := d.Dispatch(ctx, &req, w, tenantdb.New(tenant.DB, log))
		if err != nil {
			abortWithError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterActivityRoutes(r gin.IRouter, d *report.Dispatcher, tenants TenantResolver, log *zap.SugaredLogger) {
	r.GET("/report", ApiActivityReport(d, tenants, log))
}
