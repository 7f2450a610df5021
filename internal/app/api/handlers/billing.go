package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/pulseboard/internal/app/service/billing"
	"github.com/fatflowers/pulseboard/internal/app/service/report"
	"github.com/fatflowers/pulseboard/internal/platform/tenantdb"
	"github.com/fatflowers/pulseboard/pkg/logctx"
	"github.com/fatflowers/pulseboard/pkg/response"
	"github.com/fatflowers/pulseboard/pkg/types"
)

// BillingService syncs and serves billing metrics.
type BillingService interface {
	Sync(ctx context.Context, orgID string, p billing.Provider) (*billing.SyncResult, error)
	Fetch(ctx context.Context, orgID string, report types.BillingReport) (*billing.FetchResult, error)
}

var _ BillingService = (*billing.Service)(nil)

type BillingQuery struct {
	OrgID  string              `form:"org_id"`
	Report types.BillingReport `form:"report"`
}

func bindBilling(c *gin.Context) (*BillingQuery, error) {
	var q BillingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return nil, fmt.Errorf("%w: %v", report.ErrMissingParameter, err)
	}
	q.OrgID = strings.TrimSpace(q.OrgID)
	if q.OrgID == "" {
		return nil, fmt.Errorf("%w: org_id", report.ErrMissingParameter)
	}
	return &q, nil
}

// @Summary      Sync billing data
// @Description  Pulls subscriptions, payments, cancellations and coupons from the organization's database, derives new cancellations, persists a snapshot and returns all billing metrics. A failed save is reported as persisted=false.
// @Tags         Billing
// @Produce      json
// @Security     BearerAuth
// @Param        org_id  query  string  true  "Organization ID"
// @Success      200  {object}  handlers.RespBillingSync
// @Failure      400  {object}  response.ErrorResponse
// @Failure      401  {object}  response.ErrorResponse
// @Failure      404  {object}  response.ErrorResponse
// @Failure      500  {object}  response.ErrorResponse
// @Router       /api/v1/billing/sync [post]
func ApiBillingSync(svc BillingService, tenants TenantResolver, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := bindBilling(c)
		if err != nil {
			abortWithError(c, log, err)
			return
		}
		ctx := logctx.WithOrgID(c.Request.Context(), q.OrgID)
		tenant, err := tenants.Resolve(ctx, q.OrgID)
		if err != nil {
			abortWithError(c, log, err)
			return
		}
		defer func() {
			if err := tenant.Close(); err != nil {
				logctx.FromGin(c, log).Warnw("close tenant database failed", "org_id", q.OrgID, "err", err)
			}
		}()

		res, err := svc.Sync(ctx, q.OrgID, tenantdb.New(tenant.DB, log))
		if err != nil {
			abortWithError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Billing metrics
// @Description  Computes billing metrics from the last persisted snapshot. hasData is false when the organization was never synced.
// @Tags         Billing
// @Produce      json
// @Security     BearerAuth
// @Param        org_id  query  string  true   "Organization ID"
// @Param        report  query  string  false  "Metric section"  Enums(all, revenue, cancellations, retention)  default(all)
// @Success      200  {object}  handlers.RespBillingFetch
// @Failure      400  {object}  response.ErrorResponse
// @Failure      401  {object}  response.ErrorResponse
// @Failure      500  {object}  response.ErrorResponse
// @Router       /api/v1/billing/metrics [get]
func ApiBillingMetrics(svc BillingService, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := bindBilling(c)
		if err != nil {
			abortWithError(c, log, err)
			return
		}
		if err := billing.ValidateReport(q.Report); err != nil {
			abortWithError(c, log, err)
			return
		}
		ctx := logctx.WithOrgID(c.Request.Context(), q.OrgID)
		res, err := svc.Fetch(ctx, q.OrgID, q.Report)
		if err != nil {
			abortWithError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterBillingRoutes(r gin.IRouter, svc BillingService, tenants TenantResolver, log *zap.SugaredLogger) {
	r.POST("/sync", ApiBillingSync(svc, tenants, log))
	r.GET("/metrics", ApiBillingMetrics(svc, log))
}
