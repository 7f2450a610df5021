package handlers

import (
	"time"

	"github.com/fatflowers/pulseboard/internal/app/service/activity"
	"github.com/fatflowers/pulseboard/internal/app/service/billing"
)

// Documentation-only shapes: responses carry "success": true next to the
// report's own fields.

type RespHealth struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// RespActivityOverview documents the overview report; other activity reports
// replace "overview" with their own top-level field.
type RespActivityOverview struct {
	Success  bool              `json:"success"`
	Overview activity.Overview `json:"overview"`
}

type RespBillingSync struct {
	Success       bool                        `json:"success"`
	Persisted     bool                        `json:"persisted"`
	SyncedAt      time.Time                   `json:"syncedAt"`
	Counts        billing.SnapshotCounts      `json:"counts"`
	Revenue       *billing.RevenueReport      `json:"revenue"`
	Cancellations *billing.CancellationReport `json:"cancellations"`
	Retention     *billing.RetentionReport    `json:"retention"`
}

type RespBillingFetch struct {
	Success       bool                        `json:"success"`
	HasData       bool                        `json:"hasData"`
	SyncedAt      *time.Time                  `json:"syncedAt"`
	Counts        billing.SnapshotCounts      `json:"counts"`
	Revenue       *billing.RevenueReport      `json:"revenue,omitempty"`
	Cancellations *billing.CancellationReport `json:"cancellations,omitempty"`
	Retention     *billing.RetentionReport    `json:"retention,omitempty"`
}
