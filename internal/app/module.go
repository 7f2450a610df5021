package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/fatflowers/pulseboard/internal/app/api/server"
	"github.com/fatflowers/pulseboard/internal/app/service/activity"
	"github.com/fatflowers/pulseboard/internal/app/service/billing"
	"github.com/fatflowers/pulseboard/internal/app/service/connection"
	"github.com/fatflowers/pulseboard/internal/app/service/report"
	"github.com/fatflowers/pulseboard/internal/platform/db"
	"github.com/fatflowers/pulseboard/internal/platform/snapshot"
	"github.com/fatflowers/pulseboard/pkg/clock"
	"github.com/fatflowers/pulseboard/pkg/config"
	"github.com/fatflowers/pulseboard/pkg/logger"
	"github.com/fatflowers/pulseboard/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	clock.Module,
	metrics.Module,
	db.Module,
	snapshot.Module,
	connection.Module,
	activity.Module,
	billing.Module,
	report.Module,
	server.Module,
)
