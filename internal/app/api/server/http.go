package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/pulseboard/docs"
	"github.com/fatflowers/pulseboard/internal/app/api/handlers"
	mw "github.com/fatflowers/pulseboard/internal/app/api/middleware"
	"github.com/fatflowers/pulseboard/internal/app/service/billing"
	"github.com/fatflowers/pulseboard/internal/app/service/connection"
	"github.com/fatflowers/pulseboard/internal/app/service/report"
	cfgpkg "github.com/fatflowers/pulseboard/pkg/config"
	metrics "github.com/fatflowers/pulseboard/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type RouteParams struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Engine      *gin.Engine
	Log         *zap.SugaredLogger
	Config      *cfgpkg.Config
	Dispatcher  *report.Dispatcher
	Billing     *billing.Service
	Connections *connection.Service
}

func registerRoutes(p RouteParams) error {
	r, log, cfg := p.Engine, p.Log, p.Config

	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		m, err := metrics.NewHTTP(metrics.HTTPOptions{
			Subsystem: "pulseboard",
			Logger:    log,
		})
		if err != nil {
			return fmt.Errorf("failed to register http metrics: %w", err)
		}
		m.SetListenAddress(cfg.MetricsAddr)
		m.Use(r)
		p.Lifecycle.Append(fx.Hook{
			OnStop: func(context.Context) error { return m.Close() },
		})
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(log))
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected group using auth middleware
	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware(log), mw.AuthMiddleware(cfg, log))

	handlers.RegisterActivityRoutes(apiV1.Group("/activity"), p.Dispatcher, p.Connections, log)
	handlers.RegisterBillingRoutes(apiV1.Group("/billing"), p.Billing, p.Connections, log)
	return nil
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
