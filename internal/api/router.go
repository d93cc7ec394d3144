package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"resumedesk/internal/api/middleware"
	"resumedesk/internal/auth"
	"resumedesk/internal/metrics"
	"resumedesk/internal/resume"
	"resumedesk/internal/session"
	"resumedesk/internal/tasks"
)

// Deps 汇总路由需要的服务；Limiter、Archive、Storage 均为可选。
type Deps struct {
	Logger      *slog.Logger
	ServiceName string
	Tracing     bool
	Sessions    *session.Manager
	Auth        *auth.Service
	Resumes     *resume.Service
	Renderer    PDFRenderer
	Limiter     LoginLimiter
	Archive     tasks.Enqueuer
	Storage     ArchiveStorage
}

// NewRouter 构建 Gin 路由引擎并注册全部页面。
func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if deps.Tracing {
		router.Use(otelgin.Middleware(deps.ServiceName))
	}
	router.Use(
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
		metrics.GinMiddleware(),
	)
	router.SetHTMLTemplate(loadTemplates())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	RegisterRoutes(router, deps, logger)
	return router
}
