package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/hookbrief-backend/internal/http/handlers"
	httpMW "github.com/yungbote/hookbrief-backend/internal/http/middleware"
	"github.com/yungbote/hookbrief-backend/internal/observability"
	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	BriefHandler  *httpH.BriefHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "hookbrief"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Briefs
		if cfg.BriefHandler != nil {
			api.POST("/briefs/generate", cfg.BriefHandler.Generate)
			api.POST("/briefs/feedback", cfg.BriefHandler.Feedback)
			api.GET("/briefs/audits/:id/brief", cfg.BriefHandler.AuditBrief)
		}
	}

	return r
}
