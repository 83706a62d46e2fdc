package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/hookbrief-backend/internal/http/response"
	"github.com/yungbote/hookbrief-backend/internal/platform/ctxutil"
	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
)

// Requests slower than this are logged at warn regardless of status.
const slowRequest = 10 * time.Second

// Health and metrics routes are only logged when they fail.
var quietRoutes = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		elapsed := time.Since(start)
		if quietRoutes[route] && status < 400 {
			return
		}

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		}
		if kind := c.GetString(response.ErrorKindKey); kind != "" {
			fields = append(fields, "error_kind", kind)
		}
		ctx := c.Request.Context()
		for _, kv := range [][2]string{
			{"correlation_id", ctxutil.CorrelationID(ctx)},
			{"trace_id", ctxutil.TraceID(ctx)},
		} {
			if kv[1] != "" {
				fields = append(fields, kv[0], kv[1])
			}
		}

		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		case status >= 400 || elapsed >= slowRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
