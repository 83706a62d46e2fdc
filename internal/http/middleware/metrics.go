package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/hookbrief-backend/internal/observability"
)

// Metrics records API request counts, latency and in-flight requests. Scrapes
// of the metrics endpoint itself are not counted.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || c.FullPath() == "/metrics" {
			c.Next()
			return
		}
		m.APIInflightInc()
		start := time.Now()
		c.Next()
		m.APIInflightDec()

		// Unmatched paths share one series.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
