package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck is one named dependency check.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	checks []HealthCheck
}

func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if len(h.checks) == 0 {
		c.String(http.StatusOK, "ok")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for _, chk := range h.checks {
		if chk.Check == nil {
			continue
		}
		if err := chk.Check(ctx); err != nil {
			failed[chk.Name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "failed": failed})
		return
	}
	c.String(http.StatusOK, "ok")
}
