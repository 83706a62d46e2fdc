package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/hookbrief-backend/internal/platform/ctxutil"
)

const (
	headerTraceID       = "X-Trace-Id"
	headerRequestID     = "X-Request-Id"
	headerCorrelationID = "X-Correlation-Id"
)

const maxCorrelationIDLen = 128

// AttachTraceContext stores trace, request and correlation ids on the request
// context and echoes them as response headers. A missing or oversized
// correlation id is replaced with a fresh uuid.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}
		traceID := strings.TrimSpace(c.GetHeader(headerTraceID))
		if traceID == "" {
			spanCtx := trace.SpanContextFromContext(c.Request.Context())
			if spanCtx.HasTraceID() {
				traceID = spanCtx.TraceID().String()
			}
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}
		corrID := strings.TrimSpace(c.GetHeader(headerCorrelationID))
		if corrID == "" || len(corrID) > maxCorrelationIDLen {
			corrID = uuid.New().String()
		}
		ctx := ctxutil.WithTraceData(c.Request.Context(), &ctxutil.TraceData{
			TraceID:       traceID,
			RequestID:     reqID,
			CorrelationID: corrID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set("trace_id", traceID)
		c.Set("request_id", reqID)
		c.Set("correlation_id", corrID)
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Writer.Header().Set(headerCorrelationID, corrID)
		c.Next()
	}
}

// SetCorrelationID replaces the request's correlation id in the response
// header and the request context, so error envelopes report the same id.
// Blank or over-long ids are ignored. It returns the id in effect.
func SetCorrelationID(c *gin.Context, id string) string {
	ctx := c.Request.Context()
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxCorrelationIDLen {
		return ctxutil.CorrelationID(ctx)
	}
	td := ctxutil.TraceData{CorrelationID: id}
	if cur := ctxutil.GetTraceData(ctx); cur != nil {
		td = *cur
		td.CorrelationID = id
	}
	c.Request = c.Request.WithContext(ctxutil.WithTraceData(ctx, &td))
	c.Set("correlation_id", id)
	c.Writer.Header().Set(headerCorrelationID, id)
	return id
}
