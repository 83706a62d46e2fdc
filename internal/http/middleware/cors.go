package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// CORS allows the given origins, or the local dev origins when none are set.
func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Requested-With", headerCorrelationID, headerRequestID},
		ExposeHeaders:    []string{headerCorrelationID, headerRequestID, headerTraceID},
		AllowCredentials: true,
	})
}
