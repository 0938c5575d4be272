package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gold-lifestyle-backend/internal/logger"
)

// Logger writes one access line per request. Query strings are left out so
// payment references in callback URLs do not reach the logs.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("[%s] %s %s %d %s %s\n",
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				requestPath(param),
				param.StatusCode,
				param.Latency,
				param.ClientIP,
			)
		},
		SkipPaths: []string{"/health"},
	})
}

func requestPath(param gin.LogFormatterParams) string {
	if param.Request != nil && param.Request.URL != nil {
		return param.Request.URL.Path
	}
	return param.Path
}
