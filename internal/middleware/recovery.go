package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a panic into a 500 carrying body, so the front end still
// receives a well-formed response.
func Recovery(logger *zap.Logger, body func() any) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic while serving request",
					zap.String("request_id", GetRequestID(c)),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", err),
					zap.Stack("stack"))
				c.AbortWithStatusJSON(http.StatusInternalServerError, body())
			}
		}()
		c.Next()
	}
}
