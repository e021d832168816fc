// Package middleware provides the HTTP middleware of the job board API.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"jobboard/internal/core/apperror"
	"jobboard/internal/infrastructure/http/v1/dto"
	"jobboard/pkg/logger"
)

// Recovery turns a panic into a 500 response. The stack is logged, never sent.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered",
				"error", r,
				"stack", string(debug.Stack()),
			)
			appErr := apperror.NewInternal(fmt.Errorf("panic: %v", r))
			_ = c.Error(appErr)
			c.AbortWithStatusJSON(appErr.HTTPStatus, dto.ErrorResponse{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: map[string]any{"request_id": c.GetString("request_id")},
			})
		}()
		c.Next()
	}
}
