package middleware

import (
	"kindergarten_backend/internal/service"
	"kindergarten_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// SelectionScope 按 X-Selection-Scope 请求头登记当前选择。
// 同一 scope 的新请求到达时，旧请求的 context 被取消，它的读取结果不会写入缓存。
func SelectionScope(tracker *service.SelectionTracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, done := tracker.Begin(c.Request.Context(), c.GetHeader(util.SelectionScopeHeader))
		defer done()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
