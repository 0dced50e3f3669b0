package middleware

import (
	"github.com/gin-gonic/gin"

	"tablegen/internal/pkg/id"
)

const (
	// RequestIDKey gin 上下文中的请求ID键
	RequestIDKey = "request_id"
	// RequestIDHeader 请求ID响应头
	RequestIDHeader = "X-Request-ID"
)

// RequestID 为每个请求分配ID，沿用客户端传入的合法ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if !id.IsValid(rid) {
			rid = id.New()
		}
		c.Set(RequestIDKey, rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}
