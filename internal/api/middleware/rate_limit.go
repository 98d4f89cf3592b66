package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"routine-hub/backend/pkg/redis"
	"routine-hub/backend/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的按 IP 限流，scope 区分不同接口的配额
//
// rdb 为 nil 或 Redis 出错时放行：限流只保护 AI 调用额度，不应阻断管理操作。
func RateLimit(rdb *redis.Client, scope string, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("routine:rate:%s:%s", scope, c.ClientIP())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("限流检查失败，放行请求", zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.TooManyRequests(c)
			return
		}

		c.Next()
	}
}
