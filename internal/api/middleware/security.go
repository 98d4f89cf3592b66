package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeaders 课表 API 只返回 JSON 与下载文件，不渲染页面
//
// 快照随每次同步变化，一律 no-store；/export 下的附件额外禁止浏览器直接打开。
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cross-Origin-Resource-Policy", "same-site")
		h.Set("Cache-Control", "no-store")
		if strings.Contains(c.Request.URL.Path, "/export/") {
			h.Set("X-Download-Options", "noopen")
		}

		c.Next()
	}
}
