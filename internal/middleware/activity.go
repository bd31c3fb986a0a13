package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIdentityResolver 中间件只依赖解析能力，避免直接引用 service 包
type UserIdentityResolver interface {
	ResolveKey(rawID string) (string, bool)
}

// LastSeenRepo 更新用户最后活跃时间
type LastSeenRepo interface {
	UpdateLastSeen(userKey string) error
}

// IdentityMiddleware 带 X-User-ID 头的请求刷新该用户的 last_seen。
// 解析不到用户时直接放行，各 handler 自行做身份解析
func IdentityMiddleware(resolver UserIdentityResolver, repo LastSeenRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawID := strings.TrimSpace(c.GetHeader("X-User-ID"))
		if rawID != "" {
			if key, resolved := resolver.ResolveKey(rawID); resolved {
				// 异步更新，不阻塞主流程
				go repo.UpdateLastSeen(key)
			}
		}
		c.Next()
	}
}
