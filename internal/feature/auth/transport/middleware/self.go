// Package middleware はauthフィーチャーのリソース単位の認可ミドルウェアを提供します。
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"shop_backend/internal/api"
	jwtmw "shop_backend/internal/platform/jwt"
)

// RequireSelf はパスパラメータparamが認証済みユーザー自身のIDと一致する場合のみ通過させます。
// jwtmw.AuthRequiredの後に配置する必要があります。一致しない場合は403を返します。
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := jwtmw.CurrentUser(c)
		if !ok || u.ID != c.Param(param) {
			slog.Warn("access to another user's account denied",
				"user_id", c.GetString(jwtmw.ContextUserID),
				"target_id", c.Param(param),
				"remote_addr", c.ClientIP(),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: api.MsgForbidden})
			return
		}
		c.Next()
	}
}
