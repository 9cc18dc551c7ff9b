package security

import (
	"context"
	"net/http"
	"strings"

	"go-adminstats/internal/logging"
	"go-adminstats/internal/security/jwt"
	"go-adminstats/internal/util/retcode"
	"go-adminstats/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserIDKey gin.Context 中调用方 id 的 key
const UserIDKey = "user_id"

// AdminChecker 角色判定由外部身份数据提供（UserDAO / memory.UserStore）
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Auth 校验 Bearer 令牌，失败返回 401
func Auth(j *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			response.Abort(c, http.StatusUnauthorized, retcode.AUTH_ERROR, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimSpace(auth[7:]))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, retcode.AUTH_ERROR, "invalid token")
			return
		}
		uid := claims.UserID()
		c.Set(UserIDKey, uid)
		ctx := context.WithValue(c.Request.Context(), logging.UserIDKey, uid)
		ctx = logging.IntoContext(ctx, logging.FromContext(ctx, nil).With(zap.String("user_id", uid)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AdminOnly 必须在 Auth 之后。角色查询出错同样拒绝（403），只记录日志
func AdminOnly(checker AdminChecker, lg *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(UserIDKey)
		if uid == "" {
			response.Abort(c, http.StatusUnauthorized, retcode.AUTH_ERROR, "missing identity")
			return
		}
		ok, err := checker.IsAdmin(c.Request.Context(), uid)
		if err != nil {
			logging.FromContext(c.Request.Context(), lg).Warn("admin check failed, denying", zap.Error(err))
			response.Abort(c, http.StatusForbidden, retcode.PERMISSION_DENIED, "")
			return
		}
		if !ok {
			response.Abort(c, http.StatusForbidden, retcode.PERMISSION_DENIED, "")
			return
		}
		c.Next()
	}
}
