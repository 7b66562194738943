package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ggeorgiev0/backend-base/internal/shared/security"
	"github.com/ggeorgiev0/backend-base/modules/kit/errx"
)

// ContextUserID 是认证通过后写入 gin context 的用户 ID key。
const ContextUserID = "auth_user_id"

// RequireAuth 校验 Bearer 令牌。这里只做令牌验证并把失败翻译成对应的
// 领域错误 Kind，不做任何用户/权限业务判断。
func RequireAuth(tokens *security.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWith(c, errx.ErrUnauthorized)
			return
		}
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			abortWith(c, errx.New(errx.KindInvalidToken, "Malformed authorization header"))
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				abortWith(c, errx.ErrSessionExpired.WithCause(err))
			default:
				abortWith(c, errx.ErrInvalidToken.WithCause(err))
			}
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
