package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lbestle/go-shareable/internal/config"
	"github.com/lbestle/go-shareable/internal/models"
	"github.com/lbestle/go-shareable/internal/pkg/utils"
	"github.com/lbestle/go-shareable/internal/pkg/xerr"
)

// ContextUserKey 是当前用户在 gin.Context 中的键
const ContextUserKey = "currentUser"

// Authenticate 解析请求的身份并写入 Context
// 支持两种方式：HTTP Basic（配置文件里的用户）和 Bearer Token（登录接口签发的 JWT）
// 没有携带凭证的请求以匿名用户身份继续，权限检查交给 RequirePermission
func Authenticate(cfg *config.Config, users models.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(ContextUserKey, users.Anonymous())
			c.Next()
			return
		}

		scheme, credentials, ok := strings.Cut(authHeader, " ")
		if !ok {
			abortUnauthorized(c, "Authorization 头格式无效")
			return
		}

		switch strings.ToLower(scheme) {
		case "basic":
			username, password, ok := c.Request.BasicAuth()
			if !ok {
				abortUnauthorized(c, "Basic 凭证无法解析")
				return
			}
			user := users.Get(username)
			if !user.VerifyPassword(password) {
				abortUnauthorized(c, "用户名或密码错误")
				return
			}
			c.Set(ContextUserKey, user)

		case "bearer":
			username, err := utils.ParseToken(credentials, cfg.JWT.SecretKey)
			if err != nil {
				abortUnauthorized(c, "Token 无效或已过期: "+err.Error())
				return
			}
			// Token 合法但用户已从配置中移除时，回落到无权限的 anonymous
			c.Set(ContextUserKey, users.Get(username))

		default:
			abortUnauthorized(c, "不支持的认证方式")
			return
		}

		c.Next()
	}
}

// RequirePermission 要求当前用户至少持有其中一个权限
func RequirePermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.HasPermission(permissions...) {
			abortUnauthorized(c, "您没有操作此资源的权限")
			return
		}
		c.Next()
	}
}

// CurrentUser 从 Context 取出已解析的用户，未认证时返回 nil
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// abortUnauthorized 以 401 终止请求，并提示浏览器弹出 Basic 认证框
func abortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Basic realm="shareable"`)
	xerr.AbortWithError(c, http.StatusUnauthorized, xerr.CodeUnauthorized, message)
}
