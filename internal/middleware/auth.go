package middleware

import (
	"context"
	"strings"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ProfileResolver 根据令牌载荷解析（必要时自动建档）当前用户档案
type ProfileResolver interface {
	Resolve(ctx context.Context, claims *util.Claims) (*model.Profile, error)
}

// AuthMiddleware 解析 Bearer 令牌，未带令牌或令牌无效则拒绝
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// TryAuthMiddleware 可选认证：令牌有效则注入载荷，缺失或无效不拦截
// 用于匿名可浏览、登录后附加个人状态的接口
func TryAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString != "" {
			if claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret); err == nil {
				c.Set("claims", claims)
			}
		}
		c.Next()
	}
}

// TryProfileMiddleware 可选档案加载，配合 TryAuthMiddleware 使用
func TryProfileMiddleware(resolver ProfileResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetClaimsFromContext(c)
		if claims == nil {
			c.Next()
			return
		}

		profile, err := resolver.Resolve(c.Request.Context(), claims)
		if err != nil {
			c.Next()
			return
		}

		c.Set("profile", profile)
		c.Set("capabilities", model.CapabilitiesFor(profile.Role))
		c.Next()
	}
}

// ProfileMiddleware 在 AuthMiddleware 之后运行
// 加载当前用户档案并按角色计算一次能力集，后续处理器直接从上下文读取
func ProfileMiddleware(resolver ProfileResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetClaimsFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		profile, err := resolver.Resolve(c.Request.Context(), claims)
		if err != nil {
			util.LogInternalError(c, "profile_resolve", err)
			c.Abort()
			return
		}

		c.Set("profile", profile)
		c.Set("capabilities", model.CapabilitiesFor(profile.Role))
		c.Next()
	}
}

// RoleMiddleware 要求当前用户具备给定角色之一，ADMIN 直接放行
func RoleMiddleware(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := util.GetProfileFromContext(c)
		if profile == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if profile.Role == model.RoleAdmin {
			c.Next()
			return
		}

		for _, role := range roles {
			if profile.Role == role {
				c.Next()
				return
			}
		}

		util.Forbidden(c)
		c.Abort()
	}
}

// extractToken 支持 Authorization 头与查询参数两种携带方式
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}
