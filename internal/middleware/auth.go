package middleware

import (
	"strings"

	"virtual_classroom_backend/internal/config"
	"virtual_classroom_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// EntryAuth guards routes that require a classroom entry token. The token is
// minted by the onboarding flow when the student accepts the terms.
func EntryAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		cfg := c.MustGet("config").(*config.Config)
		claims, err := util.ParseEntryToken(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("entry", claims)
		c.Next()
	}
}

// RequireRole restricts a route to entry tokens carrying one of the given
// roles ("instructor", "admin" on the observer routes).
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := util.GetEntryFromContext(c)
		if claims == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		util.Forbidden(c)
		c.Abort()
	}
}
