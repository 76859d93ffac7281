package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/whatsoo/backend/internal/model"
	"github.com/whatsoo/backend/internal/token"
)

// TokenHeader is the fixed request header carrying the session token.
// The login handler writes the same header on success.
const TokenHeader = "token"

const authUserKey = "auth_user"

// AuthMiddleware is the request gate: it extracts the session token,
// decodes it fail-closed, and attaches the verified identity to the
// context. Route policy (which paths are protected) is the router's
// concern, not the gate's.
func AuthMiddleware(codec *token.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		raw := strings.TrimSpace(c.GetHeader(TokenHeader))
		if raw == "" {
			c.JSON(http.StatusUnauthorized, model.ErrorResponse{
				Code:    codeMissingToken,
				Message: "authentication required",
			})
			c.Abort()
			return
		}

		claims, ok := codec.Decode(raw)
		if !ok {
			c.JSON(http.StatusUnauthorized, model.ErrorResponse{
				Code:    codeInvalidToken,
				Message: "invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(authUserKey, &model.AuthUser{
			ID:       claims.UserID,
			Username: claims.Username,
			Email:    claims.Email,
		})
		c.Next()
	}
}

// GetAuthUser returns the identity the gate attached, or nil on an
// unguarded route.
func GetAuthUser(c *gin.Context) *model.AuthUser {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*model.AuthUser); ok {
			return user
		}
	}
	return nil
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Content-Type, "+TokenHeader)
				c.Header("Access-Control-Expose-Headers", TokenHeader+", "+CaptchaKeyHeader)
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
