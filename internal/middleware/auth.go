package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/example/contentapi/internal/platform/logger"
)

// ServiceAuth guards the message endpoint with a shared-secret service
// token. Callers are trusted services, not end users; the token only proves
// which service is asking.
type ServiceAuth struct {
	secret string
	log    *logger.Logger
}

func NewServiceAuth(secret string, baseLog *logger.Logger) *ServiceAuth {
	return &ServiceAuth{secret: secret, log: baseLog.With("middleware", "ServiceAuth")}
}

func (sa *ServiceAuth) RequireServiceToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Empty secret disables auth for local development.
		if sa.secret == "" {
			c.Next()
			return
		}

		tokenString := extractBearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "reason": "missing service token"})
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(sa.secret), nil
		})
		if err != nil || !token.Valid {
			sa.log.Debug("service token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "reason": "invalid service token"})
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
