package http

import (
	"net/http"
	"strings"

	"patient-record-service/internal/core/ports"

	"github.com/gin-gonic/gin"
)

const (
	authorizationHeaderKey  = "authorization"
	authorizationType       = "bearer"
	authorizationPayloadKey = "authorization_payload"
)

// AuthMiddleware verifies bearer tokens. It is not applied to any route
// group yet; the API runs without authentication enforcement.
func AuthMiddleware(token ports.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorizationHeader := c.GetHeader(authorizationHeaderKey)
		if authorizationHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Auth header required",
			})
			c.Abort()
			return
		}

		fields := strings.Fields(authorizationHeader)
		if len(fields) != 2 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Auth fields required",
			})
			c.Abort()
			return
		}

		currentAuthorizationType := strings.ToLower(fields[0])
		if currentAuthorizationType != authorizationType {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Not authorizated",
			})
			c.Abort()
			return
		}

		accessToken := fields[1]
		payload, err := token.VerifyToken(accessToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(authorizationPayloadKey, &payload)
		c.Next()
	}
}
