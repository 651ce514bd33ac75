package middleware

import (
	"net/http"
	"strings"

	"github.com/cribnosh/server/internal/shared/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// ActorKey is the context key for the resolved actor.
	ActorKey = "actor"
)

// ActorResolver resolves a bearer token into an acting identity.
type ActorResolver interface {
	ResolveActor(token string) (identity.Actor, error)
}

// Auth returns a middleware that validates bearer tokens and resolves
// the acting identity into the request context. Requests without a
// valid credential are rejected with 401.
func Auth(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Authorization header required",
				},
			})
			return
		}

		actor, err := resolver.ResolveActor(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid or expired token",
				},
			})
			return
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}

	if strings.HasPrefix(authHeader, BearerPrefix) {
		return strings.TrimPrefix(authHeader, BearerPrefix)
	}

	return ""
}

// GetActor returns the resolved actor from context.
func GetActor(c *gin.Context) (identity.Actor, bool) {
	if val, exists := c.Get(ActorKey); exists {
		if actor, ok := val.(identity.Actor); ok {
			return actor, true
		}
	}
	return identity.Actor{}, false
}

// GetUserID returns the acting user ID from context.
// Returns uuid.Nil if not authenticated.
func GetUserID(c *gin.Context) uuid.UUID {
	if actor, ok := GetActor(c); ok {
		return actor.ID
	}
	return uuid.Nil
}
