package middleware

import (
	"net/http"

	"github.com/cribnosh/server/internal/shared/identity"
	"github.com/gin-gonic/gin"
)

// RequireRoles returns a middleware that rejects requests whose actor
// does not hold one of the given roles. Auth must run first.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	roleSet := make(map[identity.Role]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "User not authenticated",
				},
			})
			return
		}

		if _, allowed := roleSet[actor.Role]; !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Insufficient permissions",
				},
			})
			return
		}

		c.Next()
	}
}

// RequireOperator requires a staff or admin actor.
func RequireOperator() gin.HandlerFunc {
	return RequireRoles(identity.RoleStaff, identity.RoleAdmin)
}

// RequireAdmin requires an admin actor.
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(identity.RoleAdmin)
}
