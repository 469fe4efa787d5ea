package middleware

import (
	"net/http"

	"github.com/dasbor/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ScopeBusinessIDKey is the context key holding the business UUID a request
// is allowed to act on, resolved by BusinessScope.
const ScopeBusinessIDKey = "scope_business_id"

// RequireSuperAdmin rejects requests whose token does not carry the
// super-admin role.
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetJWTRole(c) != string(identity.RoleSuperAdmin) {
			abortForbidden(c, "Super-admin access required")
			return
		}
		c.Next()
	}
}

// BusinessScope resolves the business a request targets from the
// :businessId path parameter and enforces tenant isolation: scoped admins
// may only act on their own business, super-admins on any. The resolved
// UUID is stored under ScopeBusinessIDKey.
func BusinessScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		param := c.Param("businessId")
		businessID, err := uuid.Parse(param)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "BAD_REQUEST",
					"message": "Invalid business ID",
				},
			})
			return
		}

		if GetJWTRole(c) != string(identity.RoleSuperAdmin) {
			if GetJWTBusinessID(c) != businessID.String() {
				abortForbidden(c, "You do not have access to this business")
				return
			}
		}

		c.Set(ScopeBusinessIDKey, businessID)
		c.Next()
	}
}

// GetScopeBusinessID retrieves the business UUID resolved by BusinessScope
func GetScopeBusinessID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(ScopeBusinessIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

func abortForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "FORBIDDEN",
			"message": message,
		},
	})
}
