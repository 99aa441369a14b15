package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/etutplan/etut-api/internal/models"
	appErrors "github.com/etutplan/etut-api/pkg/errors"
	"github.com/etutplan/etut-api/pkg/response"
)

// RequireRoles blocks requests whose JWT role is not in the allowed set.
// Teachers additionally pass role checks on routes scoped to their own
// teacher id.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		if claims.Role == models.RoleTeacher && claims.TeacherID != nil {
			if targetID := c.Param("teacherId"); targetID != "" && targetID == *claims.TeacherID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
