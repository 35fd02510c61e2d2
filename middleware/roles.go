package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edulink-ug/edulink/models"
	"github.com/edulink-ug/edulink/utils"
)

// RequireRoles lets the request through only when the token carries one of roles.
// It must run after AuthRequired.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	roleSet := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(ctx *gin.Context) {
		role := ctx.GetString(ContextRoleKey)
		if role == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40106, "unauthorized")
			ctx.Abort()
			return
		}
		if _, ok := roleSet[models.Role(role)]; !ok {
			utils.Error(ctx, http.StatusForbidden, 40301, "insufficient role")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
