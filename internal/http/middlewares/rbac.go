package middlewares

import (
	"net/http"

	"github.com/geocoder89/valehub/internal/policy"
	"github.com/gin-gonic/gin"
)

// RequireAction denies a route early when the actor may not perform action on
// any record. Owner-scoped checks stay in the service layer.
func RequireAction(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		if err := policy.Authorize(ActorFrom(c), action, policy.Target{}); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "You are not allowed to perform this action",
				},
			})
			return
		}
		c.Next()
	}
}
