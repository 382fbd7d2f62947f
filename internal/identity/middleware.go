package identity

import (
	"net/http"

	"github.com/SAP-F-2025/exam-service/internal/models"
	"github.com/gin-gonic/gin"
)

// Context keys set by Middleware.
const (
	ContextActor  = "actor"
	ContextUserID = "user_id"
)

// Middleware rejects requests the resolver cannot identify with 401 and
// stores the actor in the gin context otherwise.
func Middleware(resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := resolver.Resolve(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "User not authenticated",
				"code":    "unauthenticated",
				"details": err.Error(),
			})
			return
		}

		c.Set(ContextActor, actor)
		c.Set(ContextUserID, actor.UserID)
		c.Next()
	}
}

// ActorFromContext returns the actor stored by Middleware.
func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(ContextActor)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}
