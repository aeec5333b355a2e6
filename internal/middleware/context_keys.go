package middleware

import (
	"github.com/SscSPs/autoledger/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// actorIDKey is the key used to store the authenticated caller's ID in the request context.
const actorIDKey = contextKey("actorID")

// GetActorIDFromContext retrieves the authenticated caller ID from the Gin context.
// It returns the ID and a boolean indicating if it was found.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(actorIDKey)); exists {
		actorID, ok := v.(string)
		return actorID, ok && actorID != ""
	}
	actorID, ok := c.Request.Context().Value(actorIDKey).(string)
	return actorID, ok && actorID != ""
}

// ActorOrSystem returns the authenticated caller ID, or domain.SystemActor.
func ActorOrSystem(c *gin.Context) string {
	if actorID, ok := GetActorIDFromContext(c); ok {
		return actorID
	}
	return domain.SystemActor
}
