package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamcal/internal/models"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// Clock supplies the current time; handlers use it to decide "today" in the configured
// timezone.
type Clock func() time.Time

func (clock Clock) today(loc *time.Location) models.Date {
	now := time.Now
	if clock != nil {
		now = clock
	}
	if loc == nil {
		loc = time.UTC
	}
	return models.DateOf(now().In(loc))
}
