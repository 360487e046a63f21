package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
)

// visitorSignal builds the dedup signal. The address comes from
// c.ClientIP, so forwarding headers count only from trusted proxies.
func visitorSignal(c *gin.Context) domain.VisitorSignal {
	return domain.VisitorSignal{
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		Referrer:  c.GetHeader("Referer"),
	}
}
