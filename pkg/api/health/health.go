package health

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler for health API. It fails once signalCtx is done so load balancers
// stop routing plan requests to an instance that is shutting down.
func Handler(signalCtx context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		if signalCtx.Err() != nil {
			c.Data(http.StatusInternalServerError, gin.MIMEPlain, []byte(http.StatusText(http.StatusInternalServerError)))
			return
		}
		c.Data(http.StatusOK, gin.MIMEPlain, []byte(http.StatusText(http.StatusOK)))
	}
}
