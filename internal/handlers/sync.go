package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scanera/product-service/internal/feed"
)

// SyncResponse reports the outcome of a triggered feed sync.
type SyncResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// TriggerSync returns a handler that runs one fetch + import cycle.
// POST /internal/admin/sync
func TriggerSync(sync SyncRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := sync.Run(c.Request.Context())
		if err != nil {
			status := http.StatusInternalServerError
			var malformed *feed.MalformedFeedError
			if errors.Is(err, feed.ErrFeedNotFound) || errors.As(err, &malformed) {
				status = http.StatusUnprocessableEntity
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, SyncResponse{
			Created: summary.Created,
			Updated: summary.Updated,
			Skipped: summary.Skipped,
		})
	}
}
