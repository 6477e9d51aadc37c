package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/scanera/product-service/internal/database"
)

// ListRunsResponse lists recent import runs, newest first.
type ListRunsResponse struct {
	Runs []database.ImportRun `json:"runs"`
}

// ListRuns returns a handler serving import run history.
// GET /internal/import-runs?limit=20
func ListRuns(runs RunLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 200 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
				return
			}
			limit = parsed
		}

		result, err := runs.ListRecent(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list import runs"})
			return
		}

		c.JSON(http.StatusOK, ListRunsResponse{Runs: result})
	}
}
