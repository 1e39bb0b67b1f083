package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mediaconv/internal/apperr"
	"mediaconv/internal/storage"
)

func (h *Handler) listConversions(c *gin.Context) {
	if h.recorder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversion log disabled", "code": "not_found"})
		return
	}
	limit := storage.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(c, apperr.New(apperr.KindInvalidRequest, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	records, err := h.recorder.Recent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversions": records})
}
