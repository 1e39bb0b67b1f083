package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mediaconv/internal/apperr"
)

type summarizeRequest struct {
	Text string `json:"text"`
}

func (h *Handler) summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeError(c, apperr.New(apperr.KindMissingInput, "No text provided"))
		return
	}
	summary, err := h.converter.Summarize(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
