package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"

	"mediaconv/internal/logger"
)

func (h *Handler) health(c *gin.Context) {
	ctx := c.Request.Context()
	resp := gin.H{
		"status":             "ok",
		"scratch_dir":        h.scratch.Root(),
		"active_conversions": h.limiter.Active(),
		"max_conversions":    h.limiter.Capacity(),
	}

	// probe failures degrade the report, never the status code
	if usage, err := disk.UsageWithContext(ctx, h.scratch.Root()); err == nil {
		resp["scratch_free_bytes"] = usage.Free
	} else {
		logger.FromContext(ctx).Warn("disk usage probe failed", "error", err)
	}
	if info, err := host.InfoWithContext(ctx); err == nil {
		resp["host"] = gin.H{
			"hostname":       info.Hostname,
			"os":             info.OS + " " + info.Platform,
			"uptime_seconds": info.Uptime,
		}
	} else {
		logger.FromContext(ctx).Warn("host info probe failed", "error", err)
	}
	c.JSON(http.StatusOK, resp)
}
