package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/LovationAdmin/anggaran-api/allocation"
	"github.com/LovationAdmin/anggaran-api/services"
	"github.com/LovationAdmin/anggaran-api/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes the JSON error for err. Unexpected errors are logged and
// answered with "Failed to <action>" so database details stay server side.
func respondError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, allocation.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		utils.Log.Error("request failed",
			zap.String("action", action),
			zap.String("path", utils.MaskPath(c.Request.URL.Path)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
