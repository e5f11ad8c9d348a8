package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ForceResync handles POST /api/sync/import: re-read every configured sheet
// from the workbook and overwrite the mirror tables.
func (h *Handler) ForceResync(c *gin.Context) {
	if err := h.sync.BootstrapImport(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
