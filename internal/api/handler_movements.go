package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plantops-backend/internal/sync"
)

type createMovementRequest struct {
	SKU      string   `json:"sku" binding:"required"`
	Name     string   `json:"name"`
	Qty      *float64 `json:"qty" binding:"required"`
	Reason   string   `json:"reason"`
	Operator string   `json:"operator"`
}

// CreateMovement handles POST /api/movements: append a ledger entry, update
// the denormalized finished-goods total, then export the stock sheet.
func (h *Handler) CreateMovement(c *gin.Context) {
	var req createMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Qty == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "qty must be non-zero"})
		return
	}

	ctx := c.Request.Context()
	mov, err := h.store.RecordMovement(ctx, req.SKU, req.Name, *req.Qty, req.Reason, req.Operator)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.sync.Export(ctx, sync.TableFinishedStock); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "movement recorded but workbook export failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, mov)
}

// ListMovements handles GET /api/movements, newest first.
func (h *Handler) ListMovements(c *gin.Context) {
	rows, err := h.store.ListMovements(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve movements"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
