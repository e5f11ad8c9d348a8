package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"plantops-backend/internal/store"
	"plantops-backend/internal/sync"
)

type createOrderRequest struct {
	Product string          `json:"product" binding:"required"`
	Qty     float64         `json:"qtd" binding:"required,gt=0"`
	BOM     []store.BOMLine `json:"bom" binding:"required,min=1,dive"`
}

// CreateOrder handles POST /api/orders: verify the whole bill of materials
// against raw stock, consume it atomically, then export both the stock sheet
// and the order log sheet in the same operation. A shortage aborts the order
// untouched and reports every short component at once.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	order, err := h.store.CreateOrder(ctx, req.Product, req.Qty, req.BOM)
	if err != nil {
		var insuff *store.InsufficientStockError
		if errors.As(err, &insuff) {
			c.JSON(http.StatusConflict, gin.H{
				"error":     insuff.Error(),
				"shortages": insuff.Shortages,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.sync.Export(ctx, sync.TableRawStock, sync.TableOrders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order created but workbook export failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, order)
}

// ListOrders handles GET /api/orders.
func (h *Handler) ListOrders(c *gin.Context) {
	rows, err := h.store.ListOrders(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve orders"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
