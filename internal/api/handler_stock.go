package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"plantops-backend/internal/model"
	"plantops-backend/internal/sync"
)

// ListRawStock handles GET /api/stock/raw.
func (h *Handler) ListRawStock(c *gin.Context) {
	rows, err := h.store.ListRawMaterials(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve raw stock"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// SaveRawStock handles PUT /api/stock/raw: a full-table save followed by a
// workbook export of the edited sheet.
func (h *Handler) SaveRawStock(c *gin.Context) {
	var rows []model.RawMaterial
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.store.ReplaceRawMaterials(ctx, rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.sync.Export(ctx, sync.TableRawStock); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "saved to mirror but workbook export failed: " + err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFinishedStock handles GET /api/stock/finished.
func (h *Handler) ListFinishedStock(c *gin.Context) {
	rows, err := h.store.ListFinishedGoods(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve finished stock"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// SaveFinishedStock handles PUT /api/stock/finished.
func (h *Handler) SaveFinishedStock(c *gin.Context) {
	var rows []model.FinishedGood
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.store.ReplaceFinishedGoods(ctx, rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.sync.Export(ctx, sync.TableFinishedStock); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "saved to mirror but workbook export failed: " + err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// finishedTotalRow is one line of the per-product totalizer.
type finishedTotalRow struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// GetFinishedTotals handles GET /api/stock/finished/totals: quantity on hand
// summed per (sku, name), largest first.
func GetFinishedTotals(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var totals []finishedTotalRow
		if err := db.
			Model(&model.FinishedGood{}).
			Select("sku, name, SUM(quantity) as quantity").
			Group("sku").Group("name").
			Order("quantity DESC").
			Scan(&totals).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate stock"})
			return
		}
		c.JSON(http.StatusOK, totals)
	}
}
