package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"plantops-backend/internal/model"
	"plantops-backend/internal/sync"
)

// applyProductionFilters narrows a production query by the optional query
// parameters shared between the listing and the summary endpoints.
func applyProductionFilters(c *gin.Context, q *gorm.DB) *gorm.DB {
	if from := c.Query("from"); from != "" {
		q = q.Where("date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		q = q.Where("date <= ?", to)
	}
	if machine := c.Query("machine"); machine != "" {
		q = q.Where("machine = ?", machine)
	}
	if product := c.Query("product"); product != "" {
		q = q.Where("product = ?", product)
	}
	if shift := c.Query("shift"); shift != "" {
		q = q.Where("shift = ?", shift)
	}
	if operator := c.Query("operator"); operator != "" {
		q = q.Where("operator = ?", operator)
	}
	return q
}

// GetProduction handles GET /api/production with the optional filters
// from, to, machine, product, shift and operator.
func GetProduction(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rows []model.ProductionRecord
		q := applyProductionFilters(c, db.Model(&model.ProductionRecord{}))
		if err := q.Order("id").Find(&rows).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve production"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// SaveProduction handles PUT /api/production: full-table save plus export.
func (h *Handler) SaveProduction(c *gin.Context) {
	var rows []model.ProductionRecord
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, r := range rows {
		if r.Scheduled < 0 || r.Produced < 0 || r.ScrapKg < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scheduled, produced and scrap_kg must be non-negative"})
			return
		}
	}

	ctx := c.Request.Context()
	if err := h.store.ReplaceProduction(ctx, rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.sync.Export(ctx, sync.TableProduction); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "saved to mirror but workbook export failed: " + err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// operatorEfficiency is the per-operator mean efficiency, scaled to percent.
type operatorEfficiency struct {
	Operator   string  `json:"operator"`
	Efficiency float64 `json:"efficiency_pct"`
}

// productSummary aggregates scheduled/produced per product; Loss is the
// scheduled shortfall clipped at zero.
type productSummary struct {
	Product   string  `json:"product"`
	Scheduled float64 `json:"scheduled"`
	Produced  float64 `json:"produced"`
	Loss      float64 `json:"loss"`
}

// summaryResponse is the KPI block for the production dashboard.
type summaryResponse struct {
	TotalProduced float64              `json:"total_produced"`
	TotalCycles   float64              `json:"total_cycles"`
	TotalScrapKg  float64              `json:"total_scrap_kg"`
	ByOperator    []operatorEfficiency `json:"efficiency_by_operator"`
	ByProduct     []productSummary     `json:"by_product"`
}

// GetProductionSummary handles GET /api/production/summary. The same filters
// as GET /api/production apply, so the percentages match whatever slice of
// the table the caller is looking at.
func GetProductionSummary(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var resp summaryResponse

		totalsQ := applyProductionFilters(c, db.Model(&model.ProductionRecord{}))
		var totals struct {
			Produced float64
			Cycles   float64
			ScrapKg  float64
		}
		if err := totalsQ.
			Select("COALESCE(SUM(produced),0) as produced, COALESCE(SUM(cycles),0) as cycles, COALESCE(SUM(scrap_kg),0) as scrap_kg").
			Scan(&totals).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate production"})
			return
		}
		resp.TotalProduced = totals.Produced
		resp.TotalCycles = totals.Cycles
		resp.TotalScrapKg = totals.ScrapKg

		opQ := applyProductionFilters(c, db.Model(&model.ProductionRecord{}))
		var ops []operatorEfficiency
		if err := opQ.
			Select("operator, AVG(efficiency) * 100 as efficiency").
			Group("operator").
			Order("efficiency DESC").
			Scan(&ops).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate operators"})
			return
		}
		resp.ByOperator = ops

		prodQ := applyProductionFilters(c, db.Model(&model.ProductionRecord{}))
		var products []productSummary
		if err := prodQ.
			Select("product, SUM(scheduled) as scheduled, SUM(produced) as produced").
			Group("product").
			Order("scheduled DESC").
			Scan(&products).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate products"})
			return
		}
		for i := range products {
			if loss := products[i].Scheduled - products[i].Produced; loss > 0 {
				products[i].Loss = loss
			}
		}
		resp.ByProduct = products

		c.JSON(http.StatusOK, resp)
	}
}
