package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"plantops-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, rateLimitPerSec float64, cacheTTL time.Duration, ipHeader string) *gin.Engine {
	r := gin.Default()

	db := h.store.DB()

	if rateLimitPerSec <= 0 {
		rateLimitPerSec = 10
	}
	rateLimiter := mw.RateLimiter(rate.Limit(rateLimitPerSec), 5, ipHeader)

	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)
	busting := mw.CacheBust(cacheStore)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Stock
		api.GET("/stock/raw", h.ListRawStock)
		api.PUT("/stock/raw", busting, h.SaveRawStock)
		api.GET("/stock/finished", h.ListFinishedStock)
		api.PUT("/stock/finished", busting, h.SaveFinishedStock)
		api.GET("/stock/finished/totals", caching, GetFinishedTotals(db))

		// Stock ledger
		api.GET("/movements", h.ListMovements)
		api.POST("/movements", busting, h.CreateMovement)

		// Production
		api.GET("/production", GetProduction(db))
		api.PUT("/production", busting, h.SaveProduction)
		api.GET("/production/summary", caching, GetProductionSummary(db))

		// Production orders (BOM consumption)
		api.GET("/orders", h.ListOrders)
		api.POST("/orders", busting, h.CreateOrder)

		// Machine status board
		api.GET("/machines", h.GetMachineBoard)
		api.PUT("/machines/:name", h.PutMachineStatus)

		// Workbook sync
		api.POST("/sync/import", busting, h.ForceResync)

		// Breakdown alert subscriptions
		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
