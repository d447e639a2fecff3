package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopbook-ledger/internal/api/handler"
	"github.com/shopbook-ledger/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	partyHandler *handler.PartyHandler,
	entryHandler *handler.EntryHandler,
	productHandler *handler.ProductHandler,
	recycleHandler *handler.RecycleHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Metrics())

	// API v1 endpoints. Every route below requires a resolved user.
	v1 := r.Group("/api/v1")
	v1.Use(middleware.UserContext())
	{
		// Party operations (customers, suppliers, expense categories)
		parties := v1.Group("/parties")
		{
			parties.POST("", partyHandler.Create)
			parties.GET("", partyHandler.List)
			parties.GET("/:id", partyHandler.GetByID)
			parties.DELETE("/:id", partyHandler.Delete)
			parties.POST("/:id/restore", partyHandler.Restore)
			parties.DELETE("/:id/purge", partyHandler.Purge)
			parties.POST("/:id/recalculate", partyHandler.Recalculate)

			// Ledger operations scoped to one party
			parties.POST("/:id/entries", entryHandler.Create)
			parties.GET("/:id/entries", entryHandler.ListByParty)
			parties.GET("/:id/export", entryHandler.Export)
			parties.GET("/:id/bad-debt", entryHandler.BadDebt)
		}

		// Entry operations addressed by entry id
		entries := v1.Group("/entries")
		{
			entries.PATCH("/:id", entryHandler.Update)
			entries.DELETE("/:id", entryHandler.Delete)
			entries.POST("/:id/restore", entryHandler.Restore)
			entries.DELETE("/:id/purge", entryHandler.Purge)
		}

		// Inventory operations
		products := v1.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.GetByID)
		}

		// Recycle bin
		recycle := v1.Group("/recycle-bin")
		{
			recycle.GET("", recycleHandler.List)
			recycle.DELETE("", recycleHandler.Empty)
		}

		// Period reports
		v1.GET("/reports/profit", entryHandler.ProfitSummary)

		// Batch aggregate recalculation
		v1.POST("/recalculate", partyHandler.RecalculateAll)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
