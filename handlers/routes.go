package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the dashboard API on r.
func RegisterRoutes(r *gin.Engine, h *AnalyticsHandlers) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.GET("/sections", h.ListSections)
		api.GET("/sections/:slug", h.GetSection)

		aggregateGroup := api.Group("/aggregate")
		{
			aggregateGroup.GET("/count", h.GetCounts)
			aggregateGroup.GET("/timeseries", h.GetTimeSeries)
		}
		api.GET("/funnel", h.GetFunnel)

		api.POST("/reload", h.Reload)
	}
}
