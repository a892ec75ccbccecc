package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"funnelboard/api/analytics"
	"funnelboard/api/logger"
	"funnelboard/api/models"
	"funnelboard/api/utils"
)

func isMisuse(err error) bool {
	return errors.Is(err, analytics.ErrNoDimensions) ||
		errors.Is(err, analytics.ErrUnknownDimension) ||
		errors.Is(err, analytics.ErrInvalidBucket) ||
		errors.Is(err, analytics.ErrNoStages)
}

func (h *AnalyticsHandlers) writeResult(c *gin.Context, v interface{}, err error) {
	if err != nil {
		if isMisuse(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.FromGin(c).Error("Aggregation failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate events"})
		return
	}
	c.JSON(http.StatusOK, v)
}

// GetCounts serves CountBy, or UniqueUserCountBy when measure=unique_users.
func (h *AnalyticsHandlers) GetCounts(c *gin.Context) {
	dims, err := utils.ParseDimensions(c.Query("dims"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(dims) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dims query parameter is required (e.g., 'region,platform')"})
		return
	}

	log, ok := h.currentLog(c)
	if !ok {
		return
	}

	switch models.Measure(c.DefaultQuery("measure", string(models.MeasureCount))) {
	case models.MeasureCount:
		res, err := analytics.CountBy(log, dims...)
		h.writeResult(c, res, err)
	case models.MeasureUniqueUsers:
		res, err := analytics.UniqueUserCountBy(log, c.Query("eventName"), dims...)
		h.writeResult(c, res, err)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "measure must be 'count' or 'unique_users'"})
	}
}

func (h *AnalyticsHandlers) GetTimeSeries(c *gin.Context) {
	interval := c.Query("bucket")
	if interval == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bucket query parameter is required (e.g., 'Day', 'Week', 'Month')"})
		return
	}
	bucket, ok := utils.ParseBucket(interval)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bucket. Must be one of: Day, Week, Month"})
		return
	}

	var splitBy models.Dimension
	if raw := c.Query("splitBy"); raw != "" {
		dims, err := utils.ParseDimensions(raw)
		if err != nil || len(dims) != 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "splitBy must name exactly one dimension"})
			return
		}
		splitBy = dims[0]
	}

	log, ok := h.currentLog(c)
	if !ok {
		return
	}

	res, err := analytics.TimeSeriesCount(log, bucket, c.Query("eventName"), splitBy)
	h.writeResult(c, res, err)
}

// GetFunnel defaults to Created, Funded, Transferred when no stages are given.
func (h *AnalyticsHandlers) GetFunnel(c *gin.Context) {
	stages := utils.SplitList(c.Query("stages"))
	if len(stages) == 0 {
		stages = models.TransferFunnel
	}
	groupBy, err := utils.ParseDimensions(c.Query("groupBy"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log, ok := h.currentLog(c)
	if !ok {
		return
	}

	groups, err := analytics.FunnelSequence(log, stages, groupBy...)
	h.writeResult(c, groups, err)
}
