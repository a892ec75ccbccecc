// api/handlers/section_handlers.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"funnelboard/api/logger"
	"funnelboard/api/models"
	"funnelboard/api/sections"
	"funnelboard/api/store"
)

// LogProvider hands out the current event log for a source. store.SessionCache implements it.
type LogProvider interface {
	Get(ctx context.Context, source string) (*models.EventLog, error)
	Invalidate(source string)
}

// PayloadCache stores rendered sections. store.SectionCache implements it.
type PayloadCache interface {
	Get(ctx context.Context, loadID uuid.UUID, slug string) ([]byte, bool, error)
	Set(ctx context.Context, loadID uuid.UUID, slug string, payload []byte) error
}

type AnalyticsHandlers struct {
	Logs   LogProvider
	Cache  PayloadCache
	Source string
}

func NewAnalyticsHandlers(logs LogProvider, cache PayloadCache, source string) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		Logs:   logs,
		Cache:  cache,
		Source: source,
	}
}

// loadTimeout bounds a cold load; warm requests never wait on it.
const loadTimeout = 2 * time.Minute

// currentLog fetches the session log, answering 503 itself when loading fails.
func (h *AnalyticsHandlers) currentLog(c *gin.Context) (*models.EventLog, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), loadTimeout)
	defer cancel()

	log, err := h.Logs.Get(ctx, h.Source)
	if err != nil {
		logger.FromGin(c).Error("Failed to load event log", zap.String("source", h.Source), zap.Error(err))
		code := "load_failed"
		var loadErr *store.LoadError
		if errors.As(err, &loadErr) {
			code = loadErr.Code()
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "kind": code})
		return nil, false
	}
	return log, true
}

func (h *AnalyticsHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AnalyticsHandlers) ListSections(c *gin.Context) {
	c.JSON(http.StatusOK, sections.All())
}

func (h *AnalyticsHandlers) GetSection(c *gin.Context) {
	slug := c.Param("slug")
	entry, err := sections.Lookup(slug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown section: " + slug})
		return
	}

	log, ok := h.currentLog(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if h.Cache != nil {
		payload, hit, err := h.Cache.Get(ctx, log.LoadID(), slug)
		if err != nil {
			logger.FromGin(c).Warn("Section cache read failed", zap.String("slug", slug), zap.Error(err))
		}
		if hit {
			c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
			return
		}
	}

	section, err := entry.Build(log)
	if err != nil {
		logger.FromGin(c).Error("Failed to build section", zap.String("slug", slug), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build section"})
		return
	}

	payload, err := json.Marshal(section)
	if err != nil {
		logger.FromGin(c).Error("Failed to encode section", zap.String("slug", slug), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode section"})
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Set(ctx, log.LoadID(), slug, payload); err != nil {
			logger.FromGin(c).Warn("Section cache write failed", zap.String("slug", slug), zap.Error(err))
		}
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

// Reload drops the cached log and loads the source again. Rendered sections keyed
// by the old load are never served again.
func (h *AnalyticsHandlers) Reload(c *gin.Context) {
	h.Logs.Invalidate(h.Source)

	log, ok := h.currentLog(c)
	if !ok {
		return
	}
	from, to := log.TimeRange()

	logger.FromGin(c).Info("Event log reloaded", zap.String("load_id", log.LoadID().String()), zap.Int("records", log.Len()))
	c.JSON(http.StatusOK, gin.H{
		"source":    log.Source(),
		"load_id":   log.LoadID(),
		"loaded_at": log.LoadedAt(),
		"records":   log.Len(),
		"from":      from,
		"to":        to,
	})
}
