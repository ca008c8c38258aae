package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Team-Techentia/veedra-sub001/internal/dto"
	"github.com/Team-Techentia/veedra-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const scanCacheTTL = 4 * time.Hour

// ScanCache is the part of *redis.Client the scan handler uses.
type ScanCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// ScanHandler serves the till's barcode lookup. No side effects.
type ScanHandler struct {
	svc   service.CatalogService
	cache ScanCache
}

// NewScanHandler accepts a nil cache, in which case every scan hits the catalog.
func NewScanHandler(svc service.CatalogService, cache ScanCache) *ScanHandler {
	return &ScanHandler{svc: svc, cache: cache}
}

// Scan godoc
// @Summary      Look up a scanned barcode
// @Description  Verifies the check digit, then returns the product. Cached in Redis.
// @Tags         scan
// @Produce      json
// @Param        barcode path     string true "EAN-13 barcode"
// @Success      200     {object} dto.ScanResponse
// @Failure      404     {object} apierror.APIError
// @Failure      422     {object} apierror.APIError
// @Router       /v1/scan/{barcode} [get]
func (h *ScanHandler) Scan(c *gin.Context) {
	barcode := c.Param("barcode")
	ctx := c.Request.Context()
	cacheKey := "scan:" + barcode

	// 1. Try Redis cache
	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.ScanResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	// 2. Cache miss, check digit and catalog
	resp, err := h.svc.Scan(ctx, barcode)
	if err != nil {
		respondError(c, err)
		return
	}

	// 3. Populate cache, best effort
	if h.cache != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			if err := h.cache.Set(context.WithoutCancel(ctx), cacheKey, b, scanCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Str("barcode", barcode).Msg("scan cache write failed")
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}
