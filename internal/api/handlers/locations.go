package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/checkout"
	"github.com/jafarshop/checkoutapi/internal/domain"
)

var locationLevels = map[string]domain.LocationLevel{
	"countries": domain.LocationCountry,
	"regions":   domain.LocationRegion,
	"cities":    domain.LocationCity,
	"districts": domain.LocationDistrict,
}

// HandleListLocations handles GET /v1/locations/:level?parent_id=
// Lookup failures answer an empty list so the storefront can keep rendering.
func HandleListLocations(fetcher checkout.LocationFetcher, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		level, ok := locationLevels[c.Param("level")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown location level"})
			return
		}

		var parentID int64
		if level != domain.LocationCountry {
			var err error
			parentID, err = strconv.ParseInt(c.Query("parent_id"), 10, 64)
			if err != nil || parentID <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "parent_id is required"})
				return
			}
		}

		locations, err := fetcher.ListLocations(c.Request.Context(), level, parentID)
		if err != nil {
			logger.Warn("Location lookup failed",
				zap.Error(err),
				zap.String("level", string(level)),
				zap.Int64("parent_id", parentID),
			)
			locations = nil
		}
		if locations == nil {
			locations = []domain.Location{}
		}
		c.JSON(http.StatusOK, gin.H{"level": level, "locations": locations})
	}
}
