package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civiz/civiz/internal/logger"
	"github.com/civiz/civiz/internal/service"
)

// StreetViewHandler proxies street-level imagery lookups so the maps API key
// never reaches the client.
type StreetViewHandler struct {
	streetView *service.StreetViewService
}

// NewStreetViewHandler creates a new street view handler.
// Parameters:
//   - sv: street view service instance.
// Returns:
//   - *StreetViewHandler: initialized handler.
func NewStreetViewHandler(sv *service.StreetViewService) *StreetViewHandler {
	return &StreetViewHandler{streetView: sv}
}

// StreetViewRequest is the request body for POST /api/v1/streetview.
type StreetViewRequest struct {
	Address string `json:"address" binding:"required"`
}

// Fetch handles POST /api/v1/streetview. The image is returned inline as a
// base64 data URL.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *StreetViewHandler) Fetch(c *gin.Context) {
	var req StreetViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Address is required",
		})
		return
	}

	dataURL, err := h.streetView.FetchStreetView(c.Request.Context(), address)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "Street view fetch failed: %v", err)
		switch {
		case errors.Is(err, service.ErrStreetViewBilling):
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error": "Street view billing is not enabled for this API key",
			})
		case errors.Is(err, service.ErrStreetViewInvalidKey):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Street view API key is invalid or expired",
			})
		default:
			c.JSON(http.StatusBadGateway, gin.H{
				"error": "Failed to fetch street view image",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"image": dataURL,
	})
}
