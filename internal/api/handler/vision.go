package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civiz/civiz/internal/logger"
	"github.com/civiz/civiz/internal/service"
	"github.com/civiz/civiz/internal/store"
)

// Validation bounds for vision submissions.
const (
	minTextLen    = 10
	maxTextLen    = 300
	minAddressLen = 3
	maxAddressLen = 200
)

// VisionHandler handles vision lifecycle endpoints.
type VisionHandler struct {
	store *store.VisionStore
}

// NewVisionHandler creates a new vision handler.
// Parameters:
//   - s: vision store instance.
// Returns:
//   - *VisionHandler: initialized handler.
func NewVisionHandler(s *store.VisionStore) *VisionHandler {
	return &VisionHandler{store: s}
}

// SubmitVisionRequest is the request body for POST /api/v1/visions.
type SubmitVisionRequest struct {
	Text    string `json:"text" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// Submit handles POST /api/v1/visions.
//
// The submission is accepted as soon as the request validates: the vision
// record exists and the submission points are awarded even when image
// generation subsequently fails. A failed generation is reported with the
// mapped provider status alongside the failed record, never by rolling the
// submission back.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *VisionHandler) Submit(c *gin.Context) {
	var req SubmitVisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	text := strings.TrimSpace(req.Text)
	address := strings.TrimSpace(req.Address)

	if len(text) < minTextLen || len(text) > maxTextLen {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Vision text must be between 10 and 300 characters",
		})
		return
	}
	if len(address) < minAddressLen || len(address) > maxAddressLen {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Address must be between 3 and 200 characters",
		})
		return
	}

	vision, err := h.store.Submit(c.Request.Context(), text, address)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "Vision generation failed: %v", err)
		c.JSON(generationStatusCode(err), gin.H{
			"error":  generationErrorMessage(err),
			"vision": vision,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"vision": vision,
		"points": h.store.Points(),
	})
}

// Like handles POST /api/v1/visions/:id/like.
// Liking is idempotent: repeating the request for the same vision changes
// nothing, and an unknown ID is a silent no-op as well.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *VisionHandler) Like(c *gin.Context) {
	h.store.Like(c.Param("id"))

	c.JSON(http.StatusOK, gin.H{
		"points": h.store.Points(),
	})
}

// List handles GET /api/v1/visions. The result respects the store's current
// view mode.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *VisionHandler) List(c *gin.Context) {
	var visions interface{}
	mode := h.store.ViewMode()
	if mode == store.ViewModeCity {
		visions = h.store.ListCity()
	} else {
		visions = h.store.ListMine()
	}

	c.JSON(http.StatusOK, gin.H{
		"view_mode": mode,
		"visions":   visions,
	})
}

// ListMine handles GET /api/v1/visions/mine.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *VisionHandler) ListMine(c *gin.Context) {
	visions := h.store.ListMine()
	c.JSON(http.StatusOK, gin.H{
		"visions": visions,
		"count":   len(visions),
	})
}

// ListCity handles GET /api/v1/visions/city.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *VisionHandler) ListCity(c *gin.Context) {
	visions := h.store.ListCity()
	c.JSON(http.StatusOK, gin.H{
		"visions": visions,
		"count":   len(visions),
	})
}

// TopByCategory handles GET /api/v1/visions/top-by-category. Categories with
// no visions are omitted from the response.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *VisionHandler) TopByCategory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"top": h.store.TopByCategory(),
	})
}

// Points handles GET /api/v1/points.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *VisionHandler) Points(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user_id": h.store.CurrentUser(),
		"points":  h.store.Points(),
	})
}

// ViewModeRequest is the request body for PUT /api/v1/view-mode.
type ViewModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=mine city"`
}

// SetViewMode handles PUT /api/v1/view-mode.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *VisionHandler) SetViewMode(c *gin.Context) {
	var req ViewModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Mode must be 'mine' or 'city'",
		})
		return
	}

	h.store.SetViewMode(store.ViewMode(req.Mode))
	c.JSON(http.StatusOK, gin.H{
		"view_mode": h.store.ViewMode(),
	})
}

// ToggleViewMode handles POST /api/v1/view-mode/toggle.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *VisionHandler) ToggleViewMode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"view_mode": h.store.ToggleViewMode(),
	})
}

// Reset handles POST /api/v1/reset. All visions are dropped and the point
// balance returns to its starting value.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *VisionHandler) Reset(c *gin.Context) {
	h.store.Reset()
	c.JSON(http.StatusOK, gin.H{
		"points": h.store.Points(),
	})
}

// generationStatusCode maps a generation failure to the HTTP status the
// image provider's taxonomy calls for.
func generationStatusCode(err error) int {
	switch service.ReasonOf(err) {
	case service.ReasonInvalidCredentials:
		return http.StatusUnauthorized
	case service.ReasonQuotaExhausted:
		return http.StatusPaymentRequired
	case service.ReasonRateLimited:
		return http.StatusTooManyRequests
	case service.ReasonContentPolicy:
		return http.StatusBadRequest
	case service.ReasonTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// generationErrorMessage picks a user-facing message per failure reason.
func generationErrorMessage(err error) string {
	switch service.ReasonOf(err) {
	case service.ReasonInvalidCredentials:
		return "Image service credentials are invalid"
	case service.ReasonQuotaExhausted:
		return "Image generation quota exhausted, please check billing"
	case service.ReasonRateLimited:
		return "Too many generation requests, please try again shortly"
	case service.ReasonContentPolicy:
		return "Vision text was rejected by the image content policy"
	case service.ReasonTimeout:
		return "Image generation timed out"
	default:
		return "Image generation failed"
	}
}
