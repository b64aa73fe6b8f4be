package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/civiz/civiz/internal/domain"
)

// FundingHandler serves the fixed funding category catalogue.
type FundingHandler struct{}

// NewFundingHandler creates a new funding handler.
// Parameters: none.
// Returns:
//   - *FundingHandler: initialized handler.
func NewFundingHandler() *FundingHandler {
	return &FundingHandler{}
}

// ListCategories handles GET /api/v1/funding. Categories are returned in
// their fixed priority order, budget data included.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *FundingHandler) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": domain.FundingCategories,
		"count":      len(domain.FundingCategories),
	})
}
