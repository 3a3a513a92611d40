// internal/handlers/comparison.go
package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stackpick/stackpick-backend/internal/comparison"
	"github.com/stackpick/stackpick-backend/internal/models"
	"github.com/stackpick/stackpick-backend/internal/services"
	"github.com/stackpick/stackpick-backend/internal/utils"
)

// SessionHeader identifies anonymous comparison sessions. Authenticated
// requests use the user ID instead, so a login carries the selection across
// devices.
const SessionHeader = "X-Session-ID"

type ComparisonHandler struct {
	manager        *comparison.Manager
	assembler      *comparison.Assembler
	catalogService *services.CatalogService
}

func NewComparisonHandler(manager *comparison.Manager, assembler *comparison.Assembler, catalogService *services.CatalogService) *ComparisonHandler {
	return &ComparisonHandler{
		manager:        manager,
		assembler:      assembler,
		catalogService: catalogService,
	}
}

// sessionStore resolves the request's comparison store, or responds 400 when
// no session identity is available.
func (h *ComparisonHandler) sessionStore(c *gin.Context) (*comparison.Store, bool) {
	if userID, ok := currentUserID(c); ok {
		return h.manager.StoreFor(c.Request.Context(), userID.String()), true
	}
	if sessionID := strings.TrimSpace(c.GetHeader(SessionHeader)); sessionID != "" {
		return h.manager.StoreFor(c.Request.Context(), sessionID), true
	}
	utils.BadRequestResponse(c, "Missing session: authenticate or send "+SessionHeader, nil)
	return nil, false
}

// GET /comparison
func (h *ComparisonHandler) GetComparison(c *gin.Context) {
	store, ok := h.sessionStore(c)
	if !ok {
		return
	}

	view := h.assembler.Assemble(c.Request.Context(), store)
	utils.SuccessResponse(c, gin.H{
		"state": store.State(),
		"view":  view,
	})
}

type addComparisonRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// POST /comparison/items
func (h *ComparisonHandler) AddItem(c *gin.Context) {
	store, ok := h.sessionStore(c)
	if !ok {
		return
	}

	var req addComparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.catalogService.GetProduct(req.ProductID, nil)
	if err != nil {
		utils.NotFoundResponse(c, "Product")
		return
	}

	result := store.Add(c.Request.Context(), comparison.ProductSummary{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.PriceCents,
		Category: product.Category,
		Rating:   product.AverageRating,
	})

	switch result {
	case comparison.ResultAdded:
		utils.CreatedResponse(c, gin.H{"result": result, "state": store.State()})
	case comparison.ResultExists:
		utils.ConflictResponse(c, "product is already in the comparison")
	case comparison.ResultFull:
		utils.ConflictResponse(c, "comparison is full for this category")
	case comparison.ResultNoCategory:
		utils.BadRequestResponse(c, "product has no category", nil)
	}
}

// DELETE /comparison/items/:productId
func (h *ComparisonHandler) RemoveItem(c *gin.Context) {
	store, ok := h.sessionStore(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	if !store.Remove(c.Request.Context(), productID) {
		utils.NotFoundResponse(c, "Comparison item")
		return
	}

	utils.SuccessResponse(c, gin.H{"state": store.State()})
}

// DELETE /comparison/categories/:category
func (h *ComparisonHandler) ClearCategory(c *gin.Context) {
	store, ok := h.sessionStore(c)
	if !ok {
		return
	}

	category, ok := models.ParseCategory(c.Param("category"))
	if !ok {
		utils.BadRequestResponse(c, "Invalid category", nil)
		return
	}

	store.ClearCategory(c.Request.Context(), category)
	utils.SuccessResponse(c, gin.H{"state": store.State()})
}

// DELETE /comparison
func (h *ComparisonHandler) Clear(c *gin.Context) {
	store, ok := h.sessionStore(c)
	if !ok {
		return
	}

	store.Clear(c.Request.Context())
	utils.SuccessResponse(c, gin.H{"state": store.State()})
}

type setActiveCategoryRequest struct {
	Category string `json:"category" binding:"required"`
}

// PUT /comparison/active-category
func (h *ComparisonHandler) SetActiveCategory(c *gin.Context) {
	store, ok := h.sessionStore(c)
	if !ok {
		return
	}

	var req setActiveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	category, ok := models.ParseCategory(req.Category)
	if !ok {
		utils.BadRequestResponse(c, "Invalid category", nil)
		return
	}

	store.SetActiveCategory(c.Request.Context(), category)
	utils.SuccessResponse(c, gin.H{"state": store.State()})
}

// CatalogFetcher adapts the catalog service to the comparison assembler.
// Enrichment runs without a buyer profile: the side-by-side table shows
// buyer-neutral scores, the same for every session.
type CatalogFetcher struct {
	catalog *services.CatalogService
}

func NewCatalogFetcher(catalog *services.CatalogService) *CatalogFetcher {
	return &CatalogFetcher{catalog: catalog}
}

func (f *CatalogFetcher) EnrichedByIDs(ctx context.Context, ids []uuid.UUID) ([]comparison.EnrichedSummary, error) {
	enriched, err := f.catalog.EnrichedByIDs(ids, nil)
	if err != nil {
		return nil, err
	}

	summaries := make([]comparison.EnrichedSummary, 0, len(enriched))
	for _, e := range enriched {
		summaries = append(summaries, comparison.EnrichedSummary{
			ID:               e.ID,
			Name:             e.Name,
			Tagline:          e.Tagline,
			PriceCents:       e.PriceCents,
			Category:         e.Category,
			AverageRating:    e.AverageRating,
			ReviewCount:      e.ReviewCount,
			FitScore:         e.FitScore,
			FeatureScore:     e.FeatureScore,
			IntegrationScore: e.IntegrationScore,
			ReviewScore:      e.ReviewScore,
			OverallScore:     e.OverallScore,
		})
	}
	return summaries, nil
}

func (f *CatalogFetcher) CategoryMetrics(ctx context.Context, category models.CategoryKey, ids []uuid.UUID) (*comparison.MetricTable, error) {
	definitions, values, err := f.catalog.CategoryMetrics(category, ids)
	if err != nil {
		return nil, err
	}

	table := &comparison.MetricTable{
		Definitions: make([]comparison.MetricColumn, 0, len(definitions)),
		Values:      make(map[uuid.UUID]map[string]comparison.MetricCell, len(values)),
	}
	for _, def := range definitions {
		table.Definitions = append(table.Definitions, comparison.MetricColumn{
			Code:     def.Code,
			Label:    def.Label,
			Unit:     def.Unit,
			DataType: def.DataType,
		})
	}
	for productID, byCode := range values {
		cells := make(map[string]comparison.MetricCell, len(byCode))
		for code, tv := range byCode {
			cells[code] = comparison.MetricCell{
				Value:    tv.Value,
				Label:    tv.Label,
				Unit:     tv.Unit,
				DataType: tv.DataType,
			}
		}
		table.Values[productID] = cells
	}
	return table, nil
}
