// internal/handlers/metric.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stackpick/stackpick-backend/internal/models"
	"github.com/stackpick/stackpick-backend/internal/services"
	"github.com/stackpick/stackpick-backend/internal/utils"
)

type MetricHandler struct {
	metricService  *services.MetricService
	catalogService *services.CatalogService
}

func NewMetricHandler(metricService *services.MetricService, catalogService *services.CatalogService) *MetricHandler {
	return &MetricHandler{
		metricService:  metricService,
		catalogService: catalogService,
	}
}

type categoryInfo struct {
	Key         models.CategoryKey `json:"key"`
	DisplayName string             `json:"display_name"`
}

// GET /categories
func (h *MetricHandler) GetCategories(c *gin.Context) {
	categories := make([]categoryInfo, 0, len(models.AllCategories))
	for _, key := range models.AllCategories {
		categories = append(categories, categoryInfo{Key: key, DisplayName: key.DisplayName()})
	}
	utils.SuccessResponse(c, gin.H{"categories": categories})
}

// GET /categories/:category/metrics
//
// Returns the ordered metric definitions for a category; when product_ids is
// given, the per-product typed values are included alongside.
func (h *MetricHandler) GetCategoryMetrics(c *gin.Context) {
	category, ok := models.ParseCategory(c.Param("category"))
	if !ok {
		utils.BadRequestResponse(c, "Invalid category", nil)
		return
	}

	var ids []uuid.UUID
	if idsParam := c.Query("product_ids"); idsParam != "" {
		for _, part := range strings.Split(idsParam, ",") {
			if id, parseErr := uuid.Parse(strings.TrimSpace(part)); parseErr == nil {
				ids = append(ids, id)
			}
		}
	}

	if len(ids) == 0 {
		definitions, err := h.metricService.DefinitionsFor(category)
		if err != nil {
			utils.InternalErrorResponse(c, err.Error())
			return
		}
		utils.SuccessResponse(c, gin.H{"definitions": definitions})
		return
	}

	definitions, values, err := h.catalogService.CategoryMetrics(category, ids)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"definitions": definitions,
		"values":      values,
	})
}
