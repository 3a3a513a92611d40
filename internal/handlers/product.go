// internal/handlers/product.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stackpick/stackpick-backend/internal/models"
	"github.com/stackpick/stackpick-backend/internal/services"
	"github.com/stackpick/stackpick-backend/internal/utils"
)

type ProductHandler struct {
	catalogService *services.CatalogService
	authService    *services.AuthService
}

func NewProductHandler(catalogService *services.CatalogService, authService *services.AuthService) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		authService:    authService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.ProductSearchParams{
		PaginationParams: params,
		Search:           c.Query("search"),
	}

	if category, ok := models.ParseCategory(c.Query("category")); ok {
		searchParams.Category = category
	}

	if status := c.Query("status"); status != "" {
		productStatus := models.ProductStatus(status)
		searchParams.Status = &productStatus
	}

	if sellerIDStr := c.Query("seller_id"); sellerIDStr != "" {
		if sellerID, err := uuid.Parse(sellerIDStr); err == nil {
			searchParams.SellerID = &sellerID
		}
	}

	if priceMinStr := c.Query("price_min"); priceMinStr != "" {
		if priceMin, err := strconv.ParseInt(priceMinStr, 10, 64); err == nil {
			searchParams.PriceMin = &priceMin
		}
	}

	if priceMaxStr := c.Query("price_max"); priceMaxStr != "" {
		if priceMax, err := strconv.ParseInt(priceMaxStr, 10, 64); err == nil {
			searchParams.PriceMax = &priceMax
		}
	}

	if tags := c.Query("tags"); tags != "" {
		searchParams.Tags = strings.Split(tags, ",")
	}

	products, total, err := h.catalogService.SearchProducts(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /products/enriched?ids=a,b,c
//
// Batch fetch of products joined with their current scores. Unknown IDs are
// omitted from the result rather than errored.
func (h *ProductHandler) GetEnrichedProducts(c *gin.Context) {
	idsParam := c.Query("ids")
	if idsParam == "" {
		utils.BadRequestResponse(c, "ids query parameter is required", nil)
		return
	}

	var ids []uuid.UUID
	for _, part := range strings.Split(idsParam, ",") {
		if id, err := uuid.Parse(strings.TrimSpace(part)); err == nil {
			ids = append(ids, id)
		}
	}

	enriched, err := h.catalogService.EnrichedByIDs(ids, h.currentBuyer(c))
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"products": enriched})
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	sellerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	product, err := h.catalogService.CreateProduct(sellerID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{"product": product})
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	var viewerID *uuid.UUID
	if userID, ok := currentUserID(c); ok {
		viewerID = &userID
	}

	product, err := h.catalogService.GetProduct(id, viewerID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	sellerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.catalogService.UpdateProduct(id, sellerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	sellerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.catalogService.DeleteProduct(id, sellerID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "product deleted"})
}

// POST /products/:id/features
func (h *ProductHandler) AddFeature(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	sellerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	feature, err := h.catalogService.AddFeature(productID, sellerID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"feature": feature})
}

// DELETE /products/:id/features/:featureId
func (h *ProductHandler) DeleteFeature(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}
	featureID, err := uuid.Parse(c.Param("featureId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid feature ID", nil)
		return
	}

	sellerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.catalogService.DeleteFeature(productID, featureID, sellerID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "feature deleted"})
}

// PUT /products/:id/metrics/:code
func (h *ProductHandler) SetMetricValue(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	sellerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpsertMetricValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	value, err := h.catalogService.SetMetricValue(productID, sellerID, c.Param("code"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"metric_value": value})
}

// currentBuyer loads the authenticated user's buyer profile for the optional
// match factors in scoring; nil when unauthenticated or not a buyer.
func (h *ProductHandler) currentBuyer(c *gin.Context) *models.BuyerProfile {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}
	user, err := h.authService.GetUser(userID)
	if err != nil || user.UserType != models.UserTypeBuyer {
		return nil
	}
	return user.BuyerProfile()
}

// respondServiceError maps service error messages onto API error responses.
func respondServiceError(c *gin.Context, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"):
		utils.NotFoundResponse(c, strings.TrimSuffix(msg, " not found"))
	case strings.Contains(msg, "unauthorized"):
		utils.ForbiddenResponse(c, msg)
	default:
		utils.BadRequestResponse(c, msg, nil)
	}
}
