// internal/handlers/bookmark.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stackpick/stackpick-backend/internal/services"
	"github.com/stackpick/stackpick-backend/internal/utils"
)

type BookmarkHandler struct {
	bookmarkService *services.BookmarkService
}

func NewBookmarkHandler(bookmarkService *services.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarkService: bookmarkService}
}

// GET /bookmarks
func (h *BookmarkHandler) GetBookmarks(c *gin.Context) {
	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	bookmarks, total, err := h.bookmarkService.ListBookmarks(buyerID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(bookmarks, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /bookmarks/:productId
func (h *BookmarkHandler) AddBookmark(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	bookmark, err := h.bookmarkService.AddBookmark(buyerID, productID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"bookmark": bookmark})
}

// DELETE /bookmarks/:productId
func (h *BookmarkHandler) RemoveBookmark(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	buyerID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.bookmarkService.RemoveBookmark(buyerID, productID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "bookmark removed"})
}
