// internal/middleware/auth_test.go
package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackpick/stackpick-backend/internal/middleware"
	"github.com/stackpick/stackpick-backend/internal/models"
	"github.com/stackpick/stackpick-backend/internal/utils"
)

func sellerOnlyRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/products", middleware.AuthRequired(), middleware.SellerRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func bearerRequest(t *testing.T, router *gin.Engine, token string) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest("POST", "/products", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSellerRequired(t *testing.T) {
	utils.SetJWTSecret("test-secret")
	router := sellerOnlyRouter()

	sellerToken, err := utils.GenerateJWT(uuid.New(), "seller1", string(models.UserTypeSeller), 1)
	require.NoError(t, err)
	buyerToken, err := utils.GenerateJWT(uuid.New(), "buyer1", string(models.UserTypeBuyer), 1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, bearerRequest(t, router, sellerToken).Code)
	assert.Equal(t, http.StatusForbidden, bearerRequest(t, router, buyerToken).Code)
	assert.Equal(t, http.StatusUnauthorized, bearerRequest(t, router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, bearerRequest(t, router, "not-a-token").Code)
}
