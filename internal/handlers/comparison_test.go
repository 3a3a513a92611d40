// internal/handlers/comparison_test.go
package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/stackpick/stackpick-backend/internal/cache"
	"github.com/stackpick/stackpick-backend/internal/comparison"
	"github.com/stackpick/stackpick-backend/internal/handlers"
	"github.com/stackpick/stackpick-backend/internal/middleware"
	"github.com/stackpick/stackpick-backend/internal/models"
	"github.com/stackpick/stackpick-backend/internal/utils"
)

// staticFetcher serves fixed scores so comparison views assemble without a
// catalog.
type staticFetcher struct {
	scores map[uuid.UUID]int
}

func (f *staticFetcher) EnrichedByIDs(_ context.Context, ids []uuid.UUID) ([]comparison.EnrichedSummary, error) {
	out := make([]comparison.EnrichedSummary, 0, len(ids))
	for _, id := range ids {
		if score, ok := f.scores[id]; ok {
			out = append(out, comparison.EnrichedSummary{ID: id, OverallScore: score})
		}
	}
	return out, nil
}

func (f *staticFetcher) CategoryMetrics(context.Context, models.CategoryKey, []uuid.UUID) (*comparison.MetricTable, error) {
	return &comparison.MetricTable{
		Definitions: []comparison.MetricColumn{},
		Values:      map[uuid.UUID]map[string]comparison.MetricCell{},
	}, nil
}

type ComparisonHandlerTestSuite struct {
	suite.Suite
	router  *gin.Engine
	manager *comparison.Manager
	fetcher *staticFetcher
}

func (suite *ComparisonHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	entry := logrus.NewEntry(log)

	suite.fetcher = &staticFetcher{scores: map[uuid.UUID]int{}}
	suite.manager = comparison.NewManager(cache.NewMemoryStore(), entry)
	assembler := comparison.NewAssembler(suite.fetcher, entry)
	handler := handlers.NewComparisonHandler(suite.manager, assembler, nil)
	metricHandler := handlers.NewMetricHandler(nil, nil)

	suite.router = gin.New()
	v1 := suite.router.Group("/v1")
	v1.GET("/categories", metricHandler.GetCategories)
	v1.GET("/categories/:category/metrics", metricHandler.GetCategoryMetrics)

	routes := v1.Group("/comparison")
	routes.Use(middleware.OptionalAuth())
	{
		routes.GET("", handler.GetComparison)
		routes.DELETE("/items/:productId", handler.RemoveItem)
		routes.DELETE("/categories/:category", handler.ClearCategory)
		routes.DELETE("", handler.Clear)
		routes.PUT("/active-category", handler.SetActiveCategory)
	}
}

func (suite *ComparisonHandlerTestSuite) request(method, path string, body interface{}, sessionID string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(handlers.SessionHeader, sessionID)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// seed puts a product directly into the session's store, standing in for the
// add endpoint which needs a catalog behind it.
func (suite *ComparisonHandlerTestSuite) seed(sessionID string, category models.CategoryKey, name string) comparison.ProductSummary {
	p := comparison.ProductSummary{
		ID:       uuid.New(),
		Name:     name,
		Category: category,
	}
	suite.fetcher.scores[p.ID] = 80
	store := suite.manager.StoreFor(context.Background(), sessionID)
	suite.Require().Equal(comparison.ResultAdded, store.Add(context.Background(), p))
	return p
}

func (suite *ComparisonHandlerTestSuite) TestMissingSessionRejected() {
	w := suite.request("GET", "/v1/comparison", nil, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *ComparisonHandlerTestSuite) TestEmptyComparisonView() {
	w := suite.request("GET", "/v1/comparison", nil, "session-1")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			View comparison.View `json:"view"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(suite.T(), response.Success)
	assert.Empty(suite.T(), response.Data.View.Products)
}

func (suite *ComparisonHandlerTestSuite) TestViewReflectsSelection() {
	p := suite.seed("session-2", models.CategoryHR, "PeopleHub")

	w := suite.request("GET", "/v1/comparison", nil, "session-2")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Data struct {
			View comparison.View `json:"view"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), models.CategoryHR, response.Data.View.Category)
	suite.Require().Len(response.Data.View.Products, 1)
	assert.Equal(suite.T(), p.ID, response.Data.View.Products[0].ID)
	assert.Equal(suite.T(), 80, response.Data.View.Products[0].OverallScore)
}

func (suite *ComparisonHandlerTestSuite) TestSessionsAreIsolated() {
	suite.seed("session-3", models.CategoryHR, "PeopleHub")

	w := suite.request("GET", "/v1/comparison", nil, "session-4")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Data struct {
			View comparison.View `json:"view"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Empty(suite.T(), response.Data.View.Products)
}

func (suite *ComparisonHandlerTestSuite) TestRemoveItem() {
	p := suite.seed("session-5", models.CategoryLegal, "ClauseWorks")

	w := suite.request("DELETE", "/v1/comparison/items/"+p.ID.String(), nil, "session-5")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request("DELETE", "/v1/comparison/items/"+p.ID.String(), nil, "session-5")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *ComparisonHandlerTestSuite) TestClearCategoryValidation() {
	w := suite.request("DELETE", "/v1/comparison/categories/gaming", nil, "session-6")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.request("DELETE", "/v1/comparison/categories/hr", nil, "session-6")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *ComparisonHandlerTestSuite) TestSetActiveCategory() {
	w := suite.request("PUT", "/v1/comparison/active-category", gin.H{"category": "devtools"}, "session-7")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Data struct {
			State comparison.State `json:"state"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().NotNil(response.Data.State.ActiveCategory)
	assert.Equal(suite.T(), models.CategoryDevTools, *response.Data.State.ActiveCategory)

	w = suite.request("PUT", "/v1/comparison/active-category", gin.H{"category": "gaming"}, "session-7")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *ComparisonHandlerTestSuite) TestAuthenticatedSessionUsesUserID() {
	userID := uuid.New()
	token, err := utils.GenerateJWT(userID, "buyer1", string(models.UserTypeBuyer), 1)
	suite.Require().NoError(err)

	suite.seed(userID.String(), models.CategoryHR, "PeopleHub")

	req, _ := http.NewRequest("GET", "/v1/comparison", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Data struct {
			View comparison.View `json:"view"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(suite.T(), response.Data.View.Products, 1)
}

func (suite *ComparisonHandlerTestSuite) TestGetCategories() {
	w := suite.request("GET", "/v1/categories", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response struct {
		Data struct {
			Categories []struct {
				Key         string `json:"key"`
				DisplayName string `json:"display_name"`
			} `json:"categories"`
		} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Data.Categories, 4)
	assert.Equal(suite.T(), "hr", response.Data.Categories[0].Key)
	assert.Equal(suite.T(), "devtools", response.Data.Categories[3].Key)
}

func (suite *ComparisonHandlerTestSuite) TestCategoryMetricsRejectsUnknownCategory() {
	w := suite.request("GET", "/v1/categories/gaming/metrics", nil, "")
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response struct {
		Success bool `json:"success"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(suite.T(), response.Success)
}

func TestComparisonHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ComparisonHandlerTestSuite))
}
