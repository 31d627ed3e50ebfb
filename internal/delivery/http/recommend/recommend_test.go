//go:build !integration
// +build !integration

package http_recommend

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"

	"github.com/humanbelnik/kinoreco/internal/infra/s3mock"
	"github.com/humanbelnik/kinoreco/internal/model"
	storage_catalog "github.com/humanbelnik/kinoreco/internal/storage/catalog"
	usecase_recommend "github.com/humanbelnik/kinoreco/internal/usecase/recommend"
	aggregator_mocks "github.com/humanbelnik/kinoreco/internal/usecase/recommend/mocks/aggregator"
)

type ControllerSuite struct {
	suite.Suite
}

func TestControllerSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.RunSuite(t, new(ControllerSuite))
}

func newRouter(t provider.T, content []model.Content) *gin.Engine {
	catalog := storage_catalog.New(12 * time.Hour)
	if content != nil {
		catalog.Replace(content)
	}

	uc := usecase_recommend.New(
		aggregator_mocks.NewAggregator(t),
		catalog,
		s3mock.New(),
		usecase_recommend.WithBackoffBase(0),
	)

	engine := gin.New()
	New(uc).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func testCatalog() []model.Content {
	return []model.Content{
		{Title: "Heat", Year: "1995", Rating: 8.3, Genres: []string{"Action", "Crime"}, WhereToWatch: []string{"Netflix"}},
		{Title: "Fargo", Year: "1996", Rating: 8.1, Genres: []string{"Crime", "Drama"}},
		{Title: "Paddington", Year: "2014", Rating: 7.2, Genres: []string{"Family", "Comedy"}},
		{Title: "Alien", Year: "1979", Rating: 8.5, Genres: []string{"Horror", "Science Fiction"}},
		{Title: "Low Bar", Year: "2020", Rating: 3.1, Genres: []string{"Action"}},
	}
}

func (s *ControllerSuite) TestGetRecommendations(t provider.T) {
	t.Parallel()

	router := newRouter(t, testCatalog())

	body, _ := json.Marshal(RecommendationsRequestDTO{
		FavoriteGenres: []string{"Action", "Crime"},
		MinimumRating:  7,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp RecommendationsResponseDTO
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, len(resp.Recommendations), resp.Total)
	assert.Equal(t, 2, resp.Total)
	for _, c := range resp.Recommendations {
		assert.GreaterOrEqual(t, c.Rating, 7.0)
	}
}

func (s *ControllerSuite) TestEmptyGenresYieldEmptyList(t provider.T) {
	t.Parallel()

	router := newRouter(t, testCatalog())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations",
		bytes.NewReader([]byte(`{"favorite_genres":[],"minimum_rating":0}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp RecommendationsResponseDTO
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Zero(t, resp.Total)
	assert.Empty(t, resp.Recommendations)
}

func (s *ControllerSuite) TestInvalidBody(t provider.T) {
	t.Parallel()

	router := newRouter(t, testCatalog())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations",
		bytes.NewReader([]byte(`{"favorite_genres": "not-a-list"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func (s *ControllerSuite) TestHealth(t provider.T) {
	t.Parallel()

	router := newRouter(t, testCatalog())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponseDTO
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, len(testCatalog()), resp.CatalogSize)
	assert.False(t, resp.Stale)
}
