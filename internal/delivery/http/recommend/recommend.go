package http_recommend

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/humanbelnik/kinoreco/internal/model"
	usecase_recommend "github.com/humanbelnik/kinoreco/internal/usecase/recommend"
)

// RecommendationsRequestDTO carries the caller's preferences
type RecommendationsRequestDTO struct {
	FavoriteGenres []string `json:"favorite_genres" example:"Action,Comedy"`
	MinimumRating  float64  `json:"minimum_rating" example:"7.5"`
}

// ContentResponseDTO is one recommended catalog entry
type ContentResponseDTO struct {
	Title        string   `json:"title" example:"Interstellar"`
	Year         string   `json:"year,omitempty" example:"2014"`
	Rating       float64  `json:"rating" example:"8.6"`
	Genres       []string `json:"genres" example:"Science Fiction,Drama"`
	Description  string   `json:"description" example:"A team of explorers travel through a wormhole..."`
	WhereToWatch []string `json:"where_to_watch" example:"Netflix,Prime Video"`
}

// RecommendationsResponseDTO is the response with recommended entries
type RecommendationsResponseDTO struct {
	Recommendations []ContentResponseDTO `json:"recommendations"`
	Total           int                  `json:"total"`
}

// HealthResponseDTO reports catalog state
type HealthResponseDTO struct {
	Status      string    `json:"status" example:"ok"`
	CatalogSize int       `json:"catalog_size" example:"412"`
	LastRefresh time.Time `json:"last_refresh"`
	Stale       bool      `json:"stale" example:"false"`
}

func (r *RecommendationsRequestDTO) ConvertToPreferences() model.UserPreferences {
	return model.UserPreferences{
		FavoriteGenres: r.FavoriteGenres,
		MinimumRating:  r.MinimumRating,
	}
}

func ConvertFromContent(c model.Content) ContentResponseDTO {
	return ContentResponseDTO{
		Title:        c.Title,
		Year:         c.Year,
		Rating:       c.Rating,
		Genres:       c.Genres,
		Description:  c.Overview,
		WhereToWatch: c.WhereToWatch,
	}
}

func ConvertFromContentList(content []model.Content) []ContentResponseDTO {
	out := make([]ContentResponseDTO, len(content))
	for i, c := range content {
		out[i] = ConvertFromContent(c)
	}
	return out
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

type Controller struct {
	uc *usecase_recommend.Usecase

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(uc *usecase_recommend.Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		uc:     uc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/recommendations", c.getRecommendations)
	router.GET("/health", c.health)
}

// @Summary Get recommendations
// @Description Returns a personalized selection of catalog entries matching the given preferences
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body RecommendationsRequestDTO true "User preferences"
// @Success 200 {object} RecommendationsResponseDTO "Recommendations (possibly empty)"
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /recommendations [post]
func (c *Controller) getRecommendations(ctx *gin.Context) {
	var req RecommendationsRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("invalid request body", slog.String("error", err.Error()))
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  http.StatusBadRequest,
		})
		return
	}

	content, err := c.uc.Recommend(ctx.Request.Context(), req.ConvertToPreferences())
	if err != nil {
		c.logger.Error("failed to build recommendations",
			slog.String("error", err.Error()),
		)
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to build recommendations",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}

	response := RecommendationsResponseDTO{
		Recommendations: ConvertFromContentList(content),
		Total:           len(content),
	}

	ctx.JSON(http.StatusOK, response)
}

// @Summary Service health
// @Description Reports catalog size and freshness
// @Tags Recommendations
// @Produce json
// @Success 200 {object} HealthResponseDTO "Catalog state"
// @Router /health [get]
func (c *Controller) health(ctx *gin.Context) {
	size, lastRefresh, stale := c.uc.Status()
	ctx.JSON(http.StatusOK, HealthResponseDTO{
		Status:      "ok",
		CatalogSize: size,
		LastRefresh: lastRefresh,
		Stale:       stale,
	})
}
