package router

import (
	"net/http"

	"github.com/DjordjeVuckovic/newsman/internal/company"
	"github.com/DjordjeVuckovic/newsman/internal/dto"
	"github.com/DjordjeVuckovic/newsman/internal/search"
	"github.com/labstack/echo/v4"
)

// CompanyRouter serves the company collection. Reads behave like their
// /api counterparts on a separate store.
type CompanyRouter struct {
	e         *echo.Echo
	reads     *SearchRouter
	publisher *company.Publisher
}

func NewCompanyRouter(e *echo.Echo, service *search.Service, publisher *company.Publisher) *CompanyRouter {
	return &CompanyRouter{
		e:         e,
		reads:     NewSearchRouter(e, service),
		publisher: publisher,
	}
}

func (r *CompanyRouter) Bind() {
	g := r.e.Group("/api/company")
	g.POST("/add", r.addHandler)
	g.GET("/search", r.searchHandler)
	g.GET("/sources", r.sourcesHandler)
	g.GET("/categories", r.categoriesHandler)
	g.GET("/stats", r.statsHandler)
}

// addHandler godoc
// @Summary Publish a company article
// @Description Embeds the article and stores it in the company collection. title, url and summary are required.
// @Tags company
// @Accept json
// @Produce json
// @Param article body dto.CompanyArticleRequest true "article"
// @Success 200 {object} dto.CompanyAddResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Failure 500 {object} apperr.ErrorResponse
// @Router /api/company/add [post]
func (r *CompanyRouter) addHandler(c echo.Context) error {
	var req dto.CompanyArticleRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	article, err := r.publisher.Add(c.Request().Context(), company.Submission{
		Title:         req.Title,
		URL:           req.URL,
		Summary:       req.Summary,
		Content:       req.Content,
		PublishedDate: req.PublishedDate,
		Source:        req.Source,
		Categories:    req.Categories,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.CompanyAddResponse{
		Success:   true,
		Message:   "Article added successfully",
		ArticleID: article.ID,
	})
}

// searchHandler godoc
// @Summary Semantic search over company articles
// @Tags company
// @Produce json
// @Param query query string false "free text query"
// @Param limit query int false "page size (1-100)" default(10)
// @Param offset query int false "number of results to skip" default(0)
// @Param min_score query number false "minimum similarity between -1 and 1" default(0.35)
// @Param source query string false "source name"
// @Param category query string false "category"
// @Param date query string false "ISO date (YYYY-MM-DD) or date-time"
// @Param date_operand query string false "before, after, on_or_before, on_or_after or on" default(on)
// @Success 200 {object} dto.SearchResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Router /api/company/search [get]
func (r *CompanyRouter) searchHandler(c echo.Context) error {
	return r.reads.searchHandler(c)
}

// sourcesHandler godoc
// @Summary List sources present in the company collection
// @Tags company
// @Produce json
// @Success 200 {object} dto.SourcesResponse
// @Router /api/company/sources [get]
func (r *CompanyRouter) sourcesHandler(c echo.Context) error {
	return r.reads.sourcesHandler(c)
}

// categoriesHandler godoc
// @Summary List categories present in the company collection
// @Tags company
// @Produce json
// @Success 200 {object} dto.CategoriesResponse
// @Router /api/company/categories [get]
func (r *CompanyRouter) categoriesHandler(c echo.Context) error {
	return r.reads.categoriesHandler(c)
}

// statsHandler godoc
// @Summary Company article statistics
// @Tags company
// @Produce json
// @Success 200 {object} dto.StatsResponse
// @Router /api/company/stats [get]
func (r *CompanyRouter) statsHandler(c echo.Context) error {
	return r.reads.statsHandler(c)
}
