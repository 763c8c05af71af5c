package router

import (
	"net/http"

	"github.com/DjordjeVuckovic/newsman/internal/dto"
	"github.com/DjordjeVuckovic/newsman/internal/search"
	"github.com/DjordjeVuckovic/newsman/internal/types/query"
	"github.com/labstack/echo/v4"
)

type SearchRouter struct {
	e       *echo.Echo
	service *search.Service
}

func NewSearchRouter(e *echo.Echo, service *search.Service) *SearchRouter {
	return &SearchRouter{
		e:       e,
		service: service,
	}
}

func (r *SearchRouter) Bind() {
	api := r.e.Group("/api")
	api.GET("/search", r.searchHandler)
	api.GET("/article/:id", r.articleHandler)
	api.GET("/sources", r.sourcesHandler)
	api.GET("/categories", r.categoriesHandler)
	api.GET("/stats", r.statsHandler)
}

// searchHandler godoc
// @Summary Semantic article search
// @Description Ranks stored articles by cosine similarity to the query. An empty query is embedded as well, so min_score still applies.
// @Tags search
// @Produce json
// @Param query query string false "free text query"
// @Param limit query int false "page size (1-100)" default(10)
// @Param offset query int false "number of results to skip" default(0)
// @Param min_score query number false "minimum similarity between -1 and 1" default(0.35)
// @Param source query string false "feed name"
// @Param category query string false "category"
// @Param date query string false "ISO date (YYYY-MM-DD) or date-time"
// @Param date_operand query string false "before, after, on_or_before, on_or_after or on" default(on)
// @Success 200 {object} dto.SearchResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Router /api/search [get]
func (r *SearchRouter) searchHandler(c echo.Context) error {
	f, err := query.ParseFilter(query.Params{
		Query:       c.QueryParam("query"),
		Source:      c.QueryParam("source"),
		Category:    c.QueryParam("category"),
		Date:        c.QueryParam("date"),
		DateOperand: c.QueryParam("date_operand"),
		MinScore:    c.QueryParam("min_score"),
		Limit:       c.QueryParam("limit"),
		Offset:      offsetParam(c),
	})
	if err != nil {
		return err
	}

	hits, err := r.service.Search(c.Request().Context(), *f)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, searchResponse(hits))
}

// articleHandler godoc
// @Summary Get one article
// @Tags search
// @Produce json
// @Param id path string true "article id"
// @Success 200 {object} dto.ArticleResponse
// @Failure 404 {object} apperr.ErrorResponse
// @Router /api/article/{id} [get]
func (r *SearchRouter) articleHandler(c echo.Context) error {
	article, err := r.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.ArticleResponse{
		Success: true,
		Article: dto.ArticleFromDomain(*article),
	})
}

// sourcesHandler godoc
// @Summary List feed sources present in the store
// @Tags search
// @Produce json
// @Success 200 {object} dto.SourcesResponse
// @Router /api/sources [get]
func (r *SearchRouter) sourcesHandler(c echo.Context) error {
	sources, err := r.service.Sources(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.SourcesResponse{
		Success: true,
		Count:   len(sources),
		Sources: sources,
	})
}

// categoriesHandler godoc
// @Summary List categories present in the store
// @Tags search
// @Produce json
// @Success 200 {object} dto.CategoriesResponse
// @Router /api/categories [get]
func (r *SearchRouter) categoriesHandler(c echo.Context) error {
	categories, err := r.service.Categories(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.CategoriesResponse{
		Success:    true,
		Count:      len(categories),
		Categories: categories,
	})
}

// statsHandler godoc
// @Summary Article statistics
// @Tags search
// @Produce json
// @Success 200 {object} dto.StatsResponse
// @Router /api/stats [get]
func (r *SearchRouter) statsHandler(c echo.Context) error {
	stats, err := r.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.StatsResponse{
		Success:       true,
		TotalArticles: stats.TotalArticles,
		ArticlesToday: stats.ArticlesToday,
		Sources:       stats.Sources,
		Categories:    stats.Categories,
		Timestamp:     stats.Timestamp,
	})
}
