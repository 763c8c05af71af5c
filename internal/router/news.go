package router

import (
	"net/http"

	"github.com/DjordjeVuckovic/newsman/internal/domain"
	"github.com/DjordjeVuckovic/newsman/internal/dto"
	"github.com/DjordjeVuckovic/newsman/internal/search"
	"github.com/DjordjeVuckovic/newsman/internal/types/query"
	"github.com/labstack/echo/v4"
)

// NewsRouter serves newest-first listings.
type NewsRouter struct {
	e       *echo.Echo
	service *search.Service
}

func NewNewsRouter(e *echo.Echo, service *search.Service) *NewsRouter {
	return &NewsRouter{
		e:       e,
		service: service,
	}
}

func (r *NewsRouter) Bind() {
	news := r.e.Group("/api/news")
	news.GET("", r.listHandler)
	news.GET("/source/:source", r.bySourceHandler)
	news.GET("/category/:category", r.byCategoryHandler)
}

// listHandler godoc
// @Summary Latest articles
// @Tags news
// @Produce json
// @Param limit query int false "page size (1-100)" default(10)
// @Param offset query int false "number of articles to skip" default(0)
// @Param skip query int false "alias of offset"
// @Success 200 {object} dto.SearchResponse
// @Failure 400 {object} apperr.ErrorResponse
// @Router /api/news [get]
func (r *NewsRouter) listHandler(c echo.Context) error {
	return r.browse(c, query.Params{})
}

// bySourceHandler godoc
// @Summary Latest articles of one source
// @Tags news
// @Produce json
// @Param source path string true "feed name"
// @Param limit query int false "page size (1-100)" default(10)
// @Param offset query int false "number of articles to skip" default(0)
// @Success 200 {object} dto.SearchResponse
// @Router /api/news/source/{source} [get]
func (r *NewsRouter) bySourceHandler(c echo.Context) error {
	return r.browse(c, query.Params{Source: c.Param("source")})
}

// byCategoryHandler godoc
// @Summary Latest articles of one category
// @Tags news
// @Produce json
// @Param category path string true "category"
// @Param limit query int false "page size (1-100)" default(10)
// @Param offset query int false "number of articles to skip" default(0)
// @Success 200 {object} dto.SearchResponse
// @Router /api/news/category/{category} [get]
func (r *NewsRouter) byCategoryHandler(c echo.Context) error {
	return r.browse(c, query.Params{Category: c.Param("category")})
}

func (r *NewsRouter) browse(c echo.Context, p query.Params) error {
	p.Limit = c.QueryParam("limit")
	p.Offset = offsetParam(c)

	f, err := query.ParseFilter(p)
	if err != nil {
		return err
	}

	hits, err := r.service.Browse(c.Request().Context(), *f)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, searchResponse(hits))
}

// offsetParam accepts "skip" as an alias of "offset".
func offsetParam(c echo.Context) string {
	if v := c.QueryParam("offset"); v != "" {
		return v
	}
	return c.QueryParam("skip")
}

func searchResponse(hits []domain.ScoredArticle) dto.SearchResponse {
	return dto.SearchResponse{
		Success: true,
		Count:   len(hits),
		Results: dto.SearchResultsFromDomain(hits),
	}
}
