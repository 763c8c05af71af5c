package router

import (
	"net/http"

	"github.com/DjordjeVuckovic/newsman/internal/monitor"
	"github.com/labstack/echo/v4"
)

type MonitoringRouter struct {
	e       *echo.Echo
	ring    *monitor.Ring
	origins []string
}

// NewMonitoringRouter serves the request log. origins are the cross-origin
// clients allowed on the WebSocket stream, usually the CORS origins.
func NewMonitoringRouter(e *echo.Echo, ring *monitor.Ring, origins []string) *MonitoringRouter {
	return &MonitoringRouter{e: e, ring: ring, origins: origins}
}

func (r *MonitoringRouter) Bind() {
	r.e.GET("/api/monitoring/requests", r.requestsHandler)
	r.e.GET("/api/monitoring/stream", monitor.StreamHandler(r.ring, r.origins))
}

type requestsResponse struct {
	Success  bool              `json:"success"`
	Count    int               `json:"count"`
	Requests []monitor.Request `json:"requests"`
}

// requestsHandler godoc
// @Summary Recently served API requests
// @Tags monitoring
// @Produce json
// @Success 200 {object} requestsResponse
// @Router /api/monitoring/requests [get]
func (r *MonitoringRouter) requestsHandler(c echo.Context) error {
	requests := r.ring.Recent()
	return c.JSON(http.StatusOK, requestsResponse{
		Success:  true,
		Count:    len(requests),
		Requests: requests,
	})
}
