package monitor

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const monitoringPrefix = "/api/monitoring"

// Middleware records every /api request in ring. Requests to the monitoring
// endpoints themselves are not tracked.
func Middleware(ring *Ring) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if !strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, monitoringPrefix) {
				return next(c)
			}

			id := uuid.NewString()
			start := time.Now()
			ring.Add(Request{
				ID:        id,
				Method:    c.Request().Method,
				Endpoint:  path,
				Params:    params(c),
				StartedAt: start.UTC(),
				Status:    StatusPending,
			})

			finish := func(code int, errMsg string) {
				ring.Update(id, func(r *Request) {
					r.DurationMs = float64(time.Since(start).Microseconds()) / 1000
					r.StatusCode = code
					r.Status = StatusSuccess
					if errMsg != "" || code >= http.StatusBadRequest {
						r.Status = StatusError
					}
					r.Error = errMsg
				})
			}

			// A panicking handler is recorded as a 500 and the panic is passed on
			// to the recover middleware.
			defer func() {
				if rec := recover(); rec != nil {
					finish(http.StatusInternalServerError, fmt.Sprint(rec))
					panic(rec)
				}
			}()

			err := next(c)
			errMsg := ""
			if err != nil {
				c.Error(err)
				errMsg = err.Error()
			}
			finish(c.Response().Status, errMsg)
			return nil
		}
	}
}

func params(c echo.Context) map[string]string {
	out := make(map[string]string)
	for key, values := range c.QueryParams() {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}
