package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the failure half of the API envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func errorBody(msg string) ErrorResponse {
	return ErrorResponse{Success: false, Error: msg}
}

func GlobalErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, errorBody(ve.Message))
			return
		}

		if errors.Is(err, ErrNotFound) {
			_ = c.JSON(http.StatusNotFound, errorBody(err.Error()))
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := fmt.Sprintf("%v", he.Message)
			_ = c.JSON(he.Code, errorBody(msg))
			return
		}

		slog.Error("Unhandled error", "error", err)
		_ = c.JSON(http.StatusInternalServerError, errorBody("internal server error"))
	}
}
