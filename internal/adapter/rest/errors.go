package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// statusFor maps a service error to its HTTP status and client-facing message.
func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.Is(err, port.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, port.ErrUnauthenticated):
		return http.StatusUnauthorized, "Authentication invalid"
	case errors.Is(err, port.ErrForbidden):
		return http.StatusForbidden, "Not authorized to access this resource"
	case errors.Is(err, port.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.As(err, &he):
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && he.Code < http.StatusInternalServerError {
			msg = m
		}
		return he.Code, msg
	default:
		return http.StatusInternalServerError, "Something went wrong, try again later"
	}
}

// NewErrorHandler は全てのエラーを {success:false, message} 形式で返す echo のエラーハンドラを生成します。
func NewErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, errorResponse{Success: false, Message: msg})
		}
		if writeErr != nil {
			logger.Warn("failed to write error response", zap.Error(writeErr))
		}
	}
}
