package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github-proxy-go/internal/model"
)

// ErrorHandler returns an echo.HTTPErrorHandler that renders every framework
// error (router miss, body limit, recovered panic) in the proxy's fixed
// {error, message} shape.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "error_handler")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "internal error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		}

		if code >= http.StatusInternalServerError {
			logger.Error("unhandled error", "err", err, "path", c.Request().URL.Path)
		}

		body := model.ErrorResponse{
			Error:   http.StatusText(code),
			Message: message,
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, body)
		}
		if werr != nil {
			logger.Error("write error response", "err", werr)
		}
	}
}
