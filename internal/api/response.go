package api

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"marketplace-service/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool       `json:"success"`
	Count   *int       `json:"count,omitempty"`
	Message string     `json:"message,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

func respondList(c echo.Context, data any, count int) error {
	return c.JSON(http.StatusOK, Response{Success: true, Count: &count, Data: data})
}

func respondData(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

func invalidPayload(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload").SetInternal(err)
}

// parseID reads a numeric path parameter. A malformed id can never match a
// row, so it is reported with the resource's not found message.
func parseID(c echo.Context, name, notFound string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, &service.NotFoundError{Message: notFound}
	}
	return id, nil
}

// NewHTTPErrorHandler maps service errors onto status codes and renders them
// in the response envelope. Stack traces are included outside production.
func NewHTTPErrorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := classify(err, c)
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Msgf("Error handling %s %s", c.Request().Method, c.Request().RequestURI)
			if production {
				message = http.StatusText(http.StatusInternalServerError)
			}
		}

		body := &ErrorBody{Message: message}
		if !production {
			body.Stack = fmt.Sprintf("%+v", err)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, Response{Success: false, Error: body})
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("Error writing error response")
		}
	}
}

func classify(err error, c echo.Context) (int, string) {
	var validationErr *service.ValidationError
	var notFoundErr *service.NotFoundError
	var conflictErr *service.ConflictError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Message
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, notFoundErr.Message
	case errors.As(err, &conflictErr):
		return http.StatusConflict, conflictErr.Message
	case errors.As(err, &httpErr):
		if httpErr.Code == http.StatusNotFound || httpErr.Code == http.StatusMethodNotAllowed {
			return http.StatusNotFound, fmt.Sprintf("Route %s not found", c.Request().RequestURI)
		}
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
