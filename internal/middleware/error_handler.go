package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"dealership_app_echo/internal/apperrors"
)

// CustomErrorHandler maps the financing error taxonomy to JSON HTTP responses:
// bad financial inputs are 400, missing entities 404, chain breaks 409, and
// storage failures 500 without leaking the underlying cause.
func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	var (
		httpErr     *echo.HTTPError
		invalidPlan *apperrors.InvalidPlanError
		notFound    *apperrors.NotFoundError
		chainBroken *apperrors.ChainIntegrityError
		persistence *apperrors.PersistenceError
	)

	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	case errors.As(err, &invalidPlan):
		code = http.StatusBadRequest
		message = invalidPlan.Error()
	case errors.As(err, &notFound):
		code = http.StatusNotFound
		message = notFound.Error()
	case errors.As(err, &chainBroken):
		code = http.StatusConflict
		message = chainBroken.Error()
	case errors.As(err, &persistence):
		code = http.StatusInternalServerError
		message = "storage failure"
		log.Error().Err(persistence.Err).Str("op", persistence.Op).Msg("persistence failure")
	default:
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unexpected error")
	}

	if writeErr := c.JSON(code, map[string]string{"error": message}); writeErr != nil {
		log.Error().Err(writeErr).Msg("failed to write error response")
	}
}
