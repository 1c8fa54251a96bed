package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/nano-gallery/internal/interactions"
	"github.com/labstack/echo/v4"
)

// interactionError maps interaction failures to HTTP errors. Anything that is
// not a local validation failure came from the store and may be retried.
func interactionError(err error) error {
	switch {
	case errors.Is(err, interactions.ErrEmptyImageID),
		errors.Is(err, interactions.ErrEmptyEmoji),
		errors.Is(err, interactions.ErrEmptyComment),
		errors.Is(err, interactions.ErrCommentTooLong):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, interactions.ErrNotAuthor):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, interactions.ErrCommentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusGatewayTimeout, echo.Map{"message": "store timed out", "retryable": true}).SetInternal(err)
	}
	return storeError(err)
}

func storeError(err error) error {
	return echo.NewHTTPError(http.StatusBadGateway, echo.Map{"message": "store unavailable", "retryable": true}).SetInternal(err)
}
