package handlers

import (
	"log"
	"net/http"

	"github.com/gringo-delivery/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
)

// httpError translates a service error into the HTTP response contract:
// taxonomy errors surface their message with the mapped 4xx/5xx status,
// anything else is logged and hidden behind a generic 500.
func httpError(err error) error {
	if apperrors.IsTaxonomy(err) {
		return echo.NewHTTPError(apperrors.MapHTTPStatus(err), err.Error())
	}
	log.Printf("Internal error: %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
