package handlers

import (
	"net/http"

	"github.com/gringo-delivery/backend/internal/models"
	"github.com/gringo-delivery/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// MotoboyHandler handles motoboy-related HTTP requests
type MotoboyHandler struct {
	motoboys repositories.MotoboyRepository
}

// NewMotoboyHandler creates a new MotoboyHandler
func NewMotoboyHandler(motoboys repositories.MotoboyRepository) *MotoboyHandler {
	return &MotoboyHandler{motoboys: motoboys}
}

// RegisterMotoboyRoutes registers motoboy routes
func (h *MotoboyHandler) RegisterMotoboyRoutes(g *echo.Group) {
	g.POST("/motoboys", h.CreateMotoboy)
	g.GET("/motoboys/available", h.GetAvailableMotoboys)
	g.GET("/motoboys/:id", h.GetMotoboy)
	g.PUT("/motoboys/:id/location", h.UpdateLocation)
	g.PUT("/motoboys/:id/tokens", h.UpdateTokens)
	g.PUT("/motoboys/:id/availability", h.UpdateAvailability)
}

// CreateMotoboy registers a new courier
func (h *MotoboyHandler) CreateMotoboy(c echo.Context) error {
	var req models.CreateMotoboyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	motoboy := &models.Motoboy{
		Name:        req.Name,
		Phone:       req.Phone,
		FirebaseUID: req.FirebaseUID,
		FCMToken:    req.FCMToken,
		PushToken:   req.PushToken,
		Coordinates: req.Coordinates,
		IsAvailable: false,
	}
	if err := h.motoboys.Create(c.Request().Context(), motoboy); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, motoboy)
}

// GetAvailableMotoboys lists couriers currently accepting deliveries
func (h *MotoboyHandler) GetAvailableMotoboys(c echo.Context) error {
	motoboys, err := h.motoboys.GetAvailable(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, motoboys)
}

// GetMotoboy returns a single courier
func (h *MotoboyHandler) GetMotoboy(c echo.Context) error {
	motoboy, err := h.motoboys.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if motoboy == nil {
		return echo.NewHTTPError(http.StatusNotFound, "motoboy not found")
	}
	return c.JSON(http.StatusOK, motoboy)
}

// UpdateLocation stores the courier's latest position
func (h *MotoboyHandler) UpdateLocation(c echo.Context) error {
	var req models.UpdateMotoboyLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.motoboys.UpdateLocation(c.Request().Context(), c.Param("id"), req.Coordinates); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// UpdateTokens stores the courier's push delivery tokens
func (h *MotoboyHandler) UpdateTokens(c echo.Context) error {
	var req models.UpdateMotoboyTokensRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.motoboys.UpdateTokens(c.Request().Context(), c.Param("id"), req.FCMToken, req.PushToken); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// UpdateAvailability flips whether the courier accepts deliveries
func (h *MotoboyHandler) UpdateAvailability(c echo.Context) error {
	var req models.UpdateMotoboyAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.motoboys.UpdateAvailability(c.Request().Context(), c.Param("id"), *req.IsAvailable); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
