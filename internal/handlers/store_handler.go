package handlers

import (
	"net/http"

	"github.com/gringo-delivery/backend/internal/models"
	"github.com/gringo-delivery/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// StoreHandler handles store-related HTTP requests
type StoreHandler struct {
	stores repositories.StoreRepository
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(stores repositories.StoreRepository) *StoreHandler {
	return &StoreHandler{stores: stores}
}

// RegisterStoreRoutes registers store routes
func (h *StoreHandler) RegisterStoreRoutes(g *echo.Group) {
	g.POST("/stores", h.CreateStore)
	g.GET("/stores/me", h.GetMyStore)
	g.GET("/stores/:id", h.GetStore)
}

// CreateStore registers a new establishment
func (h *StoreHandler) CreateStore(c echo.Context) error {
	var req models.CreateStoreRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	store := &models.Store{
		BusinessName: req.BusinessName,
		CNPJ:         req.CNPJ,
		FirebaseUID:  req.FirebaseUID,
		Address: models.Address{
			Text:        req.AddressText,
			Coordinates: req.Coordinates,
		},
	}
	if err := h.stores.Create(c.Request().Context(), store); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, store)
}

// GetMyStore returns the store of the authenticated Firebase identity
func (h *StoreHandler) GetMyStore(c echo.Context) error {
	firebaseUID, _ := c.Get("firebaseUID").(string)
	if firebaseUID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	store, err := h.stores.GetByFirebaseUID(c.Request().Context(), firebaseUID)
	if err != nil {
		return httpError(err)
	}
	if store == nil {
		return echo.NewHTTPError(http.StatusNotFound, "store not found")
	}
	return c.JSON(http.StatusOK, store)
}

// GetStore returns a single store
func (h *StoreHandler) GetStore(c echo.Context) error {
	store, err := h.stores.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if store == nil {
		return echo.NewHTTPError(http.StatusNotFound, "store not found")
	}
	return c.JSON(http.StatusOK, store)
}
