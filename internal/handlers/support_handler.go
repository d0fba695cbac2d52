package handlers

import (
	"net/http"

	"github.com/gringo-delivery/backend/internal/models"
	"github.com/gringo-delivery/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// SupportHandler handles support-team HTTP requests
type SupportHandler struct {
	supportTeam repositories.SupportTeamRepository
}

// NewSupportHandler creates a new SupportHandler
func NewSupportHandler(supportTeam repositories.SupportTeamRepository) *SupportHandler {
	return &SupportHandler{supportTeam: supportTeam}
}

// RegisterSupportRoutes registers support-team routes
func (h *SupportHandler) RegisterSupportRoutes(g *echo.Group) {
	g.GET("/support-team", h.GetSupportTeam)
	g.POST("/support-team", h.CreateSupportMember)
}

// GetSupportTeam lists support team members
func (h *SupportHandler) GetSupportTeam(c echo.Context) error {
	members, err := h.supportTeam.GetAll(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, members)
}

// CreateSupportMember registers a new support team member
func (h *SupportHandler) CreateSupportMember(c echo.Context) error {
	var req models.CreateSupportMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	member := &models.SupportTeamMember{
		Name:        req.Name,
		FirebaseUID: req.FirebaseUID,
		Active:      active,
	}
	if err := h.supportTeam.Create(c.Request().Context(), member); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, member)
}
