package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gringo-delivery/backend/internal/models"
	"github.com/gringo-delivery/backend/internal/repositories"
	"github.com/gringo-delivery/backend/internal/services"
	"github.com/gringo-delivery/backend/internal/sse"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DispatchService is the notification lifecycle contract consumed by the
// HTTP layer
type DispatchService interface {
	CreateDeliveryRequest(ctx context.Context, motoboyID string, order bson.M, fullscreen bool) (*models.Notification, *models.Motoboy, error)
	CreateCallStyle(ctx context.Context, params services.CallStyleParams) (*services.CallStyleResult, error)
	RespondToCallStyle(ctx context.Context, callID, action, firebaseUID string) (*models.Notification, error)
	GetCallInfo(ctx context.Context, callID string) (*services.CallInfo, error)
	CreateGeneric(ctx context.Context, params services.GenericParams) (*models.Notification, error)
	CreateOrderReady(ctx context.Context, motoboyID, orderID string) (*models.Notification, error)
	NotifyOccurrence(ctx context.Context, title, message, firebaseUID string) (*models.Notification, error)
	NotifySupport(ctx context.Context, title, message string, data bson.M) ([]models.Notification, error)
	UpdateStatus(ctx context.Context, id string, status models.NotificationStatus) (*models.Notification, error)
}

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	dispatch      DispatchService
	notifications repositories.NotificationRepository
	fanout        sse.Fanout
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(dispatch DispatchService, notifications repositories.NotificationRepository, fanout sse.Fanout) *NotificationHandler {
	return &NotificationHandler{
		dispatch:      dispatch,
		notifications: notifications,
		fanout:        fanout,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/all", h.GetAllNotifications)
	g.POST("/notifications", h.CreateNotification)
	g.PUT("/notifications", h.UpdateNotification)
	g.POST("/notifications/generic", h.CreateGenericNotification)
	g.POST("/notifications/order-ready", h.OrderReadyNotification)
	g.POST("/notifications/notifyOccurrence", h.NotifyOccurrence)
	g.POST("/notifications/notifySupport", h.NotifySupport)
	g.POST("/notifications/call-style", h.CreateCallStyleNotification)
	g.POST("/notifications/call-style/respond", h.RespondToCallStyleNotification)
	g.GET("/notifications/call-style/:callId", h.GetCallInfo)
}

// GetNotifications returns the pending delivery requests ringing a motoboy
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	motoboyID := c.QueryParam("motoboyId")
	if !primitive.IsValidObjectID(motoboyID) {
		return echo.NewHTTPError(http.StatusBadRequest, "motoboyId query parameter is required")
	}

	notifications, err := h.notifications.GetPendingDeliveryRequests(c.Request().Context(), motoboyID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, notifications)
}

// GetAllNotifications returns every notification addressed to a motoboy
func (h *NotificationHandler) GetAllNotifications(c echo.Context) error {
	motoboyID := c.QueryParam("motoboyId")
	if !primitive.IsValidObjectID(motoboyID) {
		return echo.NewHTTPError(http.StatusBadRequest, "motoboyId query parameter is required")
	}

	notifications, err := h.notifications.GetByMotoboyID(c.Request().Context(), motoboyID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, notifications)
}

type createNotificationRequest struct {
	MotoboyID  string                 `json:"motoboyId" validate:"required"`
	Order      map[string]interface{} `json:"order"`
	Fullscreen bool                   `json:"fullscreen"`
}

// CreateNotification creates a delivery-request notification and pushes it
// over the event stream
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	var req createNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	notification, motoboy, err := h.dispatch.CreateDeliveryRequest(c.Request().Context(), req.MotoboyID, bson.M(req.Order), req.Fullscreen)
	if err != nil {
		return httpError(err)
	}

	// Persistence done; delivery is advisory from here on.
	delivered := h.fanout.SendEventToStore(motoboy.FirebaseUID, "notificationUpdate", notification)
	log.Printf("SSE delivery-request notification %s for motoboy %s: delivered=%t",
		notification.ID.Hex(), motoboy.Name, delivered)

	return c.JSON(http.StatusCreated, notification)
}

type updateNotificationRequest struct {
	ID     string `json:"id" validate:"required"`
	Status string `json:"status" validate:"required"`
}

// UpdateNotification updates a notification's status
func (h *NotificationHandler) UpdateNotification(c echo.Context) error {
	var req updateNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	notification, err := h.dispatch.UpdateStatus(c.Request().Context(), req.ID, models.NotificationStatus(req.Status))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated successfully", "notification": notification})
}

type genericNotificationRequest struct {
	MotoboyID   string     `json:"motoboyId"`
	FirebaseUID string     `json:"firebaseUid"`
	Title       string     `json:"title" validate:"required"`
	Message     string     `json:"message" validate:"required"`
	Type        string     `json:"type"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	Screen      string     `json:"screen"`
	ChatID      string     `json:"chatId"`
}

// CreateGenericNotification creates a generic notification with push and
// event-stream fan-out
func (h *NotificationHandler) CreateGenericNotification(c echo.Context) error {
	var req genericNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	notification, err := h.dispatch.CreateGeneric(c.Request().Context(), services.GenericParams{
		MotoboyID:   req.MotoboyID,
		FirebaseUID: req.FirebaseUID,
		Title:       req.Title,
		Message:     req.Message,
		Type:        models.NotificationType(req.Type),
		ExpiresAt:   req.ExpiresAt,
		Screen:      req.Screen,
		ChatID:      req.ChatID,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, notification)
}

type orderReadyRequest struct {
	MotoboyID string `json:"motoboyId" validate:"required"`
	OrderID   string `json:"orderId" validate:"required"`
}

// OrderReadyNotification notifies a motoboy that an order is ready for pickup
func (h *NotificationHandler) OrderReadyNotification(c echo.Context) error {
	var req orderReadyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	notification, err := h.dispatch.CreateOrderReady(c.Request().Context(), req.MotoboyID, req.OrderID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":      "order-ready notification created",
		"notification": notification,
	})
}

type occurrenceRequest struct {
	Title       string `json:"title" validate:"required"`
	Message     string `json:"message" validate:"required"`
	FirebaseUID string `json:"firebaseUid" validate:"required"`
}

// NotifyOccurrence records an occurrence report and notifies the actor
func (h *NotificationHandler) NotifyOccurrence(c echo.Context) error {
	var req occurrenceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	notification, err := h.dispatch.NotifyOccurrence(c.Request().Context(), req.Title, req.Message, req.FirebaseUID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, notification)
}

type supportRequest struct {
	Title   string                 `json:"title" validate:"required"`
	Message string                 `json:"message" validate:"required"`
	Data    map[string]interface{} `json:"data"`
}

// NotifySupport fans an alert out to every active support member
func (h *NotificationHandler) NotifySupport(c echo.Context) error {
	var req supportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	notifications, err := h.dispatch.NotifySupport(c.Request().Context(), req.Title, req.Message, bson.M(req.Data))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":       "notifications sent to support team",
		"count":         len(notifications),
		"notifications": notifications,
	})
}

type callStyleRequest struct {
	MotoboyID      string                 `json:"motoboyId"`
	FirebaseUID    string                 `json:"firebaseUid"`
	Title          string                 `json:"title" validate:"required"`
	Message        string                 `json:"message" validate:"required"`
	TimeoutSeconds int                    `json:"timeoutSeconds"`
	CallID         string                 `json:"callId"`
	Screen         string                 `json:"screen"`
	AdditionalData map[string]interface{} `json:"additionalData"`
}

// CreateCallStyleNotification creates a ringing full-screen dispatch request
func (h *NotificationHandler) CreateCallStyleNotification(c echo.Context) error {
	var req callStyleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.dispatch.CreateCallStyle(c.Request().Context(), services.CallStyleParams{
		MotoboyID:      req.MotoboyID,
		FirebaseUID:    req.FirebaseUID,
		Title:          req.Title,
		Message:        req.Message,
		TimeoutSeconds: req.TimeoutSeconds,
		CallID:         req.CallID,
		Screen:         req.Screen,
		AdditionalData: req.AdditionalData,
	})
	if err != nil {
		return httpError(err)
	}

	log.Printf("Call-style notification created: %s", result.CallID)
	return c.JSON(http.StatusCreated, result)
}

type callRespondRequest struct {
	CallID      string `json:"callId" validate:"required"`
	Action      string `json:"action" validate:"required"`
	FirebaseUID string `json:"firebaseUid" validate:"required"`
}

// RespondToCallStyleNotification accepts or declines a ringing call
func (h *NotificationHandler) RespondToCallStyleNotification(c echo.Context) error {
	var req callRespondRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	notification, err := h.dispatch.RespondToCallStyle(c.Request().Context(), req.CallID, req.Action, req.FirebaseUID)
	if err != nil {
		return httpError(err)
	}

	log.Printf("Call response processed: %s - %s", req.CallID, req.Action)
	return c.JSON(http.StatusOK, echo.Map{
		"callId":       req.CallID,
		"action":       req.Action,
		"notification": notification,
	})
}

// GetCallInfo returns the current state of a call
func (h *NotificationHandler) GetCallInfo(c echo.Context) error {
	info, err := h.dispatch.GetCallInfo(c.Request().Context(), c.Param("callId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, info)
}
