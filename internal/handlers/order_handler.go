package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gringo-delivery/backend/internal/models"
	"github.com/gringo-delivery/backend/internal/pricing"
	"github.com/gringo-delivery/backend/internal/repositories"
	"github.com/gringo-delivery/backend/internal/sse"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
)

// maxAutoRing bounds how many available motoboys are rung per order
const maxAutoRing = 5

// DeliveryDispatcher is the slice of the notification service the order flow
// needs to ring couriers
type DeliveryDispatcher interface {
	CreateDeliveryRequest(ctx context.Context, motoboyID string, order bson.M, fullscreen bool) (*models.Notification, *models.Motoboy, error)
}

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orders   repositories.OrderRepository
	motoboys repositories.MotoboyRepository
	engine   *pricing.Engine
	dispatch DeliveryDispatcher
	fanout   sse.Fanout
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders repositories.OrderRepository, motoboys repositories.MotoboyRepository, engine *pricing.Engine, dispatch DeliveryDispatcher, fanout sse.Fanout) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		motoboys: motoboys,
		engine:   engine,
		dispatch: dispatch,
		fanout:   fanout,
	}
}

// RegisterOrderRoutes registers order routes
func (h *OrderHandler) RegisterOrderRoutes(g *echo.Group) {
	g.POST("/orders/preview-cost", h.PreviewCost)
	g.POST("/orders", h.CreateOrder)
	g.GET("/orders", h.GetOrders)
	g.GET("/orders/:id", h.GetOrder)
}

type previewCustomer struct {
	CustomerAddress models.Address `json:"customerAddress"`
}

type previewCostRequest struct {
	Store struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"store"`
	Customers  []previewCustomer  `json:"customer"`
	DriveBack  bool               `json:"driveBack"`
	Conditions pricing.Conditions `json:"conditions"`
}

// PreviewCost estimates route distance and delivery cost before an order is
// committed. Pure computation: nothing is persisted.
func (h *OrderHandler) PreviewCost(c echo.Context) error {
	var req previewCostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	customerCoords := make([][]float64, 0, len(req.Customers))
	for _, customer := range req.Customers {
		customerCoords = append(customerCoords, customer.CustomerAddress.Coordinates)
	}

	preview, err := h.engine.Preview(req.Store.Coordinates, customerCoords, req.DriveBack, req.Conditions)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "preview": preview})
}

type createOrderRequest struct {
	Store          models.OrderStore      `json:"store"`
	Customers      []models.OrderCustomer `json:"customer" validate:"required,min=1"`
	Items          []models.OrderItem     `json:"items" validate:"required,min=1"`
	Payment        models.OrderPayment    `json:"payment"`
	Notes          string                 `json:"notes"`
	Total          float64                `json:"total"`
	DriveBack      bool                   `json:"driveBack"`
	FindDriverAuto bool                   `json:"findDriverAuto"`
	Conditions     pricing.Conditions     `json:"conditions"`
}

// CreateOrder persists a new order with a server-computed cost preview and,
// when findDriverAuto is set, rings available motoboys with delivery
// requests. Ringing is best-effort: the order is created regardless of how
// the fan-out goes.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	customerCoords := make([][]float64, 0, len(req.Customers))
	for _, customer := range req.Customers {
		customerCoords = append(customerCoords, customer.CustomerAddress.Coordinates)
	}
	preview, err := h.engine.Preview(req.Store.Coordinates, customerCoords, req.DriveBack, req.Conditions)
	if err != nil {
		return httpError(err)
	}

	order := &models.Order{
		OrderNumber:    generateOrderNumber(),
		Store:          req.Store,
		Customers:      req.Customers,
		Items:          req.Items,
		Payment:        req.Payment,
		Notes:          req.Notes,
		Total:          req.Total,
		DriveBack:      req.DriveBack,
		FindDriverAuto: req.FindDriverAuto,
		Status:         models.OrderPending,
		Preview: models.OrderPreview{
			Cost:     preview.TotalCost,
			Distance: preview.TotalDistance,
			PriceList: map[string]interface{}{
				"isRain":       preview.PriceList.IsRain,
				"isHighDemand": preview.PriceList.IsHighDemand,
				"breakdown":    preview.Breakdown,
			},
		},
	}
	if err := h.orders.Create(c.Request().Context(), order); err != nil {
		return httpError(err)
	}

	if req.FindDriverAuto {
		h.ringAvailableMotoboys(c.Request().Context(), order)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "order": order})
}

// GetOrders returns orders with pagination
func (h *OrderHandler) GetOrders(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	orders, err := h.orders.GetAll(c.Request().Context(), int64((page-1)*limit), int64(limit))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "orders": orders})
}

// GetOrder returns a single order
func (h *OrderHandler) GetOrder(c echo.Context) error {
	order, err := h.orders.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if order == nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": order})
}

// ringAvailableMotoboys creates a delivery request per available motoboy (up
// to maxAutoRing) and pushes each over the event stream. Failures are logged
// and skipped; the order stands either way.
func (h *OrderHandler) ringAvailableMotoboys(ctx context.Context, order *models.Order) {
	motoboys, err := h.motoboys.GetAvailable(ctx)
	if err != nil {
		log.Printf("Failed to list available motoboys for order %s: %v", order.OrderNumber, err)
		return
	}
	if len(motoboys) == 0 {
		log.Printf("No available motoboys for order %s", order.OrderNumber)
		return
	}
	if len(motoboys) > maxAutoRing {
		motoboys = motoboys[:maxAutoRing]
	}

	summary := bson.M{
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"storeName":   order.Store.Name,
		"total":       order.Total,
		"distance":    order.Preview.Distance,
		"cost":        order.Preview.Cost,
	}
	for _, motoboy := range motoboys {
		notification, recipient, err := h.dispatch.CreateDeliveryRequest(ctx, motoboy.ID.Hex(), summary, true)
		if err != nil {
			log.Printf("Failed to ring motoboy %s for order %s: %v", motoboy.Name, order.OrderNumber, err)
			continue
		}
		h.fanout.SendEventToStore(recipient.FirebaseUID, "notificationUpdate", notification)
	}
}

// generateOrderNumber yields a short human-readable order number
func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("GD-%s-%s", time.Now().Format("20060102"), suffix)
}
