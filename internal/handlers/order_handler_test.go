package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gringo-delivery/backend/internal/models"
	"github.com/gringo-delivery/backend/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubOrderRepo struct {
	created []*models.Order
	orders  map[string]*models.Order
}

func (s *stubOrderRepo) Create(_ context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	s.created = append(s.created, order)
	return nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, id string) (*models.Order, error) {
	return s.orders[id], nil
}

func (s *stubOrderRepo) GetAll(context.Context, int64, int64) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.created {
		out = append(out, *o)
	}
	return out, nil
}

func (s *stubOrderRepo) AssignMotoboy(context.Context, string, primitive.ObjectID) error {
	return nil
}

type stubMotoboyRepo struct {
	available []models.Motoboy
}

func (s *stubMotoboyRepo) Create(context.Context, *models.Motoboy) error { return nil }
func (s *stubMotoboyRepo) GetByID(context.Context, string) (*models.Motoboy, error) {
	return nil, nil
}
func (s *stubMotoboyRepo) GetByFirebaseUID(context.Context, string) (*models.Motoboy, error) {
	return nil, nil
}
func (s *stubMotoboyRepo) GetAvailable(context.Context) ([]models.Motoboy, error) {
	return s.available, nil
}
func (s *stubMotoboyRepo) UpdateLocation(context.Context, string, []float64) error { return nil }
func (s *stubMotoboyRepo) UpdateTokens(context.Context, string, string, string) error {
	return nil
}
func (s *stubMotoboyRepo) UpdateAvailability(context.Context, string, bool) error { return nil }

type stubDeliveryDispatcher struct {
	rung []string
}

func (s *stubDeliveryDispatcher) CreateDeliveryRequest(_ context.Context, motoboyID string, _ bson.M, _ bool) (*models.Notification, *models.Motoboy, error) {
	s.rung = append(s.rung, motoboyID)
	return &models.Notification{ID: primitive.NewObjectID()}, &models.Motoboy{FirebaseUID: "uid-" + motoboyID}, nil
}

const previewBody = `{
	"store": {"coordinates": [-46.63, -23.55]},
	"customer": [{"customerAddress": {"coordinates": [-46.64, -23.56]}}],
	"driveBack": false
}`

func TestPreviewCost(t *testing.T) {
	e := newEcho()
	h := NewOrderHandler(&stubOrderRepo{}, &stubMotoboyRepo{}, pricing.NewEngine(pricing.DefaultConfig()), &stubDeliveryDispatcher{}, &stubFanout{})
	h.RegisterOrderRoutes(e.Group(""))

	rec := doRequest(e, http.MethodPost, "/orders/preview-cost", previewBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Success bool            `json:"success"`
		Preview pricing.Preview `json:"preview"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, 8.0, got.Preview.TotalCost)
	assert.Equal(t, 1, got.Preview.NumberOfCustomers)
	assert.Greater(t, got.Preview.TotalDistance, 0.0)
}

func TestPreviewCostRejectsBadCoordinates(t *testing.T) {
	e := newEcho()
	h := NewOrderHandler(&stubOrderRepo{}, &stubMotoboyRepo{}, pricing.NewEngine(pricing.DefaultConfig()), &stubDeliveryDispatcher{}, &stubFanout{})
	h.RegisterOrderRoutes(e.Group(""))

	body := `{"store": {"coordinates": [-46.63]}, "customer": [{"customerAddress": {"coordinates": [-46.64, -23.56]}}]}`
	rec := doRequest(e, http.MethodPost, "/orders/preview-cost", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

const createOrderBody = `{
	"store": {"name": "Padaria Central", "coordinates": [-46.63, -23.55]},
	"customer": [{"name": "Ana", "customerAddress": {"coordinates": [-46.64, -23.56]}}],
	"items": [{"productName": "Bolo", "quantity": 1, "price": 30.0}],
	"payment": {"method": "pix"},
	"total": 30.0,
	"driveBack": true,
	"findDriverAuto": true
}`

func TestCreateOrderComputesPreviewAndRingsMotoboys(t *testing.T) {
	orders := &stubOrderRepo{}
	motoboys := &stubMotoboyRepo{available: []models.Motoboy{
		{ID: primitive.NewObjectID(), Name: "Carlos"},
		{ID: primitive.NewObjectID(), Name: "Pedro"},
	}}
	dispatch := &stubDeliveryDispatcher{}
	fanout := &stubFanout{}

	e := newEcho()
	h := NewOrderHandler(orders, motoboys, pricing.NewEngine(pricing.DefaultConfig()), dispatch, fanout)
	h.RegisterOrderRoutes(e.Group(""))

	rec := doRequest(e, http.MethodPost, "/orders", createOrderBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, orders.created, 1)
	order := orders.created[0]
	assert.NotEmpty(t, order.OrderNumber)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Greater(t, order.Preview.Cost, 0.0)
	assert.Greater(t, order.Preview.Distance, 0.0)

	// Both available motoboys were rung and got their SSE event
	assert.Len(t, dispatch.rung, 2)
	assert.Equal(t, []string{"notificationUpdate", "notificationUpdate"}, fanout.events)
}

func TestCreateOrderWithoutAutoDispatchDoesNotRing(t *testing.T) {
	orders := &stubOrderRepo{}
	motoboys := &stubMotoboyRepo{available: []models.Motoboy{{ID: primitive.NewObjectID()}}}
	dispatch := &stubDeliveryDispatcher{}

	e := newEcho()
	h := NewOrderHandler(orders, motoboys, pricing.NewEngine(pricing.DefaultConfig()), dispatch, &stubFanout{})
	h.RegisterOrderRoutes(e.Group(""))

	body := `{
		"store": {"coordinates": [-46.63, -23.55]},
		"customer": [{"customerAddress": {"coordinates": [-46.64, -23.56]}}],
		"items": [{"productName": "Bolo", "quantity": 1, "price": 30.0}]
	}`
	rec := doRequest(e, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, dispatch.rung)
}

func TestCreateOrderCapsAutoRing(t *testing.T) {
	var available []models.Motoboy
	for i := 0; i < maxAutoRing+3; i++ {
		available = append(available, models.Motoboy{ID: primitive.NewObjectID()})
	}
	orders := &stubOrderRepo{}
	dispatch := &stubDeliveryDispatcher{}

	e := newEcho()
	h := NewOrderHandler(orders, &stubMotoboyRepo{available: available}, pricing.NewEngine(pricing.DefaultConfig()), dispatch, &stubFanout{})
	h.RegisterOrderRoutes(e.Group(""))

	rec := doRequest(e, http.MethodPost, "/orders", createOrderBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, dispatch.rung, maxAutoRing)
}

func TestCreateOrderValidation(t *testing.T) {
	e := newEcho()
	h := NewOrderHandler(&stubOrderRepo{}, &stubMotoboyRepo{}, pricing.NewEngine(pricing.DefaultConfig()), &stubDeliveryDispatcher{}, &stubFanout{})
	h.RegisterOrderRoutes(e.Group(""))

	// No items
	body := `{"store": {"coordinates": [-46.63, -23.55]}, "customer": [{"customerAddress": {"coordinates": [-46.64, -23.56]}}]}`
	rec := doRequest(e, http.MethodPost, "/orders", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder(t *testing.T) {
	id := primitive.NewObjectID()
	orders := &stubOrderRepo{orders: map[string]*models.Order{
		id.Hex(): {ID: id, OrderNumber: "GD-1"},
	}}

	e := newEcho()
	h := NewOrderHandler(orders, &stubMotoboyRepo{}, pricing.NewEngine(pricing.DefaultConfig()), &stubDeliveryDispatcher{}, &stubFanout{})
	h.RegisterOrderRoutes(e.Group(""))

	rec := doRequest(e, http.MethodGet, "/orders/"+id.Hex(), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/orders/"+primitive.NewObjectID().Hex(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
