package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gringo-delivery/backend/internal/apperrors"
	"github.com/gringo-delivery/backend/internal/models"
	"github.com/gringo-delivery/backend/internal/services"
	"github.com/gringo-delivery/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubDispatch lets each test script the service behavior per method
type stubDispatch struct {
	createDeliveryRequest func(ctx context.Context, motoboyID string, order bson.M, fullscreen bool) (*models.Notification, *models.Motoboy, error)
	createCallStyle       func(ctx context.Context, params services.CallStyleParams) (*services.CallStyleResult, error)
	respondToCallStyle    func(ctx context.Context, callID, action, firebaseUID string) (*models.Notification, error)
	getCallInfo           func(ctx context.Context, callID string) (*services.CallInfo, error)
	createGeneric         func(ctx context.Context, params services.GenericParams) (*models.Notification, error)
	createOrderReady      func(ctx context.Context, motoboyID, orderID string) (*models.Notification, error)
	notifyOccurrence      func(ctx context.Context, title, message, firebaseUID string) (*models.Notification, error)
	notifySupport         func(ctx context.Context, title, message string, data bson.M) ([]models.Notification, error)
	updateStatus          func(ctx context.Context, id string, status models.NotificationStatus) (*models.Notification, error)
}

func (s *stubDispatch) CreateDeliveryRequest(ctx context.Context, motoboyID string, order bson.M, fullscreen bool) (*models.Notification, *models.Motoboy, error) {
	return s.createDeliveryRequest(ctx, motoboyID, order, fullscreen)
}

func (s *stubDispatch) CreateCallStyle(ctx context.Context, params services.CallStyleParams) (*services.CallStyleResult, error) {
	return s.createCallStyle(ctx, params)
}

func (s *stubDispatch) RespondToCallStyle(ctx context.Context, callID, action, firebaseUID string) (*models.Notification, error) {
	return s.respondToCallStyle(ctx, callID, action, firebaseUID)
}

func (s *stubDispatch) GetCallInfo(ctx context.Context, callID string) (*services.CallInfo, error) {
	return s.getCallInfo(ctx, callID)
}

func (s *stubDispatch) CreateGeneric(ctx context.Context, params services.GenericParams) (*models.Notification, error) {
	return s.createGeneric(ctx, params)
}

func (s *stubDispatch) CreateOrderReady(ctx context.Context, motoboyID, orderID string) (*models.Notification, error) {
	return s.createOrderReady(ctx, motoboyID, orderID)
}

func (s *stubDispatch) NotifyOccurrence(ctx context.Context, title, message, firebaseUID string) (*models.Notification, error) {
	return s.notifyOccurrence(ctx, title, message, firebaseUID)
}

func (s *stubDispatch) NotifySupport(ctx context.Context, title, message string, data bson.M) ([]models.Notification, error) {
	return s.notifySupport(ctx, title, message, data)
}

func (s *stubDispatch) UpdateStatus(ctx context.Context, id string, status models.NotificationStatus) (*models.Notification, error) {
	return s.updateStatus(ctx, id, status)
}

// stubNotificationRepo serves the two listing endpoints
type stubNotificationRepo struct {
	pending []models.Notification
	all     []models.Notification
}

func (s *stubNotificationRepo) Create(context.Context, *models.Notification) error { return nil }
func (s *stubNotificationRepo) GetByID(context.Context, string) (*models.Notification, error) {
	return nil, nil
}
func (s *stubNotificationRepo) GetPendingDeliveryRequests(context.Context, string) ([]models.Notification, error) {
	return s.pending, nil
}
func (s *stubNotificationRepo) GetByMotoboyID(context.Context, string) ([]models.Notification, error) {
	return s.all, nil
}
func (s *stubNotificationRepo) GetCallByCallID(context.Context, string) (*models.Notification, error) {
	return nil, nil
}
func (s *stubNotificationRepo) UpdateStatusIfPending(context.Context, primitive.ObjectID, models.NotificationStatus) (*models.Notification, error) {
	return nil, nil
}
func (s *stubNotificationRepo) RespondCallIfPending(context.Context, string, models.NotificationStatus) (*models.Notification, error) {
	return nil, nil
}
func (s *stubNotificationRepo) MarkExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type stubFanout struct {
	events []string
}

func (s *stubFanout) SendEventToStore(_, event string, _ interface{}) bool {
	s.events = append(s.events, event)
	return true
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validators.NewValidator()
	return e
}

func doRequest(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func registerNotificationRoutes(e *echo.Echo, dispatch DispatchService, repo *stubNotificationRepo, fanout *stubFanout) {
	h := NewNotificationHandler(dispatch, repo, fanout)
	h.RegisterNotificationRoutes(e.Group(""))
}

func TestGetNotificationsRequiresValidMotoboyID(t *testing.T) {
	e := newEcho()
	registerNotificationRoutes(e, &stubDispatch{}, &stubNotificationRepo{}, &stubFanout{})

	rec := doRequest(e, http.MethodGet, "/notifications", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(e, http.MethodGet, "/notifications?motoboyId=not-an-object-id", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetNotificationsReturnsPendingRequests(t *testing.T) {
	e := newEcho()
	repo := &stubNotificationRepo{pending: []models.Notification{
		{ID: primitive.NewObjectID(), Type: models.TypeDeliveryRequest, Status: models.StatusPending},
	}}
	registerNotificationRoutes(e, &stubDispatch{}, repo, &stubFanout{})

	rec := doRequest(e, http.MethodGet, "/notifications?motoboyId="+primitive.NewObjectID().Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestCreateNotificationEmitsUpdateEvent(t *testing.T) {
	e := newEcho()
	fanout := &stubFanout{}
	motoboyID := primitive.NewObjectID()
	dispatch := &stubDispatch{
		createDeliveryRequest: func(_ context.Context, id string, order bson.M, fullscreen bool) (*models.Notification, *models.Motoboy, error) {
			assert.Equal(t, motoboyID.Hex(), id)
			assert.True(t, fullscreen)
			return &models.Notification{ID: primitive.NewObjectID(), Type: models.TypeDeliveryRequest},
				&models.Motoboy{ID: motoboyID, FirebaseUID: "motoboy-uid-1"}, nil
		},
	}
	registerNotificationRoutes(e, dispatch, &stubNotificationRepo{}, fanout)

	body := fmt.Sprintf(`{"motoboyId":%q,"order":{"orderNumber":"GD-1"},"fullscreen":true}`, motoboyID.Hex())
	rec := doRequest(e, http.MethodPost, "/notifications", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"notificationUpdate"}, fanout.events)
}

func TestCreateNotificationRequiresMotoboyID(t *testing.T) {
	e := newEcho()
	registerNotificationRoutes(e, &stubDispatch{}, &stubNotificationRepo{}, &stubFanout{})

	rec := doRequest(e, http.MethodPost, "/notifications", `{"order":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateNotificationStatusConflict(t *testing.T) {
	e := newEcho()
	dispatch := &stubDispatch{
		updateStatus: func(_ context.Context, _ string, _ models.NotificationStatus) (*models.Notification, error) {
			return nil, fmt.Errorf("%w: notification already ACCEPTED", apperrors.ErrConflict)
		},
	}
	registerNotificationRoutes(e, dispatch, &stubNotificationRepo{}, &stubFanout{})

	body := fmt.Sprintf(`{"id":%q,"status":"DECLINED"}`, primitive.NewObjectID().Hex())
	rec := doRequest(e, http.MethodPut, "/notifications", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateCallStyleNotification(t *testing.T) {
	e := newEcho()
	dispatch := &stubDispatch{
		createCallStyle: func(_ context.Context, params services.CallStyleParams) (*services.CallStyleResult, error) {
			assert.Equal(t, "New delivery", params.Title)
			assert.Equal(t, 45, params.TimeoutSeconds)
			return &services.CallStyleResult{
				Notification: &models.Notification{ID: primitive.NewObjectID(), Type: models.TypeCallStyle},
				CallID:       "call-1",
			}, nil
		},
	}
	registerNotificationRoutes(e, dispatch, &stubNotificationRepo{}, &stubFanout{})

	body := `{"motoboyId":"abc","title":"New delivery","message":"Pickup","timeoutSeconds":45}`
	rec := doRequest(e, http.MethodPost, "/notifications/call-style", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "call-1", got["callId"])
}

func TestRespondToCallStyleStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"conflict when already resolved", fmt.Errorf("%w: already resolved", apperrors.ErrConflict), http.StatusConflict},
		{"gone when deadline passed", fmt.Errorf("%w: deadline has passed", apperrors.ErrExpired), http.StatusGone},
		{"not found for unknown call", fmt.Errorf("%w: call not found", apperrors.ErrNotFound), http.StatusNotFound},
		{"bad request for invalid action", fmt.Errorf("%w: invalid action", apperrors.ErrValidation), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho()
			dispatch := &stubDispatch{
				respondToCallStyle: func(context.Context, string, string, string) (*models.Notification, error) {
					return nil, tt.err
				},
			}
			registerNotificationRoutes(e, dispatch, &stubNotificationRepo{}, &stubFanout{})

			body := `{"callId":"call-1","action":"accept","firebaseUid":"uid-1"}`
			rec := doRequest(e, http.MethodPost, "/notifications/call-style/respond", body)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestRespondToCallStyleSuccess(t *testing.T) {
	e := newEcho()
	dispatch := &stubDispatch{
		respondToCallStyle: func(_ context.Context, callID, action, firebaseUID string) (*models.Notification, error) {
			assert.Equal(t, "call-1", callID)
			assert.Equal(t, "accept", action)
			assert.Equal(t, "uid-1", firebaseUID)
			return &models.Notification{ID: primitive.NewObjectID(), Status: models.StatusAccepted}, nil
		},
	}
	registerNotificationRoutes(e, dispatch, &stubNotificationRepo{}, &stubFanout{})

	body := `{"callId":"call-1","action":"accept","firebaseUid":"uid-1"}`
	rec := doRequest(e, http.MethodPost, "/notifications/call-style/respond", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "accept", got["action"])
}

func TestGetCallInfo(t *testing.T) {
	e := newEcho()
	dispatch := &stubDispatch{
		getCallInfo: func(_ context.Context, callID string) (*services.CallInfo, error) {
			if callID != "call-1" {
				return nil, fmt.Errorf("%w: call not found", apperrors.ErrNotFound)
			}
			return &services.CallInfo{CallID: callID, Status: models.StatusPending}, nil
		},
	}
	registerNotificationRoutes(e, dispatch, &stubNotificationRepo{}, &stubFanout{})

	rec := doRequest(e, http.MethodGet, "/notifications/call-style/call-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/notifications/call-style/other", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateGenericNotificationValidation(t *testing.T) {
	e := newEcho()
	registerNotificationRoutes(e, &stubDispatch{}, &stubNotificationRepo{}, &stubFanout{})

	rec := doRequest(e, http.MethodPost, "/notifications/generic", `{"motoboyId":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotifySupportReportsCount(t *testing.T) {
	e := newEcho()
	dispatch := &stubDispatch{
		notifySupport: func(_ context.Context, title, message string, _ bson.M) ([]models.Notification, error) {
			return []models.Notification{{}, {}}, nil
		},
	}
	registerNotificationRoutes(e, dispatch, &stubNotificationRepo{}, &stubFanout{})

	body := `{"title":"Escalation","message":"Store reported a problem"}`
	rec := doRequest(e, http.MethodPost, "/notifications/notifySupport", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, float64(2), got["count"])
}

func TestInternalErrorsAreHidden(t *testing.T) {
	e := newEcho()
	dispatch := &stubDispatch{
		notifyOccurrence: func(context.Context, string, string, string) (*models.Notification, error) {
			return nil, fmt.Errorf("mongo: connection reset")
		},
	}
	registerNotificationRoutes(e, dispatch, &stubNotificationRepo{}, &stubFanout{})

	body := `{"title":"Late","message":"Delayed","firebaseUid":"uid-1"}`
	rec := doRequest(e, http.MethodPost, "/notifications/notifyOccurrence", body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}
