package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gringo-delivery/backend/internal/apperrors"
	"github.com/gringo-delivery/backend/internal/metrics"
	"github.com/gringo-delivery/backend/internal/models"
	"github.com/gringo-delivery/backend/internal/push"
	"github.com/gringo-delivery/backend/internal/repositories"
	"github.com/gringo-delivery/backend/internal/sse"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultCallTimeout    = 30 * time.Second
	deliveryRequestExpiry = 1 * time.Hour
	orderReadyExpiry      = 1 * time.Hour
	genericExpiry         = 7 * 24 * time.Hour
	defaultCallScreen     = "/incoming-call"
	defaultGenericScreen  = "notifications"
	occurrenceScreen      = "/occurrences"
	orderReadyScreen      = "/(tabs)"
	deliveryRequestScreen = "/delivery-request"
)

// NotificationService creates and drives the lifecycle of notifications:
// delivery requests, call-style dispatch rings, and the generic/support
// variants. Push and event-stream delivery are best-effort side channels;
// persistence is the source of truth and the only thing that can fail a
// create operation.
type NotificationService struct {
	notifications repositories.NotificationRepository
	motoboys      repositories.MotoboyRepository
	stores        repositories.StoreRepository
	supportTeam   repositories.SupportTeamRepository
	orders        repositories.OrderRepository
	pusher        push.Sender
	fanout        sse.Fanout
	now           func() time.Time
}

// Option customizes a NotificationService
type Option func(*NotificationService)

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(s *NotificationService) { s.now = now }
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notifications repositories.NotificationRepository,
	motoboys repositories.MotoboyRepository,
	stores repositories.StoreRepository,
	supportTeam repositories.SupportTeamRepository,
	orders repositories.OrderRepository,
	pusher push.Sender,
	fanout sse.Fanout,
	opts ...Option,
) *NotificationService {
	s := &NotificationService{
		notifications: notifications,
		motoboys:      motoboys,
		stores:        stores,
		supportTeam:   supportTeam,
		orders:        orders,
		pusher:        pusher,
		fanout:        fanout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDeliveryRequest persists a DELIVERY_REQUEST notification for a
// motoboy. Fan-out is deliberately left to the caller so persistence
// succeeds or fails on its own. Returns the created record and the resolved
// motoboy so the caller can address follow-up events.
func (s *NotificationService) CreateDeliveryRequest(ctx context.Context, motoboyID string, order bson.M, fullscreen bool) (*models.Notification, *models.Motoboy, error) {
	motoboy, err := s.resolveMotoboy(ctx, motoboyID, "")
	if err != nil {
		return nil, nil, err
	}

	expiresAt := s.now().Add(deliveryRequestExpiry)
	notification := &models.Notification{
		MotoboyID: &motoboy.ID,
		Type:      models.TypeDeliveryRequest,
		Title:     "New delivery request",
		Message:   "A new delivery is waiting for you",
		Data: bson.M{
			"order":      order,
			"fullscreen": fullscreen,
			"screen":     deliveryRequestScreen,
		},
		Status:    models.StatusPending,
		ExpiresAt: &expiresAt,
		CreatedAt: s.now(),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, nil, fmt.Errorf("create delivery request notification: %w", err)
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(models.TypeDeliveryRequest)).Inc()
	return notification, motoboy, nil
}

// CallStyleParams are the inputs for a call-style dispatch ring
type CallStyleParams struct {
	MotoboyID      string
	FirebaseUID    string
	Title          string
	Message        string
	TimeoutSeconds int
	CallID         string
	Screen         string
	AdditionalData map[string]interface{}
}

// CallStyleResult is the outcome of creating a call-style notification
type CallStyleResult struct {
	Notification *models.Notification `json:"notification"`
	CallID       string               `json:"callId"`
}

// CreateCallStyle persists a ringing full-screen dispatch request and
// best-effort delivers it over push and the event stream. A fresh callId is
// generated unless the caller supplies one.
func (s *NotificationService) CreateCallStyle(ctx context.Context, params CallStyleParams) (*CallStyleResult, error) {
	if params.Title == "" || params.Message == "" {
		return nil, fmt.Errorf("%w: title and message are required", apperrors.ErrValidation)
	}

	motoboy, err := s.resolveMotoboy(ctx, params.MotoboyID, params.FirebaseUID)
	if err != nil {
		return nil, err
	}

	callID := params.CallID
	if callID == "" {
		callID = uuid.NewString()
	} else {
		// callId is the lookup key for the whole call lifecycle; a second
		// record behind the same id would make respond/info reads ambiguous.
		existing, err := s.notifications.GetCallByCallID(ctx, callID)
		if err != nil {
			return nil, fmt.Errorf("find call %s: %w", callID, err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: call %s already exists", apperrors.ErrConflict, callID)
		}
	}
	timeout := defaultCallTimeout
	if params.TimeoutSeconds > 0 {
		timeout = time.Duration(params.TimeoutSeconds) * time.Second
	}
	screen := params.Screen
	if screen == "" {
		screen = defaultCallScreen
	}

	data := bson.M{
		"callId":         callID,
		"screen":         screen,
		"timeoutSeconds": int(timeout / time.Second),
	}
	for k, v := range params.AdditionalData {
		data[k] = v
	}

	expiresAt := s.now().Add(timeout)
	notification := &models.Notification{
		MotoboyID:   &motoboy.ID,
		FirebaseUID: motoboy.FirebaseUID,
		Type:        models.TypeCallStyle,
		Title:       params.Title,
		Message:     params.Message,
		Data:        data,
		Status:      models.StatusPending,
		ExpiresAt:   &expiresAt,
		CreatedAt:   s.now(),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("create call-style notification: %w", err)
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(models.TypeCallStyle)).Inc()

	s.tryCallStylePush(ctx, motoboy.FCMToken, notification, map[string]string{
		"callId":         callID,
		"screen":         screen,
		"timeoutSeconds": strconv.Itoa(int(timeout / time.Second)),
	})
	s.emit(motoboy.FirebaseUID, "incomingCall", notification)

	return &CallStyleResult{Notification: notification, CallID: callID}, nil
}

// RespondToCallStyle resolves a ringing call: accept or decline. The status
// write is a conditional update filtered on PENDING, so when several couriers
// or devices answer concurrently exactly one response wins and the rest get
// ErrConflict. A call past its deadline is rejected with ErrExpired even if
// the sweep has not reclassified it yet.
func (s *NotificationService) RespondToCallStyle(ctx context.Context, callID, action, firebaseUID string) (*models.Notification, error) {
	if callID == "" || action == "" || firebaseUID == "" {
		return nil, fmt.Errorf("%w: callId, action and firebaseUid are required", apperrors.ErrValidation)
	}
	var status models.NotificationStatus
	switch action {
	case "accept":
		status = models.StatusAccepted
	case "decline":
		status = models.StatusDeclined
	default:
		return nil, fmt.Errorf("%w: invalid action %q, use 'accept' or 'decline'", apperrors.ErrValidation, action)
	}

	notification, err := s.notifications.GetCallByCallID(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("find call %s: %w", callID, err)
	}
	if notification == nil {
		return nil, fmt.Errorf("%w: call %s not found", apperrors.ErrNotFound, callID)
	}
	if notification.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: call %s already resolved with status %s", apperrors.ErrConflict, callID, notification.Status)
	}
	if notification.IsExpired(s.now()) {
		// Reclassify eagerly; the periodic sweep would get to it anyway.
		if _, err := s.notifications.RespondCallIfPending(ctx, callID, models.StatusExpired); err != nil {
			log.Printf("Failed to mark call %s expired: %v", callID, err)
		}
		return nil, fmt.Errorf("%w: call %s deadline has passed", apperrors.ErrExpired, callID)
	}

	updated, err := s.notifications.RespondCallIfPending(ctx, callID, status)
	if err != nil {
		return nil, fmt.Errorf("respond to call %s: %w", callID, err)
	}
	if updated == nil {
		// Lost the race: someone else resolved the call between our read
		// and the conditional write.
		return nil, fmt.Errorf("%w: call %s already resolved", apperrors.ErrConflict, callID)
	}
	metrics.CallResponsesTotal.WithLabelValues(action).Inc()

	// Tell the store that rang the call so its dispatcher can stop ringing
	// other couriers.
	if storeUID, ok := updated.Data["storeFirebaseUid"].(string); ok && storeUID != "" {
		s.emit(storeUID, "callAnswered", bson.M{
			"callId":         callID,
			"action":         action,
			"firebaseUid":    firebaseUID,
			"notificationId": updated.ID,
		})
	}

	return updated, nil
}

// CallInfo is the current state of a call-style notification
type CallInfo struct {
	CallID       string                    `json:"callId"`
	Notification *models.Notification      `json:"notification"`
	Status       models.NotificationStatus `json:"status"`
	CreatedAt    time.Time                 `json:"createdAt"`
	ExpiresAt    *time.Time                `json:"expiresAt,omitempty"`
	Data         bson.M                    `json:"data,omitempty"`
}

// GetCallInfo returns the current status and data of a call. A PENDING call
// past its deadline reports EXPIRED even before the sweep reclassifies it.
func (s *NotificationService) GetCallInfo(ctx context.Context, callID string) (*CallInfo, error) {
	if callID == "" {
		return nil, fmt.Errorf("%w: callId is required", apperrors.ErrValidation)
	}
	notification, err := s.notifications.GetCallByCallID(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("find call %s: %w", callID, err)
	}
	if notification == nil {
		return nil, fmt.Errorf("%w: call %s not found", apperrors.ErrNotFound, callID)
	}
	return &CallInfo{
		CallID:       callID,
		Notification: notification,
		Status:       notification.EffectiveStatus(s.now()),
		CreatedAt:    notification.CreatedAt,
		ExpiresAt:    notification.ExpiresAt,
		Data:         notification.Data,
	}, nil
}

// GenericParams are the inputs for a generic notification
type GenericParams struct {
	MotoboyID   string
	FirebaseUID string
	Title       string
	Message     string
	Type        models.NotificationType
	ExpiresAt   *time.Time
	Screen      string
	ChatID      string
}

// CreateGeneric persists a generic notification for a motoboy resolved by id
// or Firebase identity, then best-effort pushes and emits it. Nothing is
// persisted when the recipient cannot be resolved.
func (s *NotificationService) CreateGeneric(ctx context.Context, params GenericParams) (*models.Notification, error) {
	if params.Title == "" || params.Message == "" {
		return nil, fmt.Errorf("%w: title and message are required", apperrors.ErrValidation)
	}

	motoboy, err := s.resolveMotoboy(ctx, params.MotoboyID, params.FirebaseUID)
	if err != nil {
		return nil, err
	}

	notificationType := params.Type
	if notificationType == "" {
		notificationType = models.TypeSystem
	}
	expiresAt := params.ExpiresAt
	if expiresAt == nil {
		t := s.now().Add(genericExpiry)
		expiresAt = &t
	}
	screen := params.Screen
	if screen == "" {
		screen = defaultGenericScreen
	}

	data := bson.M{"screen": screen}
	if params.ChatID != "" {
		data["chatId"] = params.ChatID
	}

	notification := &models.Notification{
		MotoboyID:   &motoboy.ID,
		FirebaseUID: motoboy.FirebaseUID,
		Type:        notificationType,
		Title:       params.Title,
		Message:     params.Message,
		Data:        data,
		Status:      models.StatusPending,
		ExpiresAt:   expiresAt,
		CreatedAt:   s.now(),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("create generic notification: %w", err)
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(notificationType)).Inc()

	s.tryPush(ctx, motoboy.PushToken, notification, map[string]string{"screen": screen})
	s.emit(motoboy.FirebaseUID, string(notificationType), bson.M{
		"notificationId": notification.ID,
		"type":           notification.Type,
		"title":          notification.Title,
		"message":        notification.Message,
		"chatId":         params.ChatID,
	})

	return notification, nil
}

// CreateOrderReady notifies a motoboy that an order is ready for pickup
func (s *NotificationService) CreateOrderReady(ctx context.Context, motoboyID, orderID string) (*models.Notification, error) {
	if motoboyID == "" || orderID == "" {
		return nil, fmt.Errorf("%w: motoboyId and orderId are required", apperrors.ErrValidation)
	}

	motoboy, err := s.resolveMotoboy(ctx, motoboyID, "")
	if err != nil {
		return nil, err
	}
	if !primitive.IsValidObjectID(orderID) {
		return nil, fmt.Errorf("%w: invalid order id %q", apperrors.ErrValidation, orderID)
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", orderID, err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: order not found", apperrors.ErrNotFound)
	}

	expiresAt := s.now().Add(orderReadyExpiry)
	notification := &models.Notification{
		MotoboyID: &motoboy.ID,
		Type:      models.TypeOrderReady,
		Title:     "Order ready",
		Message:   fmt.Sprintf("Order %s is ready for pickup at %s", order.OrderNumber, order.Store.Name),
		Data: bson.M{
			"orderId": order.ID,
			"screen":  orderReadyScreen,
		},
		Status:    models.StatusPending,
		ExpiresAt: &expiresAt,
		CreatedAt: s.now(),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("create order-ready notification: %w", err)
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(models.TypeOrderReady)).Inc()

	s.tryCallStylePush(ctx, motoboy.FCMToken, notification, map[string]string{
		"orderId": order.ID.Hex(),
		"screen":  orderReadyScreen,
	})

	return notification, nil
}

// NotifyOccurrence records an occurrence report for an actor identified by
// Firebase UID (motoboy first, then store)
func (s *NotificationService) NotifyOccurrence(ctx context.Context, title, message, firebaseUID string) (*models.Notification, error) {
	if title == "" || message == "" {
		return nil, fmt.Errorf("%w: title and message are required", apperrors.ErrValidation)
	}

	pushToken, err := s.resolveOccurrenceRecipient(ctx, firebaseUID)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(genericExpiry)
	notification := &models.Notification{
		FirebaseUID: firebaseUID,
		Type:        models.TypeMotoboy,
		Title:       title,
		Message:     message,
		Data:        bson.M{"title": title, "message": message},
		Status:      models.StatusPending,
		ExpiresAt:   &expiresAt,
		CreatedAt:   s.now(),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("create occurrence notification: %w", err)
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(models.TypeMotoboy)).Inc()

	s.emit(firebaseUID, "occurrenceNotification", bson.M{
		"notificationId": notification.ID,
		"type":           notification.Type,
		"title":          notification.Title,
		"message":        notification.Message,
		"data":           notification.Data,
	})
	s.tryPush(ctx, pushToken, notification, map[string]string{"screen": occurrenceScreen})

	return notification, nil
}

// NotifySupport fans one SUPPORT_ALERT out to every active support member
func (s *NotificationService) NotifySupport(ctx context.Context, title, message string, data bson.M) ([]models.Notification, error) {
	if title == "" || message == "" {
		return nil, fmt.Errorf("%w: title and message are required", apperrors.ErrValidation)
	}

	members, err := s.supportTeam.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active support members: %w", err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: no active support members", apperrors.ErrNotFound)
	}
	if data == nil {
		data = bson.M{}
	}

	expiresAt := s.now().Add(genericExpiry)
	notifications := make([]models.Notification, 0, len(members))
	for _, member := range members {
		notification := &models.Notification{
			FirebaseUID: member.FirebaseUID,
			Type:        models.TypeSupportAlert,
			Title:       title,
			Message:     message,
			Data:        data,
			Status:      models.StatusPending,
			ExpiresAt:   &expiresAt,
			CreatedAt:   s.now(),
		}
		if err := s.notifications.Create(ctx, notification); err != nil {
			return nil, fmt.Errorf("create support notification for %s: %w", member.FirebaseUID, err)
		}
		metrics.NotificationsCreatedTotal.WithLabelValues(string(models.TypeSupportAlert)).Inc()

		s.emit(member.FirebaseUID, "supportNotification", bson.M{
			"notificationId": notification.ID,
			"type":           notification.Type,
			"title":          notification.Title,
			"message":        notification.Message,
			"data":           notification.Data,
		})
		notifications = append(notifications, *notification)
	}

	return notifications, nil
}

// UpdateStatus transitions a notification out of PENDING. Terminal records
// reject further writes with ErrConflict; the write itself is conditional so
// concurrent updates cannot overwrite each other.
func (s *NotificationService) UpdateStatus(ctx context.Context, id string, status models.NotificationStatus) (*models.Notification, error) {
	if !status.Valid() || status == models.StatusPending {
		return nil, fmt.Errorf("%w: invalid target status %q", apperrors.ErrValidation, status)
	}

	if !primitive.IsValidObjectID(id) {
		return nil, fmt.Errorf("%w: invalid notification id %q", apperrors.ErrValidation, id)
	}
	notification, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find notification %s: %w", id, err)
	}
	if notification == nil {
		return nil, fmt.Errorf("%w: notification not found", apperrors.ErrNotFound)
	}
	if notification.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: notification already %s", apperrors.ErrConflict, notification.Status)
	}

	updated, err := s.notifications.UpdateStatusIfPending(ctx, notification.ID, status)
	if err != nil {
		return nil, fmt.Errorf("update notification status: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: notification already resolved", apperrors.ErrConflict)
	}

	// Bell badge refresh for the recipient's dashboard.
	bellUID := updated.FirebaseUID
	if bellUID == "" && updated.MotoboyID != nil {
		motoboy, err := s.motoboys.GetByID(ctx, updated.MotoboyID.Hex())
		if err == nil && motoboy != nil {
			bellUID = motoboy.FirebaseUID
		}
	}
	if bellUID != "" {
		s.emit(bellUID, "notificationUpdateBell", updated.Status != models.StatusRead)
	}

	return updated, nil
}

// resolveMotoboy looks a motoboy up by id, falling back to the Firebase UID.
// Resolution failure is a hard ErrNotFound: nothing may be persisted for an
// unaddressable recipient.
func (s *NotificationService) resolveMotoboy(ctx context.Context, motoboyID, firebaseUID string) (*models.Motoboy, error) {
	var motoboy *models.Motoboy
	var err error

	if motoboyID != "" {
		if !primitive.IsValidObjectID(motoboyID) {
			if firebaseUID == "" {
				return nil, fmt.Errorf("%w: invalid motoboy id %q", apperrors.ErrValidation, motoboyID)
			}
		} else {
			motoboy, err = s.motoboys.GetByID(ctx, motoboyID)
			if err != nil {
				return nil, fmt.Errorf("find motoboy %s: %w", motoboyID, err)
			}
		}
	}
	if motoboy == nil && firebaseUID != "" {
		motoboy, err = s.motoboys.GetByFirebaseUID(ctx, firebaseUID)
		if err != nil {
			return nil, fmt.Errorf("find motoboy by firebase uid: %w", err)
		}
	}
	if motoboy == nil {
		return nil, fmt.Errorf("%w: motoboy not found", apperrors.ErrNotFound)
	}
	return motoboy, nil
}

// resolveOccurrenceRecipient tries motoboy first, then store, and returns
// the recipient's push token.
func (s *NotificationService) resolveOccurrenceRecipient(ctx context.Context, firebaseUID string) (string, error) {
	if firebaseUID == "" {
		return "", fmt.Errorf("%w: firebaseUid is required", apperrors.ErrValidation)
	}
	motoboy, err := s.motoboys.GetByFirebaseUID(ctx, firebaseUID)
	if err != nil {
		return "", fmt.Errorf("find motoboy by firebase uid: %w", err)
	}
	if motoboy != nil {
		return motoboy.PushToken, nil
	}
	store, err := s.stores.GetByFirebaseUID(ctx, firebaseUID)
	if err != nil {
		return "", fmt.Errorf("find store by firebase uid: %w", err)
	}
	if store != nil {
		return store.PushToken, nil
	}
	return "", fmt.Errorf("%w: user not found", apperrors.ErrNotFound)
}

// emit delivers an event over the event stream. Best-effort: the result is
// counted and logged, never returned.
func (s *NotificationService) emit(firebaseUID, event string, payload interface{}) {
	if firebaseUID == "" {
		return
	}
	delivered := s.fanout.SendEventToStore(firebaseUID, event, payload)
	if delivered {
		metrics.SSEDeliveriesTotal.WithLabelValues("delivered").Inc()
	} else {
		metrics.SSEDeliveriesTotal.WithLabelValues("dropped").Inc()
		log.Printf("SSE event %q for %s had no listeners", event, firebaseUID)
	}
}

// tryPush sends a standard push notification. Best-effort by design: a push
// failure must never fail the operation that created the notification.
func (s *NotificationService) tryPush(ctx context.Context, token string, notification *models.Notification, data map[string]string) {
	if token == "" {
		return
	}
	payload := map[string]string{
		"notificationId": notification.ID.Hex(),
		"type":           string(notification.Type),
	}
	for k, v := range data {
		payload[k] = v
	}
	if err := s.pusher.SendPush(ctx, token, notification.Title, notification.Message, payload); err != nil {
		metrics.PushDeliveriesTotal.WithLabelValues("error").Inc()
		log.Printf("Failed to send push notification %s: %v", notification.ID.Hex(), err)
		return
	}
	metrics.PushDeliveriesTotal.WithLabelValues("ok").Inc()
}

// tryCallStylePush sends a full-screen call-style push. Best-effort, same as
// tryPush.
func (s *NotificationService) tryCallStylePush(ctx context.Context, token string, notification *models.Notification, data map[string]string) {
	if token == "" {
		return
	}
	payload := map[string]string{
		"notificationId": notification.ID.Hex(),
		"type":           string(notification.Type),
	}
	for k, v := range data {
		payload[k] = v
	}
	if err := s.pusher.SendCallStylePush(ctx, token, notification.Title, notification.Message, payload); err != nil {
		metrics.PushDeliveriesTotal.WithLabelValues("error").Inc()
		log.Printf("Failed to send call-style push %s: %v", notification.ID.Hex(), err)
		return
	}
	metrics.PushDeliveriesTotal.WithLabelValues("ok").Inc()
}
