package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/senjaya/lokapasar-backend/pkg/db/models"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	pkgerrors "github.com/senjaya/lokapasar-backend/pkg/errors"
	"github.com/senjaya/lokapasar-backend/pkg/pagination"
)

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, query ListQuery) ([]models.Notification, string, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type storeLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// Service writes and serves the in-app notification inbox.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page pagination.Params) ([]models.Notification, string, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)

	OrderCreated(ctx context.Context, order *models.Order) error
	OrderStatusChanged(ctx context.Context, order *models.Order) error
	OrderCancelled(ctx context.Context, order *models.Order) error
}

type service struct {
	repo   notificationRepository
	stores storeLoader
}

// NewService wires notification dependencies.
func NewService(repo notificationRepository, stores storeLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notification repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store loader required")
	}
	return &service{repo: repo, stores: stores}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page pagination.Params) ([]models.Notification, string, error) {
	if userID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, next, err := s.repo.List(ctx, ListQuery{UserID: userID, UnreadOnly: unreadOnly, Page: page})
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return rows, next, nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, userID, notificationID, time.Now().UTC()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return updated, nil
}

// Cleanup deletes read notifications older than the retention window.
func (s *service) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "retention must be positive")
	}
	cutoff := time.Now().UTC().Add(-retention)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete notifications")
	}
	return deleted, nil
}

// OrderCreated notifies the seller about a freshly placed order and the buyer
// that the order was recorded.
func (s *service) OrderCreated(ctx context.Context, order *models.Order) error {
	sellerID, err := s.sellerFor(ctx, order)
	if err != nil {
		return err
	}
	if err := s.push(ctx, sellerID, enums.NotificationOrderCreated, order,
		"Pesanan baru",
		fmt.Sprintf("Pesanan baru senilai Rp%d menunggu konfirmasi.", order.Total)); err != nil {
		return err
	}
	return s.push(ctx, order.BuyerID, enums.NotificationOrderCreated, order,
		"Pesanan dibuat",
		fmt.Sprintf("Pesanan Anda senilai Rp%d sedang menunggu konfirmasi penjual.", order.Total))
}

// OrderStatusChanged notifies the buyer about a lifecycle step.
func (s *service) OrderStatusChanged(ctx context.Context, order *models.Order) error {
	return s.push(ctx, order.BuyerID, enums.NotificationOrderStatus, order,
		"Status pesanan diperbarui",
		fmt.Sprintf("Pesanan Anda kini berstatus %s.", statusLabel(order.Status)))
}

// OrderCancelled notifies both sides of the order.
func (s *service) OrderCancelled(ctx context.Context, order *models.Order) error {
	sellerID, err := s.sellerFor(ctx, order)
	if err != nil {
		return err
	}
	if err := s.push(ctx, order.BuyerID, enums.NotificationOrderCancelled, order,
		"Pesanan dibatalkan",
		"Pesanan Anda telah dibatalkan. Stok barang dikembalikan."); err != nil {
		return err
	}
	return s.push(ctx, sellerID, enums.NotificationOrderCancelled, order,
		"Pesanan dibatalkan",
		"Sebuah pesanan di toko Anda telah dibatalkan.")
}

func (s *service) sellerFor(ctx context.Context, order *models.Order) (uuid.UUID, error) {
	store, err := s.stores.FindByID(ctx, order.StoreID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store owner")
	}
	return store.OwnerID, nil
}

func (s *service) push(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, order *models.Order, title, body string) error {
	orderID := order.ID
	notification := &models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Body:    body,
		OrderID: &orderID,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return nil
}

func statusLabel(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusConfirmed:
		return "dikonfirmasi"
	case enums.OrderStatusProcessing:
		return "diproses"
	case enums.OrderStatusShipping:
		return "dikirim"
	case enums.OrderStatusDelivered:
		return "tiba di tujuan"
	case enums.OrderStatusCompleted:
		return "selesai"
	case enums.OrderStatusCancelled:
		return "dibatalkan"
	default:
		return string(status)
	}
}
