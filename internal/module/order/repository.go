package order

import (
	"context"
	"errors"

	"github.com/cribnosh/server/internal/utils/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportFilter narrows the admin eligibility report.
type ReportFilter struct {
	OrderID    *uuid.UUID
	CustomerID *uuid.UUID
	Status     *Status
}

// Repository defines the interface for order data access. The store
// supports atomic reads and conditional writes keyed by order id.
type Repository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderByNo(ctx context.Context, orderNo string) (*Order, error)
	GetOrderByPaymentID(ctx context.Context, paymentID string) (*Order, error)

	// UpdateIf writes the order only if its stored status and version
	// still match the values observed at read time. A lost race
	// returns ErrStaleOrder; the caller must re-fetch and decide, not
	// retry blindly.
	UpdateIf(ctx context.Context, order *Order, expectedStatus Status, expectedVersion int64) error

	ListForReport(ctx context.Context, filter *ReportFilter, p *pagination.Pagination) ([]*Order, int64, error)

	CreateEvent(ctx context.Context, event *Event) error
	ListEvents(ctx context.Context, orderID uuid.UUID) ([]*Event, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new order repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOrder(ctx context.Context, order *Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetOrderByNo(ctx context.Context, orderNo string) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).First(&order, "order_no = ?", orderNo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetOrderByPaymentID(ctx context.Context, paymentID string) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).First(&order, "payment_id = ?", paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateIf(ctx context.Context, order *Order, expectedStatus Status, expectedVersion int64) error {
	order.Version = expectedVersion + 1

	res := r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ? AND order_status = ? AND version = ?", order.ID, expectedStatus, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(order)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the order vanished or another writer got there first.
		var exists int64
		if err := r.db.WithContext(ctx).Model(&Order{}).Where("id = ?", order.ID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrOrderNotFound
		}
		return ErrStaleOrder
	}
	return nil
}

func (r *repository) ListForReport(ctx context.Context, filter *ReportFilter, p *pagination.Pagination) ([]*Order, int64, error) {
	var orders []*Order
	var total int64

	query := r.db.WithContext(ctx).Model(&Order{})

	if filter != nil {
		if filter.OrderID != nil {
			query = query.Where("id = ?", *filter.OrderID)
		}
		if filter.CustomerID != nil {
			query = query.Where("customer_id = ?", *filter.CustomerID)
		}
		if filter.Status != nil {
			query = query.Where("order_status = ?", *filter.Status)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if p != nil {
		p.Normalize()
		query = query.Offset(p.Offset).Limit(p.Limit)
	}

	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *repository) CreateEvent(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListEvents(ctx context.Context, orderID uuid.UUID) ([]*Event, error) {
	var events []*Event
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("occurred_at ASC").
		Find(&events).Error
	return events, err
}
