package repository

import (
	"context"
	"time"

	"foodcourt/internal/domain/model"
)

type OrderListFilter struct {
	TenantID *int64
	Status   string
	From     *time.Time
	To       *time.Time
	Limit    int
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (model.Order, error)
	Create(ctx context.Context, order *model.Order) error
	// Update は o.Version が一致するときだけ書き込み、新しいバージョンを返す。
	// 不一致なら ErrConflict。
	Update(ctx context.Context, o model.Order) (int64, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
}

type OrderItemRepository interface {
	CreateBulk(ctx context.Context, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
