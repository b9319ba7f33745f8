package repository

import (
	"context"

	"foodcourt/internal/domain/model"
	repo "foodcourt/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if err != nil {
		return model.Order{}, translateErr(err)
	}
	return o, nil
}

func (r *OrderGormRepository) FindByNumber(ctx context.Context, orderNumber string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("order_number = ?", orderNumber).First(&o).Error
	if err != nil {
		return model.Order{}, translateErr(err)
	}
	return o, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	return translateErr(r.db.WithContext(ctx).Create(order).Error)
}

func (r *OrderGormRepository) Update(ctx context.Context, o model.Order) (int64, error) {
	next := o.Version + 1
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND version = ?", o.ID, o.Version).
		Updates(map[string]any{
			"status":         o.Status,
			"payment_status": o.PaymentStatus,
			"paid_at":        o.PaidAt,
			"completed_at":   o.CompletedAt,
			"cancelled_at":   o.CancelledAt,
			"updated_at":     o.UpdatedAt,
			"version":        next,
		})
	if res.Error != nil {
		return 0, translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		// 消えたのかバージョン違いかを区別する
		var n int64
		if err := r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", o.ID).Count(&n).Error; err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, repo.ErrNotFound
		}
		return 0, repo.ErrConflict
	}
	return next, nil
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	if f.TenantID != nil {
		q = q.Where("tenant_id = ?", *f.TenantID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var items []model.Order
	if err := q.Order("id desc").Limit(f.Limit).Find(&items).Error; err != nil {
		return []model.Order{}, err
	}
	return items, nil
}
