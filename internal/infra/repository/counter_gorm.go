package repository

import (
	"context"
	"time"

	"foodcourt/internal/domain/model"

	"gorm.io/gorm"
)

type CounterGormRepository struct {
	db *gorm.DB
}

func NewCounterGormRepository(db *gorm.DB) *CounterGormRepository {
	return &CounterGormRepository{db: db}
}

func (r *CounterGormRepository) Create(ctx context.Context, c *model.CheckoutCounter) error {
	return translateErr(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CounterGormRepository) FindByID(ctx context.Context, counterID int64) (model.CheckoutCounter, error) {
	var c model.CheckoutCounter
	if err := r.db.WithContext(ctx).Where("id = ?", counterID).First(&c).Error; err != nil {
		return model.CheckoutCounter{}, translateErr(err)
	}
	return c, nil
}

func (r *CounterGormRepository) List(ctx context.Context) ([]model.CheckoutCounter, error) {
	var cs []model.CheckoutCounter
	if err := r.db.WithContext(ctx).Order("id asc").Find(&cs).Error; err != nil {
		return []model.CheckoutCounter{}, err
	}
	return cs, nil
}

// 空きがあるときだけ席を取る
func (r *CounterGormRepository) TryOccupy(ctx context.Context, counterID int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.CheckoutCounter{}).
		Where("id = ? AND occupancy < max_kasir", counterID).
		Updates(map[string]any{
			"occupancy":  gorm.Expr("occupancy + 1"),
			"version":    gorm.Expr("version + 1"),
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CounterGormRepository) Vacate(ctx context.Context, counterID int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.CheckoutCounter{}).
		Where("id = ? AND occupancy > 0", counterID).
		Updates(map[string]any{
			"occupancy":  gorm.Expr("occupancy - 1"),
			"version":    gorm.Expr("version + 1"),
			"updated_at": at,
		}).Error
}
