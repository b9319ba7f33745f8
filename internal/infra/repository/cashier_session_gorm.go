package repository

import (
	"context"
	"time"

	"foodcourt/internal/domain/model"

	"gorm.io/gorm"
)

type CashierSessionGormRepository struct {
	db *gorm.DB
}

func NewCashierSessionGormRepository(db *gorm.DB) *CashierSessionGormRepository {
	return &CashierSessionGormRepository{db: db}
}

func (r *CashierSessionGormRepository) Create(ctx context.Context, s *model.CashierSession) error {
	return translateErr(r.db.WithContext(ctx).Create(s).Error)
}

func (r *CashierSessionGormRepository) FindByID(ctx context.Context, sessionID int64) (model.CashierSession, error) {
	var s model.CashierSession
	if err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&s).Error; err != nil {
		return model.CashierSession{}, translateErr(err)
	}
	return s, nil
}

func (r *CashierSessionGormRepository) Release(ctx context.Context, sessionID int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.CashierSession{}).
		Where("id = ? AND released_at IS NULL", sessionID).
		Updates(map[string]any{
			"released_at": at,
			"live_slot":   nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CashierSessionGormRepository) FindActiveByCashier(ctx context.Context, cashierID int64) (model.CashierSession, error) {
	var s model.CashierSession
	err := r.db.WithContext(ctx).
		Where("cashier_id = ? AND released_at IS NULL", cashierID).
		First(&s).Error
	if err != nil {
		return model.CashierSession{}, translateErr(err)
	}
	return s, nil
}

func (r *CashierSessionGormRepository) ListActiveByCounter(ctx context.Context, counterID int64) ([]model.CashierSession, error) {
	var ss []model.CashierSession
	err := r.db.WithContext(ctx).
		Where("counter_id = ? AND released_at IS NULL", counterID).
		Order("id asc").
		Find(&ss).Error
	if err != nil {
		return []model.CashierSession{}, err
	}
	return ss, nil
}
