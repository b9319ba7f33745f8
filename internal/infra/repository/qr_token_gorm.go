package repository

import (
	"context"
	"time"

	"foodcourt/internal/domain/model"

	"gorm.io/gorm"
)

type QRTokenGormRepository struct {
	db *gorm.DB
}

func NewQRTokenGormRepository(db *gorm.DB) *QRTokenGormRepository {
	return &QRTokenGormRepository{db: db}
}

func (r *QRTokenGormRepository) Create(ctx context.Context, t *model.QRToken) error {
	return translateErr(r.db.WithContext(ctx).Create(t).Error)
}

func (r *QRTokenGormRepository) FindByToken(ctx context.Context, token string) (model.QRToken, error) {
	var t model.QRToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return model.QRToken{}, translateErr(err)
	}
	return t, nil
}

func (r *QRTokenGormRepository) FindLiveByOrderID(ctx context.Context, orderID int64) (model.QRToken, error) {
	var t model.QRToken
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND live_slot IS NOT NULL", orderID).
		First(&t).Error
	if err != nil {
		return model.QRToken{}, translateErr(err)
	}
	return t, nil
}

func (r *QRTokenGormRepository) ClearLiveSlot(ctx context.Context, tokenID int64) error {
	return r.db.WithContext(ctx).Model(&model.QRToken{}).
		Where("id = ?", tokenID).
		Update("live_slot", nil).Error
}

// scanned_at IS NULL を条件にした1回きりの更新
func (r *QRTokenGormRepository) MarkScanned(ctx context.Context, tokenID int64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.QRToken{}).
		Where("id = ? AND scanned_at IS NULL", tokenID).
		Updates(map[string]any{
			"scanned_at": at,
			"live_slot":  nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *QRTokenGormRepository) HasScanned(ctx context.Context, orderID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.QRToken{}).
		Where("order_id = ? AND scanned_at IS NOT NULL", orderID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
