package repository

import (
	"context"
	"time"

	"foodcourt/internal/domain/model"

	"gorm.io/gorm"
)

type RevenueShareGormRepository struct {
	db *gorm.DB
}

func NewRevenueShareGormRepository(db *gorm.DB) *RevenueShareGormRepository {
	return &RevenueShareGormRepository{db: db}
}

func (r *RevenueShareGormRepository) Create(ctx context.Context, s *model.RevenueShare) error {
	return translateErr(r.db.WithContext(ctx).Create(s).Error)
}

func (r *RevenueShareGormRepository) FindByPaymentID(ctx context.Context, paymentID int64) (model.RevenueShare, error) {
	var s model.RevenueShare
	if err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&s).Error; err != nil {
		return model.RevenueShare{}, translateErr(err)
	}
	return s, nil
}

func (r *RevenueShareGormRepository) ListByTenant(ctx context.Context, tenantID int64, from, to *time.Time) ([]model.RevenueShare, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at <= ?", *to)
	}

	var ss []model.RevenueShare
	if err := q.Order("id asc").Find(&ss).Error; err != nil {
		return []model.RevenueShare{}, err
	}
	return ss, nil
}
