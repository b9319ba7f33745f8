package repository

import (
	"context"
	"time"

	"foodcourt/internal/domain/model"

	"gorm.io/gorm"
)

type PaymentGormRepository struct {
	db *gorm.DB
}

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Create(ctx context.Context, p *model.Payment) error {
	return translateErr(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PaymentGormRepository) FindByID(ctx context.Context, paymentID int64) (model.Payment, error) {
	var p model.Payment
	if err := r.db.WithContext(ctx).Where("id = ?", paymentID).First(&p).Error; err != nil {
		return model.Payment{}, translateErr(err)
	}
	return p, nil
}

func (r *PaymentGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.Payment, error) {
	var ps []model.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&ps).Error
	if err != nil {
		return []model.Payment{}, err
	}
	return ps, nil
}

func (r *PaymentGormRepository) Transition(ctx context.Context, paymentID int64, from, to model.PaymentState, reason string, at time.Time) (bool, error) {
	fields := map[string]any{
		"status":     to,
		"version":    gorm.Expr("version + 1"),
		"updated_at": at,
	}
	if to == model.PaymentStateSuccess {
		fields["settled_at"] = at
	}
	if reason != "" {
		fields["failure_reason"] = reason
	}

	res := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ? AND status = ?", paymentID, from).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
