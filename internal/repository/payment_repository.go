package repository

import (
	"context"
	"time"

	"foodcourt/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) error
	FindByID(ctx context.Context, paymentID int64) (model.Payment, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]model.Payment, error)
	// Transition は status が from のときだけ to に変える。変えられなければ false。
	Transition(ctx context.Context, paymentID int64, from, to model.PaymentState, reason string, at time.Time) (bool, error)
}

type RevenueShareRepository interface {
	Create(ctx context.Context, s *model.RevenueShare) error
	FindByPaymentID(ctx context.Context, paymentID int64) (model.RevenueShare, error)
	ListByTenant(ctx context.Context, tenantID int64, from, to *time.Time) ([]model.RevenueShare, error)
}
